package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrEthical07/goTeller/account"
)

func sampleCustomer() account.Customer {
	return account.Customer{
		ID:        "CUST-1",
		FullName:  "Ada Lovelace",
		BirthDate: time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC),
		Answers:   map[string]string{"first_pet": "Rex"},
	}
}

func sampleAccount() account.Account {
	return account.Account{
		Number:     "ACC-001",
		CustomerID: "CUST-1",
		Secret:     "pass1",
		Kind:       account.KindSavings,
		Balance:    100,
	}
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "bank.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	accounts, customers, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(accounts) != 0 || len(customers) != 0 {
		t.Fatalf("expected empty store, got %d accounts %d customers", len(accounts), len(customers))
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected no file before first save, got %v", err)
	}
}

func TestSaveSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "bank.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.SaveCustomer(ctx, sampleCustomer()); err != nil {
		t.Fatalf("SaveCustomer failed: %v", err)
	}
	a := sampleAccount()
	if err := s.SaveAccount(ctx, a); err != nil {
		t.Fatalf("SaveAccount failed: %v", err)
	}
	a = a.Next()
	a.FailedAttempts = 3
	a.Status = account.StatusLocked
	if err := s.SaveAccount(ctx, a); err != nil {
		t.Fatalf("SaveAccount failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	accounts, customers, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(accounts) != 1 || len(customers) != 1 {
		t.Fatalf("expected 1/1 records, got %d/%d", len(accounts), len(customers))
	}
	got := accounts[0]
	if !got.Locked() || got.FailedAttempts != 3 || got.Version != 1 {
		t.Fatalf("unexpected account %+v", got)
	}
	if customers[0].Answers["first_pet"] != "Rex" {
		t.Fatalf("unexpected customer %+v", customers[0])
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the snapshot file, got %d entries", len(entries))
	}
}

func TestFailedSaveKeepsPreviousRecord(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.SaveCustomer(ctx, sampleCustomer()); err != nil {
		t.Fatalf("SaveCustomer failed: %v", err)
	}
	if err := s.SaveAccount(ctx, sampleAccount()); err != nil {
		t.Fatalf("SaveAccount failed: %v", err)
	}

	// Point the store at a path whose parent is a regular file.
	s.path = filepath.Join(path, "nested.json")
	next := sampleAccount().Next()
	next.Balance = 999
	if err := s.SaveAccount(ctx, next); err == nil {
		t.Fatal("expected save to fail")
	}

	accounts, _, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if accounts[0].Balance != 100 {
		t.Fatalf("expected balance 100 after failed save, got %d", accounts[0].Balance)
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestOpenRejectsNewerFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	if err := os.WriteFile(path, []byte(`{"_meta":{"version":99}}`), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "bank.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.SaveAccount(ctx, sampleAccount()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDeleteAccountSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bank.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.SaveCustomer(ctx, sampleCustomer()); err != nil {
		t.Fatalf("SaveCustomer failed: %v", err)
	}
	if err := s.SaveAccount(ctx, sampleAccount()); err != nil {
		t.Fatalf("SaveAccount failed: %v", err)
	}
	if err := s.DeleteAccount(ctx, "ACC-001"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if err := s.DeleteAccount(ctx, "ACC-404"); err != nil {
		t.Fatalf("expected unknown number to be a no-op, got %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	accounts, customers, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(accounts) != 0 || len(customers) != 1 {
		t.Fatalf("expected 0/1 records, got %d/%d", len(accounts), len(customers))
	}
}
