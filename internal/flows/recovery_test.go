package flows

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/MrEthical07/goTeller/account"
	"github.com/MrEthical07/goTeller/internal/lockout"
)

var (
	errNotFound  = errors.New("not found")
	errNotLocked = errors.New("not locked")
	errRecovery  = errors.New("recovery failed")
	errPersist   = errors.New("persistence")
	errIntegrity = errors.New("integrity")
	errNotReady  = errors.New("not ready")
)

func testCustomer() account.Customer {
	return account.Customer{
		ID:        "C-1",
		FullName:  "Ada Lovelace",
		BirthDate: time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC),
		Answers:   map[string]string{"mother_name": "Anne Isabella", "birth_city": "London"},
	}
}

type recoveryFixture struct {
	acct  account.Account
	saved []account.Account
	fail  error
}

func (f *recoveryFixture) deps() RecoveryDeps {
	persist := func(_ context.Context, next account.Account) error {
		if f.fail != nil {
			return f.fail
		}
		f.saved = append(f.saved, next)
		f.acct = next
		return nil
	}
	return RecoveryDeps{
		FindAccount: func(n string) (account.Account, error) {
			if n != f.acct.Number {
				return account.Account{}, errNotFound
			}
			return f.acct, nil
		},
		FindCustomer: func(id string) (account.Customer, error) {
			if id != "C-1" {
				return account.Customer{}, errNotFound
			}
			return testCustomer(), nil
		},
		Policy:            lockout.New(lockout.Config{}, persist),
		InvalidateAccount: func(context.Context, string) error { return nil },
		Errors: RecoveryErrors{
			EngineNotReady:     errNotReady,
			AccountNotFound:    errNotFound,
			AccountNotLocked:   errNotLocked,
			RecoveryFailed:     errRecovery,
			Persistence:        errPersist,
			Integrity:          errIntegrity,
			SessionUnavailable: errSession,
		},
	}
}

func lockedFixture() *recoveryFixture {
	return &recoveryFixture{acct: account.Account{
		Number:         "ACC-001",
		CustomerID:     "C-1",
		Secret:         "pass1",
		FailedAttempts: 3,
		Status:         account.StatusLocked,
	}}
}

func correctAnswers() map[string]string {
	return map[string]string{
		QuestionFullName:  "  ada   LOVELACE ",
		QuestionBirthDate: "10/12/1815",
		"mother_name":     "anne isabella",
		"birth_city":      "LONDON",
	}
}

func TestQuestionsOrder(t *testing.T) {
	got := Questions(testCustomer())
	want := []string{QuestionFullName, QuestionBirthDate, "birth_city", "mother_name"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalizeAnswer(t *testing.T) {
	cases := map[string]string{
		"  London ":       "london",
		"STRASSE":         "strasse",
		"ｌｏｎｄｏｎ":          "london",
		"Anne\t Isabella": "anne isabella",
	}
	for in, want := range cases {
		if got := NormalizeAnswer(in); got != want {
			t.Fatalf("NormalizeAnswer(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestAttemptUnlockSuccessResetsCounter(t *testing.T) {
	f := lockedFixture()
	if err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "ACC-001", Answers: correctAnswers()}, f.deps()); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if f.acct.Locked() || f.acct.FailedAttempts != 0 {
		t.Fatalf("expected active account with zero counter, got %+v", f.acct)
	}
	if f.acct.Secret != "pass1" {
		t.Fatalf("secret must be unchanged without NewSecret, got %q", f.acct.Secret)
	}
}

func TestAttemptUnlockAcceptsUnpaddedBirthDate(t *testing.T) {
	f := lockedFixture()
	answers := correctAnswers()
	answers[QuestionBirthDate] = " 10/12/1815"
	if err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "ACC-001", Answers: answers}, f.deps()); err != nil {
		t.Fatalf("unlock: %v", err)
	}
}

func TestAttemptUnlockReplacesSecret(t *testing.T) {
	f := lockedFixture()
	deps := f.deps()
	deps.HashSecret = func(s string) (string, error) { return "hashed:" + s, nil }
	err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "ACC-001", Answers: correctAnswers(), NewSecret: "pass2"}, deps)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if f.acct.Secret != "hashed:pass2" {
		t.Fatalf("expected replaced secret, got %q", f.acct.Secret)
	}
	if len(f.saved) != 1 {
		t.Fatalf("expected unlock and secret change in one write, got %d", len(f.saved))
	}
}

func TestAttemptUnlockAllOrNothing(t *testing.T) {
	for _, q := range Questions(testCustomer()) {
		f := lockedFixture()
		answers := correctAnswers()
		answers[q] = "wrong"
		err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "ACC-001", Answers: answers}, f.deps())
		if !errors.Is(err, errRecovery) {
			t.Fatalf("%s wrong: expected recovery failure, got %v", q, err)
		}
		if !f.acct.Locked() || f.acct.FailedAttempts != 3 || len(f.saved) != 0 {
			t.Fatalf("%s wrong: account must be untouched, got %+v", q, f.acct)
		}

		delete(answers, q)
		if err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "ACC-001", Answers: answers}, f.deps()); !errors.Is(err, errRecovery) {
			t.Fatalf("%s missing: expected recovery failure, got %v", q, err)
		}
	}
}

func TestAttemptUnlockPreconditions(t *testing.T) {
	f := lockedFixture()
	if err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "ACC-404"}, f.deps()); !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "../etc"}, f.deps()); !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found for malformed number, got %v", err)
	}

	f.acct.Status = account.StatusActive
	if err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "ACC-001", Answers: correctAnswers()}, f.deps()); !errors.Is(err, errNotLocked) {
		t.Fatalf("expected not locked, got %v", err)
	}
	if _, err := RunRecoveryQuestions("ACC-001", f.deps()); !errors.Is(err, errNotLocked) {
		t.Fatalf("expected not locked for questions, got %v", err)
	}
}

func TestAttemptUnlockPersistFailureKeepsLocked(t *testing.T) {
	f := lockedFixture()
	f.fail = errors.New("disk full")
	err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "ACC-001", Answers: correctAnswers()}, f.deps())
	if !errors.Is(err, errPersist) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !f.acct.Locked() {
		t.Fatal("account must stay locked when the unlock was not persisted")
	}
}

func TestLockAccountKeepsCounter(t *testing.T) {
	f := &recoveryFixture{acct: account.Account{Number: "ACC-001", CustomerID: "C-1", FailedAttempts: 1}}
	invalidated := ""
	deps := f.deps()
	deps.InvalidateAccount = func(_ context.Context, n string) error {
		invalidated = n
		return nil
	}
	locked, err := RunLockAccount(context.Background(), "ACC-001", deps)
	if err != nil || !locked {
		t.Fatalf("expected lock transition, got locked=%v err=%v", locked, err)
	}
	if !f.acct.Locked() || f.acct.FailedAttempts != 1 {
		t.Fatalf("expected locked account with counter 1, got %+v", f.acct)
	}
	if invalidated != "ACC-001" {
		t.Fatal("expected sessions of the locked account to be invalidated")
	}
}

func TestLockAccountAlreadyLockedReportsNoTransition(t *testing.T) {
	f := lockedFixture()
	locked, err := RunLockAccount(context.Background(), "ACC-001", f.deps())
	if err != nil || locked {
		t.Fatalf("expected no transition, got locked=%v err=%v", locked, err)
	}
	if len(f.saved) != 0 {
		t.Fatalf("expected no write, got %d", len(f.saved))
	}
}

func TestAttemptUnlockEndsPreLockSessions(t *testing.T) {
	f := lockedFixture()
	deps := f.deps()
	invalidated := ""
	deps.InvalidateAccount = func(_ context.Context, n string) error {
		if f.acct.Status != account.StatusLocked {
			t.Fatal("sessions must be ended while the account is still locked")
		}
		invalidated = n
		return nil
	}
	if err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "ACC-001", Answers: correctAnswers()}, deps); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if invalidated != "ACC-001" {
		t.Fatalf("expected ACC-001 sessions invalidated, got %q", invalidated)
	}
}

func TestAttemptUnlockInvalidationFailureKeepsLocked(t *testing.T) {
	f := lockedFixture()
	deps := f.deps()
	deps.InvalidateAccount = func(context.Context, string) error { return errors.New("backend down") }
	err := RunAttemptUnlock(context.Background(), UnlockInput{AccountNumber: "ACC-001", Answers: correctAnswers()}, deps)
	if !errors.Is(err, errSession) {
		t.Fatalf("expected session error, got %v", err)
	}
	if !f.acct.Locked() || len(f.saved) != 0 {
		t.Fatalf("expected account to stay locked without a write, got %+v", f.acct)
	}
}
