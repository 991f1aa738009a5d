package store

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/MrEthical07/goTeller/account"
)

func TestAccountRecordRoundTrip(t *testing.T) {
	in := account.Account{
		Number:         "ACC-001",
		CustomerID:     "CUST-1",
		Secret:         "pass1",
		Kind:           account.KindChecking,
		Balance:        -150,
		OverdraftLimit: 500,
		FailedAttempts: 2,
		Status:         account.StatusLocked,
		Transactions:   []int64{100, -250},
		Version:        7,
	}
	out, err := FromAccount(in).Account()
	if err != nil {
		t.Fatalf("Account failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestAccountRecordRejectsUnknownValues(t *testing.T) {
	cases := map[string]AccountRecord{
		"kind":    {Number: "A-1", Kind: "gold", Status: "active"},
		"status":  {Number: "A-1", Kind: "savings", Status: "frozen"},
		"number":  {Number: "bad number", Kind: "savings", Status: "active"},
		"counter": {Number: "A-1", Kind: "savings", Status: "active", FailedAttempts: -1},
	}
	for name, r := range cases {
		if _, err := r.Account(); !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("%s: expected ErrInvalidRecord, got %v", name, err)
		}
	}
}

func TestCustomerRecordRoundTrip(t *testing.T) {
	in := account.Customer{
		ID:        "CUST-1",
		FullName:  "Ada Lovelace",
		BirthDate: time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC),
		Answers:   map[string]string{"first_pet": "Rex"},
	}
	r := FromCustomer(in)
	if r.BirthDate != "1815-12-10" {
		t.Fatalf("expected 1815-12-10, got %q", r.BirthDate)
	}
	out, err := r.Customer()
	if err != nil {
		t.Fatalf("Customer failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("expected %+v, got %+v", in, out)
	}

	r.BirthDate = "10/12/1815"
	if _, err := r.Customer(); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}
