package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goTeller/account"
)

// BirthDateLayout is the on-disk birth date format.
const BirthDateLayout = "2006-01-02"

// ErrInvalidRecord is returned when a stored record cannot be mapped back
// to an account or customer.
var ErrInvalidRecord = errors.New("invalid stored record")

// AccountRecord is the serialized form of [account.Account].
type AccountRecord struct {
	Number         string  `json:"number"`
	CustomerID     string  `json:"customer_id"`
	Secret         string  `json:"secret"`
	Kind           string  `json:"kind"`
	Balance        int64   `json:"balance"`
	OverdraftLimit int64   `json:"overdraft_limit"`
	FailedAttempts int     `json:"failed_attempts"`
	Status         string  `json:"status"`
	Transactions   []int64 `json:"transactions,omitempty"`
	Version        uint64  `json:"version"`
}

// CustomerRecord is the serialized form of [account.Customer].
type CustomerRecord struct {
	ID        string            `json:"id"`
	FullName  string            `json:"full_name"`
	BirthDate string            `json:"birth_date"`
	Answers   map[string]string `json:"answers,omitempty"`
}

// FromAccount converts a into its record form.
func FromAccount(a account.Account) AccountRecord {
	a = a.Clone()
	return AccountRecord{
		Number:         a.Number,
		CustomerID:     a.CustomerID,
		Secret:         a.Secret,
		Kind:           a.Kind.String(),
		Balance:        a.Balance,
		OverdraftLimit: a.OverdraftLimit,
		FailedAttempts: a.FailedAttempts,
		Status:         a.Status.String(),
		Transactions:   a.Transactions,
		Version:        a.Version,
	}
}

// Account converts r back into an account.
func (r AccountRecord) Account() (account.Account, error) {
	kind, ok := account.ParseKind(r.Kind)
	if !ok {
		return account.Account{}, fmt.Errorf("%w: account %s kind %q", ErrInvalidRecord, r.Number, r.Kind)
	}
	status, ok := account.ParseStatus(r.Status)
	if !ok {
		return account.Account{}, fmt.Errorf("%w: account %s status %q", ErrInvalidRecord, r.Number, r.Status)
	}
	if !account.ValidNumber(r.Number) {
		return account.Account{}, fmt.Errorf("%w: account number %q", ErrInvalidRecord, r.Number)
	}
	if r.FailedAttempts < 0 {
		return account.Account{}, fmt.Errorf("%w: account %s negative counter", ErrInvalidRecord, r.Number)
	}
	a := account.Account{
		Number:         r.Number,
		CustomerID:     r.CustomerID,
		Secret:         r.Secret,
		Kind:           kind,
		Balance:        r.Balance,
		OverdraftLimit: r.OverdraftLimit,
		FailedAttempts: r.FailedAttempts,
		Status:         status,
		Transactions:   r.Transactions,
		Version:        r.Version,
	}
	return a.Clone(), nil
}

// FromCustomer converts c into its record form.
func FromCustomer(c account.Customer) CustomerRecord {
	c = c.Clone()
	r := CustomerRecord{
		ID:       c.ID,
		FullName: c.FullName,
		Answers:  c.Answers,
	}
	if !c.BirthDate.IsZero() {
		r.BirthDate = c.BirthDate.Format(BirthDateLayout)
	}
	return r
}

// Customer converts r back into a customer.
func (r CustomerRecord) Customer() (account.Customer, error) {
	c := account.Customer{
		ID:       r.ID,
		FullName: r.FullName,
		Answers:  r.Answers,
	}
	if r.BirthDate != "" {
		t, err := time.Parse(BirthDateLayout, r.BirthDate)
		if err != nil {
			return account.Customer{}, fmt.Errorf("%w: customer %s birth date %q", ErrInvalidRecord, r.ID, r.BirthDate)
		}
		c.BirthDate = t
	}
	return c.Clone(), nil
}
