package registry

import (
	"errors"
	"sync"

	"github.com/MrEthical07/goTeller/account"
)

var (
	// ErrNotFound is returned when a lookup key is not registered.
	ErrNotFound = errors.New("not found")
	// ErrOrphanAccount is returned when an account references an unknown customer.
	ErrOrphanAccount = errors.New("account references unknown customer")
)

// Registry holds every account and customer known to one engine.
// All reads return copies; writes replace the stored record.
type Registry struct {
	mu        sync.RWMutex
	accounts  map[string]account.Account
	customers map[string]account.Customer
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		accounts:  make(map[string]account.Account),
		customers: make(map[string]account.Customer),
	}
}

// Load replaces the registry contents. Accounts whose customer is missing
// are rejected so the registry never starts in an inconsistent state.
func (r *Registry) Load(accounts []account.Account, customers []account.Customer) error {
	nextCustomers := make(map[string]account.Customer, len(customers))
	for _, c := range customers {
		nextCustomers[c.ID] = c.Clone()
	}
	nextAccounts := make(map[string]account.Account, len(accounts))
	for _, a := range accounts {
		if _, ok := nextCustomers[a.CustomerID]; !ok {
			return ErrOrphanAccount
		}
		nextAccounts[a.Number] = a.Clone()
	}

	r.mu.Lock()
	r.accounts = nextAccounts
	r.customers = nextCustomers
	r.mu.Unlock()
	return nil
}

// Find returns a copy of the account registered under number.
func (r *Registry) Find(number string) (account.Account, error) {
	r.mu.RLock()
	a, ok := r.accounts[number]
	r.mu.RUnlock()
	if !ok {
		return account.Account{}, ErrNotFound
	}
	return a.Clone(), nil
}

// Customer returns a copy of the customer registered under id.
func (r *Registry) Customer(id string) (account.Customer, error) {
	r.mu.RLock()
	c, ok := r.customers[id]
	r.mu.RUnlock()
	if !ok {
		return account.Customer{}, ErrNotFound
	}
	return c.Clone(), nil
}

// Put stores a copy of a, replacing any previous record with the same number.
func (r *Registry) Put(a account.Account) {
	r.mu.Lock()
	r.accounts[a.Number] = a.Clone()
	r.mu.Unlock()
}

// Remove deletes the account registered under number. It is a no-op when
// the number is unknown. The owning customer stays registered.
func (r *Registry) Remove(number string) {
	r.mu.Lock()
	delete(r.accounts, number)
	r.mu.Unlock()
}

// Len returns the number of registered accounts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
