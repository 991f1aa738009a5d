package main

import (
	"context"
	"time"

	goTeller "github.com/MrEthical07/goTeller"
)

// seedDemo writes the demo customer and accounts when storage is empty.
// It reports whether anything was written.
func seedDemo(ctx context.Context, s goTeller.Storage) (bool, error) {
	accounts, customers, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	if len(accounts) > 0 || len(customers) > 0 {
		return false, nil
	}

	cust := goTeller.Customer{
		ID:        "CUST-001",
		FullName:  "Maria Silva",
		BirthDate: time.Date(1990, time.March, 7, 0, 0, 0, 0, time.UTC),
		Answers: map[string]string{
			"mother_maiden_name": "Souza",
		},
	}
	if err := s.SaveCustomer(ctx, cust); err != nil {
		return false, err
	}

	demo := []goTeller.Account{
		{
			Number:     "ACC-001",
			CustomerID: cust.ID,
			Secret:     "pass1",
			Kind:       goTeller.KindSavings,
			Balance:    100000,
		},
		{
			Number:         "ACC-002",
			CustomerID:     cust.ID,
			Secret:         "pass2",
			Kind:           goTeller.KindChecking,
			Balance:        25000,
			OverdraftLimit: 50000,
		},
	}
	for _, a := range demo {
		if err := s.SaveAccount(ctx, a); err != nil {
			return false, err
		}
	}
	return true, nil
}
