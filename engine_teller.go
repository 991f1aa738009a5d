package goTeller

import (
	"context"

	"github.com/MrEthical07/goTeller/internal/flows"
)

// Deposit credits amount minor units to the account behind token and
// returns the committed record.
func (e *Engine) Deposit(ctx context.Context, token string, amount int64) (Account, error) {
	if !e.ready() {
		return Account{}, ErrEngineNotReady
	}
	return flows.RunDeposit(ctx, token, amount, e.flowDeps.Teller)
}

// Withdraw debits amount minor units from the account behind token.
// Savings accounts cannot go below zero; checking accounts can use their
// overdraft limit.
func (e *Engine) Withdraw(ctx context.Context, token string, amount int64) (Account, error) {
	if !e.ready() {
		return Account{}, ErrEngineNotReady
	}
	return flows.RunWithdraw(ctx, token, amount, e.flowDeps.Teller)
}

// Statement returns balance, available funds and transaction history.
func (e *Engine) Statement(ctx context.Context, token string) (Statement, error) {
	if !e.ready() {
		return Statement{}, ErrEngineNotReady
	}
	res, err := flows.RunStatement(ctx, token, e.flowDeps.Teller)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		AccountNumber:  res.AccountNumber,
		Kind:           res.Kind,
		Balance:        res.Balance,
		OverdraftLimit: res.OverdraftLimit,
		Available:      res.Available,
		Transactions:   res.Transactions,
	}, nil
}

// CloseAccount permanently removes the account behind token. The secret is
// checked again and a wrong one counts toward lockout like a failed login.
// Only an account with a zero balance can be closed.
func (e *Engine) CloseAccount(ctx context.Context, token, secret string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	return flows.RunCloseAccount(ctx, token, secret, e.flowDeps.Close)
}
