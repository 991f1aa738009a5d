package flows

import (
	"context"
	"fmt"
	"math"

	"github.com/MrEthical07/goTeller/account"
)

// TellerMetrics carries metric IDs needed by teller operations.
type TellerMetrics struct {
	Deposit   int
	Withdraw  int
	Statement int
	Rejected  int
	Integrity int
}

// TellerEvents carries audit event names used by teller operations.
type TellerEvents struct {
	Deposit  string
	Withdraw string
}

// TellerErrors carries host-level sentinel errors used by teller operations.
type TellerErrors struct {
	EngineNotReady    error
	InvalidAmount     error
	InsufficientFunds error
	Persistence       error
	Integrity         error
}

// TellerDeps captures dependencies of token-scoped account operations.
type TellerDeps struct {
	Lock    LockFunc
	Resolve ResolveDeps
	// Persist saves next durably and then commits it to the registry.
	Persist func(ctx context.Context, next account.Account) error

	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics TellerMetrics
	Events  TellerEvents
	Errors  TellerErrors
}

// StatementResult is the flow-local statement view.
type StatementResult struct {
	AccountNumber  string
	Kind           account.Kind
	Balance        int64
	OverdraftLimit int64
	Available      int64
	Transactions   []int64
}

func (d *TellerDeps) defaults() bool {
	if d.Lock == nil {
		d.Lock = noopLock
	}
	if d.MetricInc == nil {
		d.MetricInc = noopMetric
	}
	if d.EmitAudit == nil {
		d.EmitAudit = noopAudit
	}
	return d.Persist != nil
}

// RunDeposit credits amount to the account behind token.
func RunDeposit(ctx context.Context, token string, amount int64, deps TellerDeps) (account.Account, error) {
	return runMutation(ctx, token, deps, deps.Events.Deposit, deps.Metrics.Deposit, amount, func(a account.Account) (account.Account, error) {
		if amount <= 0 {
			return a, deps.Errors.InvalidAmount
		}
		if a.Balance > math.MaxInt64-amount {
			return a, deps.Errors.InvalidAmount
		}
		next := a.Next()
		next.Balance += amount
		next.Transactions = append(next.Transactions, amount)
		return next, nil
	})
}

// RunWithdraw debits amount from the account behind token. Savings accounts
// are limited to the balance, checking accounts to balance plus overdraft.
func RunWithdraw(ctx context.Context, token string, amount int64, deps TellerDeps) (account.Account, error) {
	return runMutation(ctx, token, deps, deps.Events.Withdraw, deps.Metrics.Withdraw, amount, func(a account.Account) (account.Account, error) {
		if amount <= 0 {
			return a, deps.Errors.InvalidAmount
		}
		if amount > a.Available() {
			return a, deps.Errors.InsufficientFunds
		}
		next := a.Next()
		next.Balance -= amount
		next.Transactions = append(next.Transactions, -amount)
		return next, nil
	})
}

// RunStatement returns the balance and history of the account behind token.
func RunStatement(ctx context.Context, token string, deps TellerDeps) (*StatementResult, error) {
	if !deps.defaults() {
		return nil, deps.Errors.EngineNotReady
	}
	res, err := RunResolve(ctx, token, deps.Resolve)
	if err != nil {
		return nil, err
	}

	var out *StatementResult
	err = guard(ctx, res, deps, func() error {
		a := res.Account
		out = &StatementResult{
			AccountNumber:  a.Number,
			Kind:           a.Kind,
			Balance:        a.Balance,
			OverdraftLimit: a.OverdraftLimit,
			Available:      a.Available(),
			Transactions:   a.Clone().Transactions,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	deps.MetricInc(deps.Metrics.Statement)
	return out, nil
}

func runMutation(
	ctx context.Context,
	token string,
	deps TellerDeps,
	event string,
	metric int,
	amount int64,
	apply func(account.Account) (account.Account, error),
) (account.Account, error) {
	if !deps.defaults() {
		return account.Account{}, deps.Errors.EngineNotReady
	}
	sess, err := RunResolveSession(ctx, token, deps.Resolve)
	if err != nil {
		return account.Account{}, err
	}

	unlock := deps.Lock(sess.AccountNumber)
	defer unlock()

	// The account is read only under its lock so a concurrent lock or
	// mutation is seen.
	res, err := RunResolve(ctx, token, deps.Resolve)
	if err != nil {
		return account.Account{}, err
	}

	var committed account.Account
	err = guard(ctx, res, deps, func() error {
		next, err := apply(res.Account)
		if err != nil {
			return err
		}
		if err := deps.Persist(ctx, next); err != nil {
			return fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
		}
		committed = next
		return nil
	})
	if err != nil {
		deps.MetricInc(deps.Metrics.Rejected)
		return account.Account{}, err
	}

	deps.MetricInc(metric)
	deps.EmitAudit(ctx, event, true, committed.Number, res.SessionID, nil, func() map[string]string {
		return map[string]string{
			"amount":  fmt.Sprint(amount),
			"balance": fmt.Sprint(committed.Balance),
		}
	})
	return committed, nil
}

// guard runs fn and converts a panic into an integrity failure that ends
// the caller's session.
func guard(ctx context.Context, res *Resolved, deps TellerDeps, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			deps.MetricInc(deps.Metrics.Integrity)
			deps.EmitAudit(ctx, deps.Resolve.Events.Integrity, false, res.Account.Number, res.SessionID, deps.Errors.Integrity, func() map[string]string {
				return map[string]string{"reason": "panic", "detail": fmt.Sprint(r)}
			})
			ForceLogout(ctx, res.SessionID, res.Account.Number, "integrity", deps.Resolve)
			err = deps.Errors.Integrity
		}
	}()
	return fn()
}
