package flows

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/MrEthical07/goTeller/account"
	"github.com/MrEthical07/goTeller/internal/lockout"
)

const (
	// QuestionFullName asks for the owner's full name.
	QuestionFullName = "full_name"
	// QuestionBirthDate asks for the owner's birth date as dd/mm/yyyy.
	QuestionBirthDate = "birth_date"

	birthDateLayout      = "02/01/2006"
	birthDateInputLayout = "2/1/2006"
)

// UnlockInput is the flow-local unlock request.
type UnlockInput struct {
	AccountNumber string
	Answers       map[string]string
	NewSecret     string
}

// RecoveryMetrics carries metric IDs needed by the recovery flow.
type RecoveryMetrics struct {
	RecoverySuccess int
	RecoveryFailure int
}

// RecoveryEvents carries audit event names used by the recovery flow.
type RecoveryEvents struct {
	RecoverySuccess string
	RecoveryFailure string
	AccountLocked   string
}

// RecoveryErrors carries host-level sentinel errors used by the recovery flow.
type RecoveryErrors struct {
	EngineNotReady     error
	AccountNotFound    error
	AccountNotLocked   error
	RecoveryFailed     error
	Persistence        error
	Integrity          error
	SessionUnavailable error
}

// RecoveryDeps captures unlock and administrative lock dependencies.
type RecoveryDeps struct {
	Lock         LockFunc
	FindAccount  func(number string) (account.Account, error)
	FindCustomer func(id string) (account.Customer, error)
	Policy       *lockout.Policy

	// HashSecret turns a replacement secret into its stored form.
	HashSecret        func(secret string) (string, error)
	InvalidateAccount func(ctx context.Context, accountNumber string) error

	MetricInc func(int)
	EmitAudit AuditFunc
	Warn      func(string, ...any)

	Metrics RecoveryMetrics
	Events  RecoveryEvents
	Errors  RecoveryErrors
}

func (d *RecoveryDeps) defaults() bool {
	if d.Lock == nil {
		d.Lock = noopLock
	}
	if d.MetricInc == nil {
		d.MetricInc = noopMetric
	}
	if d.EmitAudit == nil {
		d.EmitAudit = noopAudit
	}
	if d.Warn == nil {
		d.Warn = noopWarn
	}
	return d.FindAccount != nil && d.FindCustomer != nil && d.Policy != nil
}

// Questions returns the challenge for c: identity questions first, then the
// registered answer keys in sorted order.
func Questions(c account.Customer) []string {
	keys := c.AnswerKeys()
	out := make([]string, 0, len(keys)+2)
	out = append(out, QuestionFullName, QuestionBirthDate)
	for _, k := range keys {
		if k == QuestionFullName || k == QuestionBirthDate {
			continue
		}
		out = append(out, k)
	}
	return out
}

// NormalizeAnswer trims, applies NFKC, collapses inner whitespace and
// case-folds v.
func NormalizeAnswer(v string) string {
	v = norm.NFKC.String(v)
	v = strings.Join(strings.Fields(v), " ")
	return cases.Fold().String(v)
}

func normalizeBirthDate(v string) string {
	v = strings.TrimSpace(norm.NFKC.String(v))
	if t, err := time.Parse(birthDateInputLayout, v); err == nil {
		return t.Format(birthDateLayout)
	}
	return v
}

func expectedAnswers(c account.Customer) map[string]string {
	out := make(map[string]string, len(c.Answers)+2)
	for k, v := range c.Answers {
		out[k] = NormalizeAnswer(v)
	}
	out[QuestionFullName] = NormalizeAnswer(c.FullName)
	out[QuestionBirthDate] = c.BirthDate.Format(birthDateLayout)
	return out
}

// answersMatch compares every question without short-circuiting. A missing
// answer counts as a mismatch.
func answersMatch(c account.Customer, given map[string]string) bool {
	expected := expectedAnswers(c)
	match := 1
	for _, q := range Questions(c) {
		got, ok := given[q]
		if q == QuestionBirthDate {
			got = normalizeBirthDate(got)
		} else {
			got = NormalizeAnswer(got)
		}
		a := sha256.Sum256([]byte(got))
		b := sha256.Sum256([]byte(expected[q]))
		eq := subtle.ConstantTimeCompare(a[:], b[:])
		if !ok {
			eq = 0
		}
		match &= eq
	}
	return match == 1
}

func lockedCustomer(number string, deps RecoveryDeps) (account.Account, account.Customer, error) {
	if !account.ValidNumber(number) {
		return account.Account{}, account.Customer{}, deps.Errors.AccountNotFound
	}
	acct, err := deps.FindAccount(number)
	if err != nil {
		return account.Account{}, account.Customer{}, deps.Errors.AccountNotFound
	}
	if !acct.Locked() {
		return account.Account{}, account.Customer{}, deps.Errors.AccountNotLocked
	}
	cust, err := deps.FindCustomer(acct.CustomerID)
	if err != nil {
		return account.Account{}, account.Customer{}, deps.Errors.Integrity
	}
	return acct, cust, nil
}

// RunRecoveryQuestions returns the question ids for a Locked account.
func RunRecoveryQuestions(number string, deps RecoveryDeps) ([]string, error) {
	if !deps.defaults() {
		return nil, deps.Errors.EngineNotReady
	}
	_, cust, err := lockedCustomer(number, deps)
	if err != nil {
		return nil, err
	}
	return Questions(cust), nil
}

// RunAttemptUnlock verifies the KBA answers for a Locked account and, on
// success, resets the counter, reactivates the account and optionally
// replaces its secret in one persisted write. Every session issued before
// the lock is ended first; the account stays Locked when that fails.
func RunAttemptUnlock(ctx context.Context, in UnlockInput, deps RecoveryDeps) error {
	if !deps.defaults() || deps.InvalidateAccount == nil {
		return deps.Errors.EngineNotReady
	}
	if !account.ValidNumber(in.AccountNumber) {
		return deps.Errors.AccountNotFound
	}

	unlock := deps.Lock(in.AccountNumber)
	defer unlock()

	acct, cust, err := lockedCustomer(in.AccountNumber, deps)
	if err != nil {
		return err
	}

	if !answersMatch(cust, in.Answers) {
		deps.MetricInc(deps.Metrics.RecoveryFailure)
		deps.EmitAudit(ctx, deps.Events.RecoveryFailure, false, acct.Number, "", deps.Errors.RecoveryFailed, nil)
		return deps.Errors.RecoveryFailed
	}

	var newSecret string
	if in.NewSecret != "" {
		newSecret = in.NewSecret
		if deps.HashSecret != nil {
			newSecret, err = deps.HashSecret(in.NewSecret)
			if err != nil {
				return fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
			}
		}
	}
	in.NewSecret = ""

	if err := deps.InvalidateAccount(ctx, acct.Number); err != nil {
		deps.EmitAudit(ctx, deps.Events.RecoveryFailure, false, acct.Number, "", err, func() map[string]string {
			return map[string]string{"reason": "session_invalidation_failed"}
		})
		return errors.Join(deps.Errors.SessionUnavailable, err)
	}

	_, err = deps.Policy.Unlock(ctx, acct, func(next *account.Account) {
		if newSecret != "" {
			next.Secret = newSecret
		}
	})
	if err != nil {
		deps.EmitAudit(ctx, deps.Events.RecoveryFailure, false, acct.Number, "", err, func() map[string]string {
			return map[string]string{"reason": "persist_failed"}
		})
		return fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	deps.MetricInc(deps.Metrics.RecoverySuccess)
	deps.EmitAudit(ctx, deps.Events.RecoverySuccess, true, acct.Number, "", nil, func() map[string]string {
		return map[string]string{"secret_replaced": fmt.Sprint(newSecret != "")}
	})
	return nil
}

// RunLockAccount moves an Active account to Locked by operator action and
// invalidates its session. The failure counter is left alone. locked reports
// whether this call made the transition.
func RunLockAccount(ctx context.Context, number string, deps RecoveryDeps) (locked bool, err error) {
	if !deps.defaults() || deps.InvalidateAccount == nil {
		return false, deps.Errors.EngineNotReady
	}
	if !account.ValidNumber(number) {
		return false, deps.Errors.AccountNotFound
	}

	unlock := deps.Lock(number)
	defer unlock()

	acct, err := deps.FindAccount(number)
	if err != nil {
		return false, deps.Errors.AccountNotFound
	}
	if acct.Locked() {
		return false, nil
	}

	if _, err := deps.Policy.Lock(ctx, acct); err != nil {
		return false, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}
	deps.EmitAudit(ctx, deps.Events.AccountLocked, true, number, "", nil, func() map[string]string {
		return map[string]string{"reason": "operator"}
	})

	if err := deps.InvalidateAccount(ctx, number); err != nil {
		deps.Warn("goTeller: session invalidation after lock failed: %v", err)
	}
	return true, nil
}
