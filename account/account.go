package account

import (
	"sort"
	"time"
)

// Status is the access state of an account.
type Status uint8

const (
	// StatusActive accepts login attempts and teller operations.
	StatusActive Status = iota
	// StatusLocked rejects every login attempt until recovery succeeds.
	StatusLocked
)

// String returns the lowercase status name used in storage and audit records.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// ParseStatus maps a stored status name back to a [Status].
func ParseStatus(v string) (Status, bool) {
	switch v {
	case "active":
		return StatusActive, true
	case "locked":
		return StatusLocked, true
	default:
		return 0, false
	}
}

// Kind selects the withdrawal rule applied to an account.
type Kind uint8

const (
	// KindSavings withdrawals are limited to the balance.
	KindSavings Kind = iota
	// KindChecking withdrawals may use the overdraft limit.
	KindChecking
)

func (k Kind) String() string {
	switch k {
	case KindSavings:
		return "savings"
	case KindChecking:
		return "checking"
	default:
		return "unknown"
	}
}

// ParseKind maps a stored kind name back to a [Kind].
func ParseKind(v string) (Kind, bool) {
	switch v {
	case "savings":
		return KindSavings, true
	case "checking":
		return KindChecking, true
	default:
		return 0, false
	}
}

// Customer owns one or more accounts and carries the knowledge-based
// answers used to unlock them.
type Customer struct {
	ID        string
	FullName  string
	BirthDate time.Time
	Answers   map[string]string
}

// Clone returns a deep copy of c.
func (c Customer) Clone() Customer {
	out := c
	if c.Answers != nil {
		out.Answers = make(map[string]string, len(c.Answers))
		for k, v := range c.Answers {
			out.Answers[k] = v
		}
	}
	return out
}

// AnswerKeys returns the registered answer keys in stable order.
func (c Customer) AnswerKeys() []string {
	keys := make([]string, 0, len(c.Answers))
	for k := range c.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Account is a single bank account. Amounts are minor currency units.
type Account struct {
	Number         string
	CustomerID     string
	Secret         string
	Kind           Kind
	Balance        int64
	OverdraftLimit int64
	FailedAttempts int
	Status         Status
	Transactions   []int64
	Version        uint64
}

// Clone returns a deep copy of a.
func (a Account) Clone() Account {
	out := a
	if a.Transactions != nil {
		out.Transactions = make([]int64, len(a.Transactions))
		copy(out.Transactions, a.Transactions)
	}
	return out
}

// Next returns a deep copy of a with Version advanced, the starting point
// for every persisted mutation.
func (a Account) Next() Account {
	out := a.Clone()
	out.Version++
	return out
}

// Locked reports whether the account rejects login attempts.
func (a Account) Locked() bool {
	return a.Status == StatusLocked
}

// Available returns the amount that can be withdrawn right now.
func (a Account) Available() int64 {
	if a.Kind == KindChecking {
		return a.Balance + a.OverdraftLimit
	}
	return a.Balance
}

const maxNumberLen = 32

// ValidNumber reports whether v is a structurally well-formed account
// number: 1 to 32 characters of ASCII letters, digits, or '-'.
func ValidNumber(v string) bool {
	if v == "" || len(v) > maxNumberLen {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}
