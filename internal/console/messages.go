package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	goTeller "github.com/MrEthical07/goTeller"
)

// Message returns the text shown to the operator for err. Unknown accounts
// and wrong secrets share one message.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, goTeller.ErrAccountNotFound):
		return "Invalid account number or secret."
	case errors.Is(err, goTeller.ErrAccountLocked):
		return "This account is locked. Choose \"Unlock account\" to recover it."
	case errors.Is(err, goTeller.ErrInvalidToken):
		return "Your session has ended. Please log in again."
	case errors.Is(err, goTeller.ErrRecoveryFailed):
		return "The answers did not match. The account stays locked."
	case errors.Is(err, goTeller.ErrAccountNotLocked):
		return "This account is active. There is nothing to unlock."
	case errors.Is(err, goTeller.ErrInvalidAmount):
		return "Enter a positive amount."
	case errors.Is(err, goTeller.ErrInsufficientFunds):
		return "Insufficient funds for this withdrawal."
	case errors.Is(err, goTeller.ErrBalanceNotZero):
		return "Only an account with a zero balance can be closed."
	case errors.Is(err, goTeller.ErrIntegrity):
		return "Something went wrong with this account. You have been logged out."
	case errors.Is(err, goTeller.ErrPersistence), errors.Is(err, goTeller.ErrSessionUnavailable):
		return "The bank is unavailable right now. Try again later."
	default:
		return "Unexpected error."
	}
}

// ParseAmount reads a decimal amount with at most two fractional digits
// into minor units.
func ParseAmount(v string) (int64, error) {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
	if v == "" || strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+") {
		return 0, goTeller.ErrInvalidAmount
	}
	whole, frac, hasFrac := strings.Cut(v, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, goTeller.ErrInvalidAmount
	}
	if !digits(whole) || (hasFrac && !digits(frac)) {
		return 0, goTeller.ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > (1<<63-1)/100 {
		return 0, goTeller.ErrInvalidAmount
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, goTeller.ErrInvalidAmount
	}
	total := units*100 + cents
	if total <= 0 {
		return 0, goTeller.ErrInvalidAmount
	}
	return total, nil
}

func digits(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return true
}

// FormatAmount renders minor units as a signed decimal.
func FormatAmount(v int64) string {
	sign := ""
	u := uint64(v)
	if v < 0 {
		sign = "-"
		u = uint64(-(v + 1)) + 1
	}
	return fmt.Sprintf("%s%d.%02d", sign, u/100, u%100)
}
