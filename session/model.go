package session

// Session binds one issued token to the account it unlocks. The account is
// referenced by number only; the session never owns account state.
type Session struct {
	SessionID     string
	AccountNumber string

	CreatedAt int64
	ExpiresAt int64 // unix seconds, 0 = no expiry
}

// Expired reports whether the session is past its expiry at now (unix seconds).
func (s *Session) Expired(now int64) bool {
	return s.ExpiresAt != 0 && now >= s.ExpiresAt
}
