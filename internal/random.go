package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// SessionID is the 128-bit random identifier behind every session token.
type SessionID [16]byte

// ErrSessionIDSize is returned when a decoded session id has the wrong length.
var ErrSessionIDSize = errors.New("invalid session id size")

func NewSessionID() (SessionID, error) {
	var sid SessionID
	_, err := rand.Read(sid[:])
	return sid, err
}

func (s SessionID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(s[:])
}

func ParseSessionID(sessionID string) (SessionID, error) {
	var sid SessionID

	raw, err := base64.RawURLEncoding.DecodeString(sessionID)
	if err != nil {
		return sid, err
	}
	if len(raw) != len(sid) {
		return sid, ErrSessionIDSize
	}

	copy(sid[:], raw)
	return sid, nil
}
