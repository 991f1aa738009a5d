package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const sessionFormatVersionCurrent = 1

var (
	// ErrUnsupportedVersion is returned for blobs written by an unknown encoder.
	ErrUnsupportedVersion = errors.New("unsupported session format version")
	// ErrCorrupt is returned for truncated or oversized blobs.
	ErrCorrupt = errors.New("corrupt session blob")
)

// Encode serializes s into the compact binary layout:
// version(1) | len(1) account number | created_at(8) | expires_at(8).
// SessionID is the storage key and is not part of the blob.
func Encode(s *Session) ([]byte, error) {
	if len(s.AccountNumber) == 0 || len(s.AccountNumber) > 255 {
		return nil, errors.New("account number length out of range")
	}

	var buf bytes.Buffer
	buf.Grow(2 + len(s.AccountNumber) + 16)

	buf.WriteByte(sessionFormatVersionCurrent)
	buf.WriteByte(byte(len(s.AccountNumber)))
	buf.WriteString(s.AccountNumber)

	var ts [16]byte
	binary.BigEndian.PutUint64(ts[:8], uint64(s.CreatedAt))
	binary.BigEndian.PutUint64(ts[8:], uint64(s.ExpiresAt))
	buf.Write(ts[:])

	return buf.Bytes(), nil
}

// Decode parses a blob produced by [Encode].
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, ErrCorrupt
	}
	if version != sessionFormatVersionCurrent {
		return nil, ErrUnsupportedVersion
	}

	n, err := reader.ReadByte()
	if err != nil || n == 0 {
		return nil, ErrCorrupt
	}
	number := make([]byte, n)
	if _, err := io.ReadFull(reader, number); err != nil {
		return nil, ErrCorrupt
	}

	var ts [16]byte
	if _, err := io.ReadFull(reader, ts[:]); err != nil {
		return nil, ErrCorrupt
	}
	if reader.Len() != 0 {
		return nil, ErrCorrupt
	}

	return &Session{
		AccountNumber: string(number),
		CreatedAt:     int64(binary.BigEndian.Uint64(ts[:8])),
		ExpiresAt:     int64(binary.BigEndian.Uint64(ts[8:])),
	}, nil
}
