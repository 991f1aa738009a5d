package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/MrEthical07/goTeller/account"
	"github.com/MrEthical07/goTeller/store"
)

const formatVersion = 1

// ErrUnsupportedFormat is returned when the file was written by a newer format.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

type meta struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type snapshot struct {
	Meta      meta                   `json:"_meta"`
	Customers []store.CustomerRecord `json:"customers"`
	Accounts  []store.AccountRecord  `json:"accounts"`
}

// Store keeps every record in one JSON file. Each save rewrites the file
// through a temporary file and rename, so a crash leaves either the old or
// the new snapshot on disk.
type Store struct {
	mu        sync.Mutex
	path      string
	accounts  map[string]store.AccountRecord
	customers map[string]store.CustomerRecord
	now       func() time.Time
}

// Open reads path. A missing file yields an empty store; the file is
// created on the first save.
func Open(path string) (*Store, error) {
	s := &Store{
		path:      path,
		accounts:  make(map[string]store.AccountRecord),
		customers: make(map[string]store.CustomerRecord),
		now:       time.Now,
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if snap.Meta.Version > formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, snap.Meta.Version)
	}
	for _, c := range snap.Customers {
		s.customers[c.ID] = c
	}
	for _, a := range snap.Accounts {
		s.accounts[a.Number] = a
	}
	return s, nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns every stored account and customer.
func (s *Store) Load(ctx context.Context) ([]account.Account, []account.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	customers := make([]account.Customer, 0, len(s.customers))
	for _, r := range s.customers {
		c, err := r.Customer()
		if err != nil {
			return nil, nil, err
		}
		customers = append(customers, c)
	}
	accounts := make([]account.Account, 0, len(s.accounts))
	for _, r := range s.accounts {
		a, err := r.Account()
		if err != nil {
			return nil, nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, customers, nil
}

// SaveAccount durably replaces the record for a.Number.
func (s *Store) SaveAccount(ctx context.Context, a account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.accounts[a.Number]
	s.accounts[a.Number] = store.FromAccount(a)
	if err := s.flushLocked(); err != nil {
		if had {
			s.accounts[a.Number] = prev
		} else {
			delete(s.accounts, a.Number)
		}
		return err
	}
	return nil
}

// SaveCustomer durably replaces the record for c.ID.
func (s *Store) SaveCustomer(ctx context.Context, c account.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.customers[c.ID]
	s.customers[c.ID] = store.FromCustomer(c)
	if err := s.flushLocked(); err != nil {
		if had {
			s.customers[c.ID] = prev
		} else {
			delete(s.customers, c.ID)
		}
		return err
	}
	return nil
}

// DeleteAccount durably removes the record for number. Unknown numbers are
// a no-op.
func (s *Store) DeleteAccount(ctx context.Context, number string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.accounts[number]
	if !had {
		return nil
	}
	delete(s.accounts, number)
	if err := s.flushLocked(); err != nil {
		s.accounts[number] = prev
		return err
	}
	return nil
}

func (s *Store) flushLocked() error {
	snap := snapshot{
		Meta:      meta{Version: formatVersion, UpdatedAt: s.now().UTC()},
		Customers: make([]store.CustomerRecord, 0, len(s.customers)),
		Accounts:  make([]store.AccountRecord, 0, len(s.accounts)),
	}
	for _, c := range s.customers {
		snap.Customers = append(snap.Customers, c)
	}
	for _, a := range s.accounts {
		snap.Accounts = append(snap.Accounts, a)
	}
	sort.Slice(snap.Customers, func(i, j int) bool { return snap.Customers[i].ID < snap.Customers[j].ID })
	sort.Slice(snap.Accounts, func(i, j int) bool { return snap.Accounts[i].Number < snap.Accounts[j].Number })

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return writeAtomic(s.path, raw)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
