package goTeller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var errStorageDown = errors.New("storage down")

// memStorage is an in-memory Storage that can be told to fail saves.
type memStorage struct {
	mu        sync.Mutex
	accounts  map[string]Account
	customers map[string]Customer
	saves     int
	failSave  bool
	failLoad  bool
}

func newMemStorage() *memStorage {
	return &memStorage{
		accounts:  make(map[string]Account),
		customers: make(map[string]Customer),
	}
}

func (s *memStorage) Load(context.Context) ([]Account, []Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad {
		return nil, nil, errStorageDown
	}
	accounts := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a.Clone())
	}
	customers := make([]Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, c.Clone())
	}
	return accounts, customers, nil
}

func (s *memStorage) SaveAccount(_ context.Context, a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errStorageDown
	}
	s.saves++
	s.accounts[a.Number] = a.Clone()
	return nil
}

func (s *memStorage) SaveCustomer(_ context.Context, c Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errStorageDown
	}
	s.customers[c.ID] = c.Clone()
	return nil
}

func (s *memStorage) DeleteAccount(_ context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errStorageDown
	}
	s.saves++
	delete(s.accounts, number)
	return nil
}

func (s *memStorage) setFailSave(v bool) {
	s.mu.Lock()
	s.failSave = v
	s.mu.Unlock()
}

func (s *memStorage) account(number string) Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[number].Clone()
}

func (s *memStorage) has(number string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[number]
	return ok
}

func (s *memStorage) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// seededStorage holds the demo customer with a savings and a checking account.
func seededStorage() *memStorage {
	s := newMemStorage()
	s.customers["CUST-1"] = Customer{
		ID:        "CUST-1",
		FullName:  "Ada Lovelace",
		BirthDate: time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC),
		Answers: map[string]string{
			"first_pet": "Rex",
		},
	}
	s.accounts["ACC-001"] = Account{
		Number:     "ACC-001",
		CustomerID: "CUST-1",
		Secret:     "pass1",
		Kind:       KindSavings,
		Balance:    10000,
	}
	s.accounts["ACC-002"] = Account{
		Number:         "ACC-002",
		CustomerID:     "CUST-1",
		Secret:         "pass2",
		Kind:           KindChecking,
		Balance:        5000,
		OverdraftLimit: 2000,
	}
	return s
}

func correctAnswers() map[string]string {
	return map[string]string{
		QuestionFullName:  "ada   LOVELACE",
		QuestionBirthDate: "10/12/1815",
		"first_pet":       "rex",
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Token.SigningKey = []byte("0123456789abcdef0123456789abcdef")
	return cfg
}

func newTestEngine(t *testing.T, store Storage) *Engine {
	t.Helper()
	return newTestEngineWith(t, New().WithConfig(testConfig()).WithStorage(store))
}

func newTestEngineWith(t *testing.T, b *Builder) *Engine {
	t.Helper()
	engine, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

// lockByFailures drives accountNumber to Locked with wrong secrets.
func lockByFailures(t *testing.T, engine *Engine, accountNumber string) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < engine.config.Lockout.Threshold; i++ {
		if _, err := engine.Authenticate(ctx, accountNumber, "wrong"); !errors.Is(err, ErrAccountNotFound) {
			t.Fatalf("attempt %d: expected ErrAccountNotFound, got %v", i+1, err)
		}
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
