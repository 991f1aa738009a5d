// Command goteller-loadtest drives concurrent logins and token resolution
// through a goTeller engine backed by Redis sessions, and checks that
// contended failures on one account lock it exactly once.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goTeller "github.com/MrEthical07/goTeller"
)

// memStorage keeps records in process memory; durability is not under test.
type memStorage struct {
	mu        sync.Mutex
	accounts  map[string]goTeller.Account
	customers map[string]goTeller.Customer
}

func (s *memStorage) Load(context.Context) ([]goTeller.Account, []goTeller.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make([]goTeller.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a.Clone())
	}
	customers := make([]goTeller.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, c.Clone())
	}
	return accounts, customers, nil
}

func (s *memStorage) SaveAccount(_ context.Context, a goTeller.Account) error {
	s.mu.Lock()
	s.accounts[a.Number] = a.Clone()
	s.mu.Unlock()
	return nil
}

func (s *memStorage) SaveCustomer(_ context.Context, c goTeller.Customer) error {
	s.mu.Lock()
	s.customers[c.ID] = c.Clone()
	s.mu.Unlock()
	return nil
}

func (s *memStorage) DeleteAccount(_ context.Context, number string) error {
	s.mu.Lock()
	delete(s.accounts, number)
	s.mu.Unlock()
	return nil
}

func main() {
	var (
		accounts    = flag.Int("accounts", 10000, "number of accounts to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gt", "session key prefix")
	)
	flag.Parse()

	if *accounts <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	storage := seed(*accounts)
	cfg := goTeller.DefaultConfig()
	cfg.Session.RedisPrefix = *prefix
	cfg.Metrics.Enabled = true

	engine, err := goTeller.New().
		WithConfig(cfg).
		WithStorage(storage).
		WithRedis(client).
		Build(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	tokens := make([]atomic.Value, *accounts)

	loginStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		idx := r.Intn(*accounts)
		sess, err := engine.Authenticate(ctx, accountNumber(idx), secretFor(idx))
		if err != nil {
			return err
		}
		tokens[idx].Store(sess.Token)
		return nil
	})

	// A token can be replaced between load and resolve; those count as
	// rejections, not failures.
	var replaced int64
	resolveStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		idx := r.Intn(*accounts)
		tok, _ := tokens[idx].Load().(string)
		if tok == "" {
			return nil
		}
		_, err := engine.Resolve(ctx, tok)
		if errors.Is(err, goTeller.ErrInvalidToken) {
			atomic.AddInt64(&replaced, 1)
			return nil
		}
		return err
	})

	target := accountNumber(0)
	lockStats := runPhase(*concurrency*4, *concurrency, func(*rand.Rand) error {
		_, err := engine.Authenticate(ctx, target, "wrong")
		if errors.Is(err, goTeller.ErrAccountNotFound) || errors.Is(err, goTeller.ErrAccountLocked) {
			return nil
		}
		return err
	})

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("resolve", resolveStats)
	fmt.Printf("resolve: replaced-token rejections=%d\n", replaced)
	printStats("contended-failure", lockStats)

	snap := engine.MetricsSnapshot()
	locked := storage.accounts[target]
	fmt.Printf("lockouts=%d target-status=%s target-counter=%d\n",
		snap.Counters[goTeller.MetricAccountLockout], locked.Status, locked.FailedAttempts)
	if snap.Counters[goTeller.MetricAccountLockout] != 1 || locked.FailedAttempts != cfg.Lockout.Threshold {
		fmt.Fprintln(os.Stderr, "lockout invariant violated")
		os.Exit(1)
	}
}

func seed(n int) *memStorage {
	s := &memStorage{
		accounts:  make(map[string]goTeller.Account, n),
		customers: make(map[string]goTeller.Customer, 1),
	}
	s.customers["load"] = goTeller.Customer{ID: "load", FullName: "Load Test", BirthDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}
	for i := 0; i < n; i++ {
		num := accountNumber(i)
		s.accounts[num] = goTeller.Account{
			Number:     num,
			CustomerID: "load",
			Secret:     secretFor(i),
			Kind:       goTeller.KindSavings,
		}
	}
	return s
}

func accountNumber(i int) string {
	return fmt.Sprintf("LT-%07d", i)
}

func secretFor(i int) string {
	return fmt.Sprintf("s%d", i*7919)
}

func runPhase(ops, concurrency int, op func(*rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
