package goTeller

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledIgnoresCalls(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricAuthenticateLatency, time.Millisecond)
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	s := m.Snapshot()
	if len(s.Counters) != 0 || len(s.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", s)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricAuthenticateLatency, time.Second)
	if m.Value(MetricLoginSuccess) != 0 || m.Enabled() || m.LatencyEnabled() {
		t.Fatal("expected nil metrics to be inert")
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricDeposit)
			}
		}()
	}
	wg.Wait()
	if got := m.Value(MetricDeposit); got != 16000 {
		t.Fatalf("expected 16000, got %d", got)
	}
}

func TestMetricsOutOfRangeIgnored(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(metricIDCount)
	m.Inc(MetricID(9999))
	if got := m.Value(MetricID(9999)); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsHistogramBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	for _, d := range []time.Duration{
		time.Millisecond,
		7 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		90 * time.Millisecond,
		time.Hour,
	} {
		m.Observe(MetricAuthenticateLatency, d)
	}
	// Only the latency id carries a histogram.
	m.Observe(MetricLoginSuccess, time.Millisecond)

	buckets := m.Snapshot().Histograms[MetricAuthenticateLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	for i, want := range []uint64{1, 1, 1, 1, 1} {
		if buckets[i] != want {
			t.Fatalf("bucket %d: expected %d, got %d (%v)", i, want, buckets[i], buckets)
		}
	}
	if buckets[histBucketCount-1] != 1 {
		t.Fatalf("expected overflow bucket 1, got %v", buckets)
	}
	if _, ok := m.Snapshot().Counters[MetricAuthenticateLatency]; ok {
		t.Fatal("latency id must not appear among counters")
	}
}

func TestEngineMetricsFlow(t *testing.T) {
	engine := newTestEngine(t, seededStorage())
	ctx := context.Background()

	_, _ = engine.Authenticate(ctx, "ACC-404", "x")
	lockByFailures(t, engine, "ACC-001")
	_, _ = engine.Authenticate(ctx, "ACC-001", "pass1")
	tok := login(t, engine, "ACC-002", "pass2")
	_, _ = engine.Deposit(ctx, tok, 10)
	_, _ = engine.Withdraw(ctx, tok, 1<<40)
	_ = engine.Logout(ctx, tok)

	c := engine.MetricsSnapshot().Counters
	checks := map[MetricID]uint64{
		MetricLoginFailure:   4,
		MetricAccountLockout: 1,
		MetricLoginLocked:    1,
		MetricLoginSuccess:   1,
		MetricSessionCreated: 1,
		MetricDeposit:        1,
		MetricTellerRejected: 1,
		MetricResolveSuccess: 2,
		MetricLogout:         1,
	}
	for id, want := range checks {
		if c[id] != want {
			t.Fatalf("metric %d: expected %d, got %d", id, want, c[id])
		}
	}
}
