package main

import (
	"math/rand"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(samples, 50); got != 5 {
		t.Fatalf("expected p50=5, got %d", got)
	}
	if got := percentile(samples, 100); got != 10 {
		t.Fatalf("expected p100=10, got %d", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("expected 0 for empty samples, got %d", got)
	}
}

func TestRunPhaseCountsFailures(t *testing.T) {
	n := 0
	s := runPhase(100, 1, func(*rand.Rand) error {
		n++
		if n%10 == 0 {
			return errTest
		}
		return nil
	})
	if s.ops != 100 || s.failures != 10 {
		t.Fatalf("expected 100 ops and 10 failures, got %d/%d", s.ops, s.failures)
	}
}

func TestSeedBuildsValidAccounts(t *testing.T) {
	s := seed(3)
	if len(s.accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(s.accounts))
	}
	for num, a := range s.accounts {
		if a.CustomerID != "load" || a.Secret == "" || num != a.Number {
			t.Fatalf("unexpected account %+v", a)
		}
	}
}

var errTest = testErr("boom")

type testErr string

func (e testErr) Error() string { return string(e) }
