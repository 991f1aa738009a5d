package goTeller

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MrEthical07/goTeller/store/jsonfile"
	"github.com/MrEthical07/goTeller/store/sqlite"
)

func seedInto(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	src := seededStorage()
	for _, c := range src.customers {
		if err := s.SaveCustomer(ctx, c); err != nil {
			t.Fatalf("SaveCustomer failed: %v", err)
		}
	}
	for _, a := range src.accounts {
		if err := s.SaveAccount(ctx, a); err != nil {
			t.Fatalf("SaveAccount failed: %v", err)
		}
	}
}

func TestLockoutSurvivesRestart(t *testing.T) {
	backends := map[string]func(t *testing.T, path string) Storage{
		"jsonfile": func(t *testing.T, path string) Storage {
			s, err := jsonfile.Open(path)
			if err != nil {
				t.Fatalf("jsonfile.Open failed: %v", err)
			}
			return s
		},
		"sqlite": func(t *testing.T, path string) Storage {
			s, err := sqlite.Open(path)
			if err != nil {
				t.Fatalf("sqlite.Open failed: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "bank")
			first := open(t, path)
			seedInto(t, first)

			engine := newTestEngine(t, first)
			_, _ = engine.Authenticate(ctx, "ACC-001", "wrong")
			_, _ = engine.Authenticate(ctx, "ACC-001", "wrong")
			engine.Close()

			// A fresh process sees the persisted counter: one more failure locks.
			restarted := newTestEngine(t, open(t, path))
			_, _ = restarted.Authenticate(ctx, "ACC-001", "wrong")
			if _, err := restarted.Authenticate(ctx, "ACC-001", "pass1"); !errors.Is(err, ErrAccountLocked) {
				t.Fatalf("expected ErrAccountLocked after restart, got %v", err)
			}

			if err := restarted.AttemptUnlock(ctx, UnlockRequest{AccountNumber: "ACC-001", Answers: correctAnswers()}); err != nil {
				t.Fatalf("AttemptUnlock failed: %v", err)
			}
			tok := login(t, restarted, "ACC-001", "pass1")
			if _, err := restarted.Deposit(ctx, tok, 250); err != nil {
				t.Fatalf("Deposit failed: %v", err)
			}
			restarted.Close()

			final := newTestEngine(t, open(t, path))
			tok = login(t, final, "ACC-001", "pass1")
			st, err := final.Statement(ctx, tok)
			if err != nil {
				t.Fatalf("Statement failed: %v", err)
			}
			if st.Balance != 10250 {
				t.Fatalf("expected persisted balance 10250, got %d", st.Balance)
			}
		})
	}
}
