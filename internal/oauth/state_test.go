package oauth

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStateStore_IssueThenTakeOnce(t *testing.T) {
	t.Parallel()

	s := NewStateStore(StateTTL)
	token, err := s.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(token) < 43 {
		// 32 bytes base64url sin padding = 43 chars
		t.Fatalf("token too short for 256 bits of entropy: %d chars", len(token))
	}

	if err := s.Take(token); err != nil {
		t.Fatalf("first take: %v", err)
	}
	if err := s.Take(token); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second take: want ErrInvalidState, got %v", err)
	}
}

func TestStateStore_NeverIssued(t *testing.T) {
	t.Parallel()

	s := NewStateStore(StateTTL)
	if err := s.Take("never-issued"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestStateStore_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	s := NewStateStore(StateTTL)
	s.now = func() time.Time { return now }

	token, err := s.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// justo dentro del TTL: consumible
	s.now = func() time.Time { return now.Add(StateTTL) }
	if err := s.Take(token); err != nil {
		t.Fatalf("take at exact TTL: %v", err)
	}

	// emitir otro y dejarlo vencer
	s.now = func() time.Time { return now }
	token2, _ := s.Issue()
	s.now = func() time.Time { return now.Add(StateTTL + time.Second) }
	if err := s.Take(token2); !errors.Is(err, ErrExpiredState) {
		t.Fatalf("want ErrExpiredState, got %v", err)
	}
	// la expiración es terminal
	if err := s.Take(token2); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expired token must stay consumed: %v", err)
	}
}

func TestStateStore_ConcurrentTake_ExactlyOneWinner(t *testing.T) {
	t.Parallel()

	s := NewStateStore(StateTTL)
	token, err := s.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const goroutines = 32
	var wg sync.WaitGroup
	results := make(chan error, goroutines)
	start := make(chan struct{})

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- s.Take(token)
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("loser got unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}
