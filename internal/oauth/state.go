package oauth

import (
	"errors"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	tokens "github.com/dropDatabas3/slackjohn/internal/security/token"
)

// StateTTL is how long an issued state token stays consumable.
const StateTTL = 10 * time.Minute

var (
	// ErrInvalidState covers both "never issued" and "already consumed".
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidState = errors.New("oauth: invalid state")

	// ErrExpiredState means the token was issued but outlived its TTL.
	ErrExpiredState = errors.New("oauth: expired state")
)

// StateStore holds issued CSRF state tokens in process memory. Tokens are
// never persisted: losing them on restart only forces a user to restart
// the install flow, it opens no security hole.
//
// The underlying go-cache janitor sweeps stale entries; the mutex makes
// Take an atomic check-and-remove so two racing Complete calls can never
// both win the same token.
type StateStore struct {
	mu  sync.Mutex
	c   *gocache.Cache
	ttl time.Duration
	now func() time.Time
}

// NewStateStore creates a StateStore with the given TTL.
// Entries are retained past the TTL (and swept at 2×TTL) so that a late
// consumption can still be reported as expired rather than invalid.
func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{
		c:   gocache.New(2*ttl, time.Minute),
		ttl: ttl,
		now: time.Now,
	}
}

// Issue generates a fresh unguessable token (256 bits of entropy) and
// registers it with the current timestamp.
func (s *StateStore) Issue() (string, error) {
	token, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return "", err
	}
	s.c.SetDefault(token, s.now())
	return token, nil
}

// Take consumes a token: exactly one Take per issued token can succeed.
// Consumption and expiry are both terminal.
func (s *StateStore) Take(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.c.Get(token)
	if !ok {
		return ErrInvalidState
	}
	s.c.Delete(token)

	issuedAt, ok := v.(time.Time)
	if !ok || s.now().Sub(issuedAt) > s.ttl {
		return ErrExpiredState
	}
	return nil
}

// Len reports the number of live entries. For tests and diagnostics.
func (s *StateStore) Len() int {
	return s.c.ItemCount()
}
