package slack

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/slackjohn/internal/security/secretbox"
	slackapi "github.com/dropDatabas3/slackjohn/internal/slack"
	"github.com/dropDatabas3/slackjohn/internal/store"
	_ "github.com/dropDatabas3/slackjohn/internal/store/adapters/fs"
	"github.com/dropDatabas3/slackjohn/internal/vault"
)

type fakePoster struct {
	mu    sync.Mutex
	calls int
}

func (f *fakePoster) PostMessage(_ context.Context, _ string, _ slackapi.PostMessageRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func newTestVault(t *testing.T) *vault.Store {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	box, err := secretbox.New(key)
	require.NoError(t, err)
	conn, err := store.Open(context.Background(), store.AdapterConfig{Name: "fs", DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return vault.New(conn.Installations(), box)
}

func installTeam(t *testing.T, v *vault.Store, teamID, botUserID string) {
	t.Helper()
	require.NoError(t, v.Upsert(context.Background(), teamID, "Acme", "xoxb-"+teamID, botUserID, "chat:write"))
}
