package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/slackjohn/internal/security/secretbox"
	"github.com/dropDatabas3/slackjohn/internal/slack"
	"github.com/dropDatabas3/slackjohn/internal/store"
	_ "github.com/dropDatabas3/slackjohn/internal/store/adapters/fs"
	"github.com/dropDatabas3/slackjohn/internal/vault"
)

func newTestVault(t *testing.T) *vault.Store {
	t.Helper()
	conn, err := store.Open(context.Background(), store.AdapterConfig{Name: "fs", DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 100)
	}
	box, err := secretbox.New(key)
	require.NoError(t, err)
	return vault.New(conn.Installations(), box)
}

func newTestCoordinator(t *testing.T, upstream http.HandlerFunc) (*Coordinator, *vault.Store) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	v := newTestVault(t)
	c := NewCoordinator(Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURI:  "https://app.example.com/slack/oauth_redirect",
	}, NewStateStore(StateTTL), slack.NewClient(srv.URL), v)
	return c, v
}

func okUpstream(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/oauth.v2.access", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":           true,
			"access_token": "xoxb-1",
			"scope":        "chat:write",
			"bot_user_id":  "B1",
			"team":         map[string]string{"id": "T1", "name": "Acme"},
		})
	}
}

func TestBuildInstallURL(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t, okUpstream(t))
	installURL, state, err := c.BuildInstallURL()
	require.NoError(t, err)
	require.NotEmpty(t, state)

	u, err := url.Parse(installURL)
	require.NoError(t, err)
	require.Equal(t, "slack.com", u.Host)
	require.Equal(t, "/oauth/v2/authorize", u.Path)

	q := u.Query()
	require.Equal(t, "cid", q.Get("client_id"))
	require.Equal(t, state, q.Get("state"))
	require.Equal(t, "https://app.example.com/slack/oauth_redirect", q.Get("redirect_uri"))
	require.Contains(t, q.Get("scope"), "app_mentions:read")
	require.Contains(t, q.Get("scope"), "chat:write")
}

func TestComplete_InstallFlow(t *testing.T) {
	t.Parallel()

	c, v := newTestCoordinator(t, okUpstream(t))
	_, state, err := c.BuildInstallURL()
	require.NoError(t, err)

	teamName, err := c.Complete(context.Background(), "abc", state)
	require.NoError(t, err)
	require.Equal(t, "Acme", teamName)

	cred, err := v.Get(context.Background(), "T1")
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, "xoxb-1", cred.BotToken)
	require.Equal(t, "B1", cred.BotUserID)
	require.Equal(t, "chat:write", cred.Scope)
}

func TestComplete_StateSingleUse(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t, okUpstream(t))
	_, state, err := c.BuildInstallURL()
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "abc", state)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "abc", state)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestComplete_UnknownState(t *testing.T) {
	t.Parallel()

	c, _ := newTestCoordinator(t, okUpstream(t))
	_, err := c.Complete(context.Background(), "abc", "forged-state")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestComplete_FailedExchangeWritesNothing(t *testing.T) {
	t.Parallel()

	c, v := newTestCoordinator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "invalid_code"})
	})
	_, state, err := c.BuildInstallURL()
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "bad-code", state)
	var apiErr *slack.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "invalid_code", apiErr.Code)

	// nada persistido
	list, err := v.ListSummary(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)

	// el state quedó consumido: reintentar exige un flujo nuevo
	_, err = c.Complete(context.Background(), "bad-code", state)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestComplete_Reinstall_SingleRow(t *testing.T) {
	t.Parallel()

	c, v := newTestCoordinator(t, okUpstream(t))

	for i := 0; i < 2; i++ {
		_, state, err := c.BuildInstallURL()
		require.NoError(t, err)
		_, err = c.Complete(context.Background(), "abc", state)
		require.NoError(t, err)
	}

	list, err := v.ListSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}
