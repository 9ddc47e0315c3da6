// Package oauth implements the Slack app installation handshake: CSRF
// state issuance, the authorization URL, and the code-for-token exchange
// that ends in a vault upsert.
package oauth

import (
	"context"
	"net/url"
	"strings"

	"github.com/dropDatabas3/slackjohn/internal/observability/logger"
	"github.com/dropDatabas3/slackjohn/internal/slack"
	"github.com/dropDatabas3/slackjohn/internal/vault"
)

// DefaultAuthorizeURL is Slack's OAuth v2 authorization endpoint.
const DefaultAuthorizeURL = "https://slack.com/oauth/v2/authorize"

// DefaultScopes are the bot capabilities requested on install.
var DefaultScopes = []string{
	"app_mentions:read",
	"chat:write",
	"channels:read",
	"groups:read",
	"im:read",
	"mpim:read",
}

// Config carries the coordinator's app credentials and endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// AuthorizeURL overrides DefaultAuthorizeURL. For tests.
	AuthorizeURL string

	// Scopes overrides DefaultScopes when non-empty.
	Scopes []string
}

// Coordinator owns the install flow.
type Coordinator struct {
	cfg    Config
	states *StateStore
	client *slack.Client
	vault  *vault.Store
}

// NewCoordinator wires the coordinator with its state table, API client
// and credential vault.
func NewCoordinator(cfg Config, states *StateStore, client *slack.Client, v *vault.Store) *Coordinator {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}
	return &Coordinator{cfg: cfg, states: states, client: client, vault: v}
}

// BuildInstallURL issues a fresh state token and returns the authorization
// URL embedding the requested scopes, redirect target and state.
func (c *Coordinator) BuildInstallURL() (installURL, state string, err error) {
	state, err = c.states.Issue()
	if err != nil {
		return "", "", err
	}

	u, err := url.Parse(c.cfg.AuthorizeURL)
	if err != nil {
		return "", "", err
	}
	q := u.Query()
	q.Set("client_id", c.cfg.ClientID)
	q.Set("scope", strings.Join(c.cfg.Scopes, ","))
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), state, nil
}

// Complete consumes the state token, exchanges the code for a bot token
// and persists the installation. Returns the workspace display name.
//
// The state take is atomic and happens first: a racing second call loses
// with ErrInvalidState. If the exchange then fails, the state stays
// consumed and the user restarts the install flow; nothing is written to
// the vault on a failed exchange.
func (c *Coordinator) Complete(ctx context.Context, code, state string) (string, error) {
	if err := c.states.Take(state); err != nil {
		return "", err
	}

	resp, err := c.client.ExchangeCode(ctx, c.cfg.ClientID, c.cfg.ClientSecret, code, c.cfg.RedirectURI)
	if err != nil {
		return "", err
	}

	if err := c.vault.Upsert(ctx, resp.Team.ID, resp.Team.Name, resp.AccessToken, resp.BotUserID, resp.Scope); err != nil {
		return "", err
	}

	logger.From(ctx).Info("workspace installed",
		logger.Component("oauth"),
		logger.TeamID(resp.Team.ID),
		logger.TeamName(resp.Team.Name),
	)
	return resp.Team.Name, nil
}
