// Package slack is the client for the Slack Web API surface this app
// needs: the oauth.v2.access exchange and chat.postMessage.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production Slack API origin.
const DefaultBaseURL = "https://slack.com"

// APIError is a non-ok response from the Slack API. Code carries the
// upstream-provided error string (e.g. "invalid_code") for diagnostics.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack: %s failed: %s", e.Method, e.Code)
}

// Client talks to the Slack Web API.
type Client struct {
	// BaseURL overrides the API origin. Tests point this at an httptest
	// server; production leaves it empty for DefaultBaseURL.
	BaseURL string

	http *http.Client
}

// NewClient creates a Client with a bounded request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) origin() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return DefaultBaseURL
}

// OAuthResponse is the response from oauth.v2.access.
type OAuthResponse struct {
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
	BotUserID   string `json:"bot_user_id"`
	Team        struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
}

// ExchangeCode exchanges an authorization code for a bot token via
// oauth.v2.access. A non-ok response becomes an *APIError carrying the
// upstream error code.
func (c *Client) ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*OAuthResponse, error) {
	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin()+"/api/oauth.v2.access", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slack: oauth.v2.access request: %w", err)
	}
	defer resp.Body.Close()

	var or OAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return nil, fmt.Errorf("slack: decode oauth.v2.access response: %w", err)
	}
	if !or.OK {
		code := or.Error
		if code == "" {
			code = fmt.Sprintf("http_%d", resp.StatusCode)
		}
		return nil, &APIError{Method: "oauth.v2.access", Code: code}
	}
	if or.AccessToken == "" {
		return nil, &APIError{Method: "oauth.v2.access", Code: "missing_access_token"}
	}
	return &or, nil
}

// PostMessageRequest is the payload for chat.postMessage.
type PostMessageRequest struct {
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PostMessage sends text to a conversation on behalf of the bot,
// optionally inside a thread.
func (c *Client) PostMessage(ctx context.Context, botToken string, msg PostMessageRequest) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal chat.postMessage: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin()+"/api/chat.postMessage", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+botToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("slack: chat.postMessage request: %w", err)
	}
	defer resp.Body.Close()

	var pr postMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return fmt.Errorf("slack: decode chat.postMessage response: %w", err)
	}
	if !pr.OK {
		code := pr.Error
		if code == "" {
			code = fmt.Sprintf("http_%d", resp.StatusCode)
		}
		return &APIError{Method: "chat.postMessage", Code: code}
	}
	return nil
}
