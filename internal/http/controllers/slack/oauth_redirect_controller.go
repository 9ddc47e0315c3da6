package slack

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	slackapi "github.com/dropDatabas3/slackjohn/internal/slack"

	"github.com/dropDatabas3/slackjohn/internal/http/helpers"
	"github.com/dropDatabas3/slackjohn/internal/metrics"
	"github.com/dropDatabas3/slackjohn/internal/oauth"
	"github.com/dropDatabas3/slackjohn/internal/observability/logger"
)

// OAuthRedirectController atiende GET /slack/oauth_redirect, el callback
// del flujo de autorización.
type OAuthRedirectController struct {
	coordinator *oauth.Coordinator
}

// NewOAuthRedirectController crea el controller del callback OAuth.
func NewOAuthRedirectController(c *oauth.Coordinator) *OAuthRedirectController {
	return &OAuthRedirectController{coordinator: c}
}

func (c *OAuthRedirectController) Handle(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context())
	q := r.URL.Query()

	// El usuario canceló la autorización en Slack.
	if denied := q.Get("error"); denied != "" {
		metrics.InstallsFailed.WithLabelValues("user_denied").Inc()
		log.Info("install denied by user")
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("authorization was denied"))
		return
	}

	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		metrics.InstallsFailed.WithLabelValues("missing_params").Inc()
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("missing code or state"))
		return
	}

	teamName, err := c.coordinator.Complete(r.Context(), code, state)
	if err != nil {
		c.writeCompleteError(w, r, err)
		return
	}

	metrics.InstallsCompleted.Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, installedPage, html.EscapeString(teamName))
}

func (c *OAuthRedirectController) writeCompleteError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.From(r.Context())

	switch {
	case errors.Is(err, oauth.ErrInvalidState):
		metrics.InstallsFailed.WithLabelValues("invalid_state").Inc()
		log.Warn("install rejected: unknown or reused state")
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("invalid state"))

	case errors.Is(err, oauth.ErrExpiredState):
		metrics.InstallsFailed.WithLabelValues("expired_state").Inc()
		log.Warn("install rejected: expired state")
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("state expired, restart the install"))

	default:
		var apiErr *slackapi.APIError
		if errors.As(err, &apiErr) {
			metrics.InstallsFailed.WithLabelValues("exchange_failed").Inc()
			log.Error("install failed: code exchange rejected", logger.Err(err))
			helpers.WriteError(w, helpers.ErrBadGateway.WithDetail("code exchange failed"))
			return
		}
		metrics.InstallsFailed.WithLabelValues("internal").Inc()
		log.Error("install failed", logger.Err(err))
		helpers.WriteError(w, helpers.ErrInternalServerError)
	}
}

const installedPage = `<!DOCTYPE html>
<html>
<head><title>Installed</title></head>
<body>
  <h1>All set</h1>
  <p>The app was installed to <strong>%s</strong>. Mention it in a channel or send it a DM.</p>
</body>
</html>
`
