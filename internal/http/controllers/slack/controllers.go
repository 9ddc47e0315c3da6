// Package slack contiene los controllers del endpoint Slack:
// webhook de eventos y flujo de instalación OAuth.
package slack

import (
	"github.com/dropDatabas3/slackjohn/internal/events"
	"github.com/dropDatabas3/slackjohn/internal/oauth"
	"github.com/dropDatabas3/slackjohn/internal/security/signature"
)

// Controllers agrupa todos los controllers del dominio slack.
type Controllers struct {
	Events        *EventsController
	Install       *InstallController
	OAuthRedirect *OAuthRedirectController
}

// NewControllers crea el agregador de controllers slack.
func NewControllers(verifier *signature.Verifier, dispatcher *events.Dispatcher, coordinator *oauth.Coordinator) *Controllers {
	return &Controllers{
		Events:        NewEventsController(verifier, dispatcher),
		Install:       NewInstallController(coordinator),
		OAuthRedirect: NewOAuthRedirectController(coordinator),
	}
}
