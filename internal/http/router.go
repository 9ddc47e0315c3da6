// Package http arma el router y el servidor del servicio.
package http

import (
	"fmt"
	stdhttp "net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	debugctrl "github.com/dropDatabas3/slackjohn/internal/http/controllers/debug"
	healthctrl "github.com/dropDatabas3/slackjohn/internal/http/controllers/health"
	slackctrl "github.com/dropDatabas3/slackjohn/internal/http/controllers/slack"
	mw "github.com/dropDatabas3/slackjohn/internal/http/middlewares"
)

// RouterDeps contiene las dependencias del router principal.
type RouterDeps struct {
	// Env: dev | staging | prod. Las rutas de debug solo se montan fuera de prod.
	Env string

	Slack  *slackctrl.Controllers
	Health *healthctrl.Controller
	Debug  *debugctrl.InstallationsController
}

// NewRouter registra todas las rutas del servicio.
func NewRouter(deps RouterDeps) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())

	r.Get("/", home)
	r.Get("/health", deps.Health.Handle)

	r.Post("/slack/events", deps.Slack.Events.Handle)
	r.Get("/slack/install", deps.Slack.Install.Handle)
	r.Get("/slack/oauth_redirect", deps.Slack.OAuthRedirect.Handle)

	r.Handle("/metrics", promhttp.Handler())

	if !strings.EqualFold(deps.Env, "prod") && deps.Debug != nil {
		r.Get("/debug/installations", deps.Debug.Handle)
	}

	return r
}

func home(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, homePage)
}

const homePage = `<!DOCTYPE html>
<html>
<head><title>slackjohn</title></head>
<body>
  <h1>slackjohn</h1>
  <p>A bot that replies "thinking". <a href="/slack/install">Install it</a>.</p>
</body>
</html>
`
