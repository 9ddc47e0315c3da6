// Package health contiene el controller de health check.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/slackjohn/internal/http/helpers"
	"github.com/dropDatabas3/slackjohn/internal/observability/logger"
)

// Pinger es lo mínimo que el health check necesita del storage.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// Controller responde GET /health con el estado del backend de datos.
type Controller struct {
	store Pinger
}

// NewController crea el controller de health.
func NewController(store Pinger) *Controller {
	return &Controller{store: store}
}

func (c *Controller) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		logger.From(r.Context()).Error("health check failed",
			logger.Driver(c.store.Name()),
			logger.Err(err),
		)
		helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"driver": c.store.Name(),
		})
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"driver": c.store.Name(),
	})
}
