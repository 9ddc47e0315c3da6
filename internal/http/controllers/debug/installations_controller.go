// Package debug contiene endpoints de inspección para entornos no-prod.
package debug

import (
	"net/http"

	"github.com/dropDatabas3/slackjohn/internal/http/helpers"
	"github.com/dropDatabas3/slackjohn/internal/observability/logger"
	"github.com/dropDatabas3/slackjohn/internal/vault"
)

// InstallationsController lista los workspaces instalados, sin tokens.
// El router solo lo monta fuera de prod.
type InstallationsController struct {
	vault *vault.Store
}

// NewInstallationsController crea el controller de listado.
func NewInstallationsController(v *vault.Store) *InstallationsController {
	return &InstallationsController{vault: v}
}

func (c *InstallationsController) Handle(w http.ResponseWriter, r *http.Request) {
	summaries, err := c.vault.ListSummary(r.Context())
	if err != nil {
		logger.From(r.Context()).Error("installation list failed", logger.Err(err))
		helpers.WriteError(w, helpers.ErrInternalServerError)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"count":         len(summaries),
		"installations": summaries,
	})
}
