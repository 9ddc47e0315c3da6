package slack

import (
	"fmt"
	"html"
	"net/http"

	"github.com/dropDatabas3/slackjohn/internal/http/helpers"
	"github.com/dropDatabas3/slackjohn/internal/oauth"
	"github.com/dropDatabas3/slackjohn/internal/observability/logger"
)

// InstallController atiende GET /slack/install: emite un state fresco y
// muestra el link de autorización. Cada carga de la página emite un
// state nuevo; los anteriores expiran solos.
type InstallController struct {
	coordinator *oauth.Coordinator
}

// NewInstallController crea el controller de la página de instalación.
func NewInstallController(c *oauth.Coordinator) *InstallController {
	return &InstallController{coordinator: c}
}

func (c *InstallController) Handle(w http.ResponseWriter, r *http.Request) {
	installURL, _, err := c.coordinator.BuildInstallURL()
	if err != nil {
		logger.From(r.Context()).Error("install url build failed", logger.Err(err))
		helpers.WriteError(w, helpers.ErrInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintf(w, installPage, html.EscapeString(installURL))
}

const installPage = `<!DOCTYPE html>
<html>
<head><title>Install</title></head>
<body>
  <h1>Add to Slack</h1>
  <p><a href="%s">Install this app to your workspace</a></p>
</body>
</html>
`
