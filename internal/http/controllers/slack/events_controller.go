package slack

import (
	"io"
	"net/http"

	"github.com/dropDatabas3/slackjohn/internal/events"
	"github.com/dropDatabas3/slackjohn/internal/http/helpers"
	"github.com/dropDatabas3/slackjohn/internal/metrics"
	"github.com/dropDatabas3/slackjohn/internal/observability/logger"
	"github.com/dropDatabas3/slackjohn/internal/security/signature"
)

// Slack delivery headers.
const (
	headerTimestamp = "X-Slack-Request-Timestamp"
	headerSignature = "X-Slack-Signature"
)

// maxEventBody limita el tamaño del payload del webhook.
const maxEventBody = 1 << 20 // 1 MiB

// EventsController atiende POST /slack/events.
//
// El orden importa: primero se leen los bytes crudos y se verifica la
// firma sobre ESOS bytes; recién después se parsea el JSON. Cualquier
// verificación sobre un body re-serializado rompería la firma.
type EventsController struct {
	verifier   *signature.Verifier
	dispatcher *events.Dispatcher
}

// NewEventsController crea el controller del webhook de eventos.
func NewEventsController(v *signature.Verifier, d *events.Dispatcher) *EventsController {
	return &EventsController{verifier: v, dispatcher: d}
}

func (c *EventsController) Handle(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxEventBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.WebhooksRejected.WithLabelValues("body_read").Inc()
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("could not read body"))
		return
	}

	ts := r.Header.Get(headerTimestamp)
	sig := r.Header.Get(headerSignature)
	if !c.verifier.Verify(body, ts, sig) {
		// Sin distinción de motivo hacia afuera: firma inválida y
		// timestamp fuera de ventana responden igual.
		metrics.WebhooksRejected.WithLabelValues("invalid_signature").Inc()
		log.Warn("webhook signature rejected")
		helpers.WriteError(w, helpers.ErrForbidden.WithDetail("invalid signature"))
		return
	}
	metrics.WebhooksVerified.Inc()

	env, err := events.ParseEnvelope(body)
	if err != nil {
		metrics.WebhooksRejected.WithLabelValues("malformed_payload").Inc()
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("malformed payload"))
		return
	}

	switch env.Type {
	case events.EnvelopeURLVerification:
		// Handshake de Slack al registrar la URL: se devuelve el challenge.
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"challenge": env.Challenge})

	case events.EnvelopeEventCallback:
		// Ack inmediato; el procesamiento corre en los workers.
		c.dispatcher.Enqueue(r.Context(), env)
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	default:
		// Tipo de envelope desconocido: ack para que Slack no reintente.
		log.Debug("unknown envelope type", logger.EventType(env.Type))
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
	}
}
