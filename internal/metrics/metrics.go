// Package metrics expone los contadores Prometheus del servicio.
// Todos se registran en el registry por defecto vía promauto; el
// endpoint /metrics los sirve con promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhooksVerified cuenta webhooks cuya firma pasó la verificación.
	WebhooksVerified = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "slackjohn",
		Subsystem: "webhook",
		Name:      "verified_total",
		Help:      "Webhooks with a valid signature inside the replay window.",
	})

	// WebhooksRejected cuenta webhooks rechazados, etiquetados por motivo.
	WebhooksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slackjohn",
		Subsystem: "webhook",
		Name:      "rejected_total",
		Help:      "Webhooks rejected before routing.",
	}, []string{"reason"})

	// InstallsCompleted cuenta instalaciones OAuth completadas con éxito.
	InstallsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "slackjohn",
		Subsystem: "oauth",
		Name:      "installs_completed_total",
		Help:      "OAuth installs that stored a workspace credential.",
	})

	// InstallsFailed cuenta instalaciones fallidas, etiquetadas por motivo.
	InstallsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slackjohn",
		Subsystem: "oauth",
		Name:      "installs_failed_total",
		Help:      "OAuth installs that did not complete.",
	}, []string{"reason"})

	// EventsRouted cuenta eventos procesados por el router.
	EventsRouted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "slackjohn",
		Subsystem: "events",
		Name:      "routed_total",
		Help:      "Events handled by the router.",
	})

	// EventsDropped cuenta eventos descartados con la cola llena.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "slackjohn",
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Events dropped because the dispatch queue was full.",
	})
)
