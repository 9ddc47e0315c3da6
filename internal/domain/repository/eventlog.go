package repository

import (
	"context"
	"time"
)

// EventLogEntry es una entrada de auditoría append-only. El core solo
// escribe; nunca la lee de vuelta.
type EventLogEntry struct {
	ID        string    `json:"id" yaml:"id"`
	TeamID    string    `json:"team_id" yaml:"team_id"`
	EventType string    `json:"event_type" yaml:"event_type"`
	EventData []byte    `json:"event_data" yaml:"event_data"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// EventLogRepository maneja el log de eventos. Un fallo de Append nunca
// debe bloquear ni fallar el camino principal; el caller lo traga.
type EventLogRepository interface {
	Append(ctx context.Context, entry EventLogEntry) error
}
