package repository

import (
	"context"
	"time"
)

// Installation representa el grant de instalación de un workspace de Slack.
// El token del bot se guarda SIEMPRE cifrado (nonce ‖ AES-GCM ciphertext);
// la capa vault es la única que ve el plaintext.
type Installation struct {
	TeamID         string    `json:"team_id" yaml:"team_id"`
	TeamName       string    `json:"team_name" yaml:"team_name"`
	EncryptedToken []byte    `json:"encrypted_token" yaml:"encrypted_token"`
	BotUserID      string    `json:"bot_user_id" yaml:"bot_user_id"`
	Scope          string    `json:"scope" yaml:"scope"`
	InstalledAt    time.Time `json:"installed_at" yaml:"installed_at"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`
}

// InstallationSummary es la vista operacional de una instalación: nunca
// incluye el token, ni cifrado ni en claro.
type InstallationSummary struct {
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name"`
	BotUserID string `json:"bot_user_id"`
}

// InstallationRepository maneja la persistencia de instalaciones.
// A lo sumo una fila viva por TeamID: Upsert sobreescribe token, nombre y
// scope, y actualiza UpdatedAt; nunca crea duplicados.
type InstallationRepository interface {
	// Upsert crea o sobreescribe la instalación con clave TeamID.
	// InstalledAt se preserva en re-instalación; UpdatedAt siempre avanza.
	Upsert(ctx context.Context, inst Installation) error

	// Get busca por TeamID. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, teamID string) (*Installation, error)

	// Delete elimina la fila. No-op si no existe.
	Delete(ctx context.Context, teamID string) error

	// List retorna el resumen de todas las instalaciones, sin tokens.
	List(ctx context.Context) ([]InstallationSummary, error)
}
