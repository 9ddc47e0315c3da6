package events

import "encoding/json"

// Envelope types delivered to the events endpoint.
const (
	EnvelopeURLVerification = "url_verification"
	EnvelopeEventCallback   = "event_callback"
)

// Inner event kinds this app reacts to.
const (
	EventAppMention = "app_mention"
	EventMessage    = "message"
)

// ChannelTypeIM marks a direct-message conversation.
const ChannelTypeIM = "im"

// Envelope is the outer payload Slack posts to the events endpoint.
type Envelope struct {
	Type      string `json:"type"`
	TeamID    string `json:"team_id"`
	Challenge string `json:"challenge,omitempty"`
	Event     Event  `json:"event"`

	// Raw preserva los bytes originales del envelope para auditoría.
	// Nunca se usa para verificación de firma (esa corre antes del parse).
	Raw json.RawMessage `json:"-"`
}

// Event is the inner event.
type Event struct {
	Type        string `json:"type"`
	Channel     string `json:"channel"`
	ChannelType string `json:"channel_type"`
	User        string `json:"user"`
	Text        string `json:"text"`
	TS          string `json:"ts"`
	ThreadTS    string `json:"thread_ts"`

	// BotID viene seteado cuando el mensaje lo originó un bot.
	BotID string `json:"bot_id"`
}

// ParseEnvelope decodes raw bytes into an Envelope, keeping the original
// bytes attached for the audit log.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	env.Raw = json.RawMessage(raw)
	return &env, nil
}
