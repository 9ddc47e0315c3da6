// Package events routes authenticated Slack events to the response
// action. Routing never runs on the HTTP response's critical path: the
// controller enqueues into the Dispatcher and acknowledges immediately.
package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/dropDatabas3/slackjohn/internal/domain/repository"
	"github.com/dropDatabas3/slackjohn/internal/observability/logger"
	"github.com/dropDatabas3/slackjohn/internal/slack"
	"github.com/dropDatabas3/slackjohn/internal/vault"
)

// MessagePoster is the outbound send capability: post text to a
// conversation, optionally threaded. Retries on failure are the
// capability's own concern, not the router's.
type MessagePoster interface {
	PostMessage(ctx context.Context, botToken string, msg slack.PostMessageRequest) error
}

// Router resolves the workspace credential and dispatches by event kind.
type Router struct {
	vault  *vault.Store
	poster MessagePoster

	// audit is optional; failures are swallowed and never block routing.
	audit repository.EventLogRepository

	// replyText is what the bot answers with. Default "thinking".
	replyText string
}

// NewRouter creates a Router. audit may be nil.
func NewRouter(v *vault.Store, poster MessagePoster, audit repository.EventLogRepository) *Router {
	return &Router{vault: v, poster: poster, audit: audit, replyText: "thinking"}
}

// Handle routes one authenticated event envelope.
//
// A workspace with no stored installation is an expected condition, not a
// fault: it logs and returns nil. Store errors and send errors propagate
// to the dispatcher, which logs them.
func (r *Router) Handle(ctx context.Context, env *Envelope) error {
	log := logger.From(ctx).With(
		logger.Component("events"),
		logger.TeamID(env.TeamID),
		logger.EventType(env.Event.Type),
	)

	r.auditLog(ctx, env)

	cred, err := r.vault.Get(ctx, env.TeamID)
	if err != nil {
		return err
	}
	if cred == nil {
		log.Info("no installation for workspace, dropping event")
		return nil
	}

	switch env.Event.Type {
	case EventAppMention:
		return r.handleMention(ctx, cred, env.Event)
	case EventMessage:
		return r.handleMessage(ctx, cred, env.Event)
	default:
		log.Debug("unrecognized event kind, ignoring")
		return nil
	}
}

// handleMention responds in the originating conversation, preserving
// thread context when the mention itself was threaded.
func (r *Router) handleMention(ctx context.Context, cred *vault.Credential, ev Event) error {
	return r.poster.PostMessage(ctx, cred.BotToken, slack.PostMessageRequest{
		Channel:  ev.Channel,
		Text:     r.replyText,
		ThreadTS: ev.ThreadTS,
	})
}

// handleMessage responds only to direct messages from humans.
// Self-suppression: the bot's own messages (by user id or bot-origin
// marker) are ignored, or replying would loop forever.
func (r *Router) handleMessage(ctx context.Context, cred *vault.Credential, ev Event) error {
	if ev.ChannelType != ChannelTypeIM {
		return nil
	}
	if ev.BotID != "" || ev.User == cred.BotUserID {
		return nil
	}
	return r.poster.PostMessage(ctx, cred.BotToken, slack.PostMessageRequest{
		Channel: ev.Channel,
		Text:    r.replyText,
	})
}

// auditLog appends the envelope to the event log, fire-and-forget.
func (r *Router) auditLog(ctx context.Context, env *Envelope) {
	if r.audit == nil {
		return
	}
	err := r.audit.Append(ctx, repository.EventLogEntry{
		ID:        uuid.NewString(),
		TeamID:    env.TeamID,
		EventType: env.Event.Type,
		EventData: env.Raw,
	})
	if err != nil {
		logger.From(ctx).Warn("audit log append failed",
			logger.Component("events"),
			logger.TeamID(env.TeamID),
			logger.Err(err),
		)
	}
}
