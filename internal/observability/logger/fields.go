package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos HTTP

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func Addr(v string) zap.Field      { return zap.String("addr", v) }

// Campos de negocio

func TeamID(v string) zap.Field    { return zap.String("team_id", v) }
func TeamName(v string) zap.Field  { return zap.String("team_name", v) }
func EventType(v string) zap.Field { return zap.String("event_type", v) }
func Channel(v string) zap.Field   { return zap.String("channel", v) }
func BotUserID(v string) zap.Field { return zap.String("bot_user_id", v) }

// Campos de sistema

func Component(v string) zap.Field       { return zap.String("component", v) }
func Op(v string) zap.Field              { return zap.String("op", v) }
func Layer(v string) zap.Field           { return zap.String("layer", v) }
func Driver(v string) zap.Field          { return zap.String("driver", v) }
func Err(err error) zap.Field            { return zap.Error(err) }
func Any(key string, v any) zap.Field    { return zap.Any(key, v) }
func Count(v int) zap.Field              { return zap.Int("count", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
