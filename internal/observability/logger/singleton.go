// Package logger provee un logger Zap singleton con scoping por contexto.
// "dev" usa consola con colores, "prod" JSON. Inicializar una vez en main:
//
//	logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
//	defer logger.Sync()
//
// En handlers/services:
//
//	log := logger.From(ctx)
//	log.Info("event routed", logger.TeamID(teamID))
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init inicializa el singleton. Idempotente: solo la primera llamada tiene efecto.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
	})
}

// L retorna el singleton. Si Init no fue llamado, crea uno por defecto (dev, info).
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Named retorna un logger con nombre de componente.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushea buffers pendientes. Llamar con defer en main.
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
