// Package store provee el registry de adaptadores de almacenamiento.
// Dos backends intercambiables detrás del mismo contrato: "fs" (archivo
// único embebido) y "postgres" (cliente/servidor). Cuál se usa es una
// decisión de despliegue, no de comportamiento.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/dropDatabas3/slackjohn/internal/domain/repository"
)

// Adapter representa un backend de almacenamiento capaz de crear repositorios.
type Adapter interface {
	// Name retorna el nombre del adapter (ej: "postgres", "fs").
	Name() string

	// Connect establece conexión con el almacenamiento.
	Connect(ctx context.Context, cfg AdapterConfig) (Connection, error)
}

// Connection representa una conexión activa.
type Connection interface {
	// Name retorna el nombre del adapter.
	Name() string

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close cierra la conexión.
	Close() error

	// Installations retorna el repositorio de instalaciones.
	Installations() repository.InstallationRepository

	// EventLog retorna el repositorio de auditoría.
	EventLog() repository.EventLogRepository
}

// AdapterConfig configuración para conectar a un almacenamiento.
type AdapterConfig struct {
	// Name del adapter: "postgres" | "fs"
	Name string

	// DSN connection string (postgres)
	DSN string

	// DataDir directorio raíz de datos (fs)
	DataDir string

	// Pool settings (postgres)
	MaxOpenConns int
	MaxIdleConns int
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter en el registry global.
// Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("adapter: %q already registered", name))
	}
	adapters[name] = a
}

// ListAdapters retorna los nombres de todos los adapters registrados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	return names
}

// Open abre una conexión usando el adapter especificado en la config.
func Open(ctx context.Context, cfg AdapterConfig) (Connection, error) {
	registryMu.RLock()
	a, ok := adapters[cfg.Name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: adapter %q not registered (available: %v)", cfg.Name, ListAdapters())
	}
	return a.Connect(ctx, cfg)
}
