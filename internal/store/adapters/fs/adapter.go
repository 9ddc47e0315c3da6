// Package fs implementa el adapter de archivo único para store.
// Las instalaciones viven en un solo YAML (installations.yaml) y la
// auditoría en otro (event_log.yaml), ambos bajo DataDir. Un RWMutex por
// conexión da la atomicidad de fila que el contrato exige; la escritura es
// rename atómico vía atomicwrite.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/slackjohn/internal/domain/repository"
	"github.com/dropDatabas3/slackjohn/internal/store"
	"github.com/dropDatabas3/slackjohn/internal/util/atomicwrite"
)

const (
	installationsFile = "installations.yaml"
	eventLogFile      = "event_log.yaml"
)

func init() {
	store.RegisterAdapter(&fsAdapter{})
}

type fsAdapter struct{}

func (a *fsAdapter) Name() string { return "fs" }

func (a *fsAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	root := cfg.DataDir
	if root == "" {
		root = "data"
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(root, 0755); mkErr != nil {
				return nil, fmt.Errorf("fs: create data dir %s: %w", root, mkErr)
			}
		} else {
			return nil, fmt.Errorf("fs: data dir error: %w", err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("fs: data dir is not a directory: %s", root)
	}

	return &fsConnection{root: root}, nil
}

// fsConnection representa una conexión activa al archivo de datos.
type fsConnection struct {
	root string
	mu   sync.RWMutex
}

func (c *fsConnection) Name() string { return "fs" }

func (c *fsConnection) Ping(ctx context.Context) error {
	_, err := os.Stat(c.root)
	return err
}

func (c *fsConnection) Close() error { return nil }

func (c *fsConnection) Installations() repository.InstallationRepository {
	return &installationRepo{conn: c}
}

func (c *fsConnection) EventLog() repository.EventLogRepository {
	return &eventLogRepo{conn: c}
}

// ─── Formato de archivo ───

type installationsDoc struct {
	Installations map[string]repository.Installation `yaml:"installations"`
}

type eventLogDoc struct {
	Events []repository.EventLogEntry `yaml:"events"`
}

func (c *fsConnection) loadInstallations() (*installationsDoc, error) {
	doc := &installationsDoc{Installations: map[string]repository.Installation{}}
	b, err := os.ReadFile(filepath.Join(c.root, installationsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("fs: read %s: %w", installationsFile, err)
	}
	if err := yaml.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("fs: parse %s: %w", installationsFile, err)
	}
	if doc.Installations == nil {
		doc.Installations = map[string]repository.Installation{}
	}
	return doc, nil
}

func (c *fsConnection) saveInstallations(doc *installationsDoc) error {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("fs: marshal %s: %w", installationsFile, err)
	}
	// 0600: el archivo contiene tokens cifrados
	return atomicwrite.AtomicWriteFile(filepath.Join(c.root, installationsFile), b, 0600)
}

// ─── InstallationRepository ───

type installationRepo struct {
	conn *fsConnection
}

func (r *installationRepo) Upsert(ctx context.Context, inst repository.Installation) error {
	if inst.TeamID == "" {
		return repository.ErrInvalidInput
	}

	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	doc, err := r.conn.loadInstallations()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if prev, ok := doc.Installations[inst.TeamID]; ok {
		inst.InstalledAt = prev.InstalledAt
	} else if inst.InstalledAt.IsZero() {
		inst.InstalledAt = now
	}
	inst.UpdatedAt = now

	doc.Installations[inst.TeamID] = inst
	return r.conn.saveInstallations(doc)
}

func (r *installationRepo) Get(ctx context.Context, teamID string) (*repository.Installation, error) {
	r.conn.mu.RLock()
	defer r.conn.mu.RUnlock()

	doc, err := r.conn.loadInstallations()
	if err != nil {
		return nil, err
	}
	inst, ok := doc.Installations[teamID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &inst, nil
}

func (r *installationRepo) Delete(ctx context.Context, teamID string) error {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	doc, err := r.conn.loadInstallations()
	if err != nil {
		return err
	}
	if _, ok := doc.Installations[teamID]; !ok {
		return nil
	}
	delete(doc.Installations, teamID)
	return r.conn.saveInstallations(doc)
}

func (r *installationRepo) List(ctx context.Context) ([]repository.InstallationSummary, error) {
	r.conn.mu.RLock()
	defer r.conn.mu.RUnlock()

	doc, err := r.conn.loadInstallations()
	if err != nil {
		return nil, err
	}

	out := make([]repository.InstallationSummary, 0, len(doc.Installations))
	for _, inst := range doc.Installations {
		out = append(out, repository.InstallationSummary{
			TeamID:    inst.TeamID,
			TeamName:  inst.TeamName,
			BotUserID: inst.BotUserID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

// ─── EventLogRepository ───

type eventLogRepo struct {
	conn *fsConnection
}

func (r *eventLogRepo) Append(ctx context.Context, entry repository.EventLogEntry) error {
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	path := filepath.Join(r.conn.root, eventLogFile)
	doc := &eventLogDoc{}
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, doc); err != nil {
			return fmt.Errorf("fs: parse %s: %w", eventLogFile, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("fs: read %s: %w", eventLogFile, err)
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	doc.Events = append(doc.Events, entry)

	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("fs: marshal %s: %w", eventLogFile, err)
	}
	return atomicwrite.AtomicWriteFile(path, b, 0644)
}
