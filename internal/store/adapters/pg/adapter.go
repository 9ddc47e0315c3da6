// Package pg implementa el adapter PostgreSQL para store.
// Usa pgxpool directamente. El esquema se asegura al conectar
// (CREATE TABLE IF NOT EXISTS), no hay migraciones versionadas.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/slackjohn/internal/domain/repository"
	"github.com/dropDatabas3/slackjohn/internal/store"
)

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS installations (
	team_id         TEXT PRIMARY KEY,
	team_name       TEXT NOT NULL DEFAULT '',
	encrypted_token BYTEA NOT NULL,
	bot_user_id     TEXT NOT NULL DEFAULT '',
	scope           TEXT NOT NULL DEFAULT '',
	installed_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS event_log (
	id         TEXT PRIMARY KEY,
	team_id    TEXT NOT NULL,
	event_type TEXT NOT NULL,
	event_data BYTEA,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	} else {
		poolCfg.MinConns = 2
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ensure schema: %w", err)
	}

	return &pgConnection{pool: pool}, nil
}

type pgConnection struct {
	pool *pgxpool.Pool
}

func (c *pgConnection) Name() string { return "postgres" }

func (c *pgConnection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *pgConnection) Close() error {
	c.pool.Close()
	return nil
}

func (c *pgConnection) Installations() repository.InstallationRepository {
	return &installationRepo{pool: c.pool}
}

func (c *pgConnection) EventLog() repository.EventLogRepository {
	return &eventLogRepo{pool: c.pool}
}

// ─── InstallationRepository ───

type installationRepo struct {
	pool *pgxpool.Pool
}

func (r *installationRepo) Upsert(ctx context.Context, inst repository.Installation) error {
	if inst.TeamID == "" {
		return repository.ErrInvalidInput
	}

	const query = `
		INSERT INTO installations (team_id, team_name, encrypted_token, bot_user_id, scope, installed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (team_id) DO UPDATE SET
			team_name       = EXCLUDED.team_name,
			encrypted_token = EXCLUDED.encrypted_token,
			bot_user_id     = EXCLUDED.bot_user_id,
			scope           = EXCLUDED.scope,
			updated_at      = now()`

	_, err := r.pool.Exec(ctx, query,
		inst.TeamID, inst.TeamName, inst.EncryptedToken, inst.BotUserID, inst.Scope)
	if err != nil {
		return fmt.Errorf("pg: upsert installation: %w", err)
	}
	return nil
}

func (r *installationRepo) Get(ctx context.Context, teamID string) (*repository.Installation, error) {
	const query = `
		SELECT team_id, team_name, encrypted_token, bot_user_id, scope, installed_at, updated_at
		FROM installations
		WHERE team_id = $1`

	var inst repository.Installation
	err := r.pool.QueryRow(ctx, query, teamID).Scan(
		&inst.TeamID, &inst.TeamName, &inst.EncryptedToken,
		&inst.BotUserID, &inst.Scope, &inst.InstalledAt, &inst.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("pg: get installation: %w", err)
	}
	return &inst, nil
}

func (r *installationRepo) Delete(ctx context.Context, teamID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM installations WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("pg: delete installation: %w", err)
	}
	return nil
}

func (r *installationRepo) List(ctx context.Context) ([]repository.InstallationSummary, error) {
	const query = `
		SELECT team_id, team_name, bot_user_id
		FROM installations
		ORDER BY team_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pg: list installations: %w", err)
	}
	defer rows.Close()

	var out []repository.InstallationSummary
	for rows.Next() {
		var s repository.InstallationSummary
		if err := rows.Scan(&s.TeamID, &s.TeamName, &s.BotUserID); err != nil {
			return nil, fmt.Errorf("pg: scan installation summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ─── EventLogRepository ───

type eventLogRepo struct {
	pool *pgxpool.Pool
}

func (r *eventLogRepo) Append(ctx context.Context, entry repository.EventLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `
		INSERT INTO event_log (id, team_id, event_type, event_data, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.TeamID, entry.EventType, entry.EventData, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("pg: append event: %w", err)
	}
	return nil
}
