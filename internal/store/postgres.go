// Package store persists analysis runs: endpoint descriptors and schemas in
// Postgres, generated files in an S3 compatible object store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/griffnb/nest-swag/internal/orchestrator"
	routedomain "github.com/griffnb/nest-swag/internal/parser/route/domain"
)

// DefaultCacheSize is the number of runs whose endpoints are kept in memory.
const DefaultCacheSize = 128

// Postgres stores documentation runs as JSONB rows.
type Postgres struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	endpointCache *lru.Cache[string, []*routedomain.Route]
}

// NewPostgres opens and pings the database behind dsn.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	p, err := NewPostgresDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgresDB wraps an open database handle.
func NewPostgresDB(db *sql.DB) (*Postgres, error) {
	cache, err := lru.New[string, []*routedomain.Route](DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Postgres{db: db, endpointCache: cache}, nil
}

// Close closes the database handle.
func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// EnsureSchema creates the tables once per store.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if p == nil || p.db == nil {
		return fmt.Errorf("store is nil")
	}
	p.schemaOnce.Do(func() {
		_, p.schemaErr = p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS doc_runs (
  run_id TEXT PRIMARY KEY,
  generated_at TIMESTAMP WITH TIME ZONE NOT NULL,
  stats JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE IF NOT EXISTS doc_endpoints (
  run_id TEXT NOT NULL REFERENCES doc_runs (run_id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  method TEXT NOT NULL,
  path TEXT NOT NULL,
  body JSONB NOT NULL,
  PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS doc_schemas (
  run_id TEXT NOT NULL REFERENCES doc_runs (run_id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  body JSONB NOT NULL,
  PRIMARY KEY (run_id, name)
);`)
	})
	return p.schemaErr
}

type endpointRow struct {
	position int
	method   string
	path     string
	body     []byte
}

type schemaRow struct {
	name string
	body []byte
}

// documentRows encodes the endpoints in run order and the schemas sorted
// by name.
func documentRows(doc *orchestrator.Documentation) ([]endpointRow, []schemaRow, error) {
	endpoints := make([]endpointRow, 0, len(doc.Endpoints))
	for i, route := range doc.Endpoints {
		body, err := json.Marshal(route)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode endpoint %s %s: %w", route.Method, route.Path, err)
		}
		endpoints = append(endpoints, endpointRow{position: i, method: route.Method, path: route.Path, body: body})
	}

	names := make([]string, 0, len(doc.Schemas))
	for name := range doc.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	schemas := make([]schemaRow, 0, len(names))
	for _, name := range names {
		body, err := json.Marshal(doc.Schemas[name])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode schema %s: %w", name, err)
		}
		schemas = append(schemas, schemaRow{name: name, body: body})
	}
	return endpoints, schemas, nil
}

// SaveDocumentation upserts a run. Saving the same run again replaces its
// endpoints and schemas.
func (p *Postgres) SaveDocumentation(ctx context.Context, doc *orchestrator.Documentation) error {
	if doc == nil || strings.TrimSpace(doc.RunID) == "" {
		return fmt.Errorf("run_id is required")
	}
	if err := p.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	endpoints, schemas, err := documentRows(doc)
	if err != nil {
		return err
	}
	stats, err := json.Marshal(doc.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO doc_runs (run_id, generated_at, stats)
VALUES ($1, $2, $3)
ON CONFLICT (run_id)
DO UPDATE SET generated_at=EXCLUDED.generated_at, stats=EXCLUDED.stats`,
		doc.RunID, doc.GeneratedAt, stats); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM doc_endpoints WHERE run_id=$1`, doc.RunID); err != nil {
		return fmt.Errorf("clear endpoints: %w", err)
	}
	for _, row := range endpoints {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO doc_endpoints (run_id, position, method, path, body)
VALUES ($1, $2, $3, $4, $5)`,
			doc.RunID, row.position, row.method, row.path, row.body); err != nil {
			return fmt.Errorf("save endpoint %s %s: %w", row.method, row.path, err)
		}
	}
	for _, row := range schemas {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO doc_schemas (run_id, name, body)
VALUES ($1, $2, $3)
ON CONFLICT (run_id, name)
DO UPDATE SET body=EXCLUDED.body`,
			doc.RunID, row.name, row.body); err != nil {
			return fmt.Errorf("save schema %s: %w", row.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	p.endpointCache.Remove(doc.RunID)
	return nil
}

// LoadEndpoints returns the endpoints of a run in run order. Results are
// cached until the run is saved again.
func (p *Postgres) LoadEndpoints(ctx context.Context, runID string) ([]*routedomain.Route, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, fmt.Errorf("run_id is required")
	}
	if cached, ok := p.endpointCache.Get(runID); ok {
		return cached, nil
	}
	if err := p.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, `
SELECT body FROM doc_endpoints
WHERE run_id=$1
ORDER BY position ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := []*routedomain.Route{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var route routedomain.Route
		if err := json.Unmarshal(body, &route); err != nil {
			return nil, fmt.Errorf("failed to decode endpoint: %w", err)
		}
		routes = append(routes, &route)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	p.endpointCache.Add(runID, routes)
	return routes, nil
}
