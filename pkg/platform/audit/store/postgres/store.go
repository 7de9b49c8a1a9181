// Package postgres persists the audit trail in a single append-only table.
// The pgx stdlib driver keeps the store on database/sql so callers can share
// a pool with future stores.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"agora/pkg/domain"
	audit "agora/pkg/platform/audit"
)

// Schema creates the audit table. Applied by the CLI migrate command.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          UUID PRIMARY KEY,
	action      TEXT NOT NULL,
	principal   TEXT NOT NULL,
	subject     TEXT NOT NULL DEFAULT '',
	amount      BIGINT NOT NULL DEFAULT 0,
	block       BIGINT NOT NULL,
	at          TIMESTAMPTZ NOT NULL,
	request_id  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_principal_idx ON audit_events (principal, at);
`

type Store struct {
	db *sql.DB
}

// Open connects to postgres via the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the audit schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply audit schema: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, action, principal, subject, amount, block, at, request_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, string(event.Action), string(event.Principal), event.Subject,
		int64(event.Amount), int64(event.Block), event.At, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByPrincipal(ctx context.Context, p domain.Principal) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, principal, subject, amount, block, at, request_id
		 FROM audit_events WHERE principal = $1 ORDER BY at`,
		string(p),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e         audit.Event
			id        uuid.UUID
			action    string
			principal string
			amount    int64
			block     int64
			at        time.Time
		)
		if err := rows.Scan(&id, &action, &principal, &e.Subject, &amount, &block, &at, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.ID = id
		e.Action = audit.Action(action)
		e.Principal = domain.Principal(principal)
		e.Amount = uint64(amount)
		e.Block = domain.BlockHeight(block)
		e.At = at
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
