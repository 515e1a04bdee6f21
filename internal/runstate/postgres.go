package runstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mediapoint/roster/internal/roster"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS roster_run_state (
	id           TEXT PRIMARY KEY,
	uploaded_at  TIMESTAMPTZ,
	processed_at TIMESTAMPTZ,
	run_id       TEXT NOT NULL DEFAULT '',
	last_error   TEXT NOT NULL DEFAULT '',
	summary      JSONB,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps the state in a single row of roster_run_state.
type PostgresStore struct {
	db *sql.DB
	id string
}

func NewPostgresStore(db *sql.DB, id string) *PostgresStore {
	return &PostgresStore{db: db, id: id}
}

// EnsureSchema creates the state table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("creating roster_run_state: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (State, error) {
	var (
		uploaded, processed sql.NullTime
		st                  State
		summary             []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT uploaded_at, processed_at, run_id, last_error, summary
		FROM roster_run_state WHERE id = $1`, s.id,
	).Scan(&uploaded, &processed, &st.RunID, &st.LastError, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("loading run state: %w", err)
	}

	st.UploadedAt = uploaded.Time
	st.ProcessedAt = processed.Time
	if len(summary) > 0 {
		st.Summary = &roster.Summary{}
		if err := json.Unmarshal(summary, st.Summary); err != nil {
			return State{}, fmt.Errorf("decoding run summary: %w", err)
		}
	}
	return st, nil
}

func (s *PostgresStore) Save(ctx context.Context, st State) error {
	var summary []byte
	if st.Summary != nil {
		var err error
		if summary, err = json.Marshal(st.Summary); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roster_run_state (id, uploaded_at, processed_at, run_id, last_error, summary, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			uploaded_at = EXCLUDED.uploaded_at,
			processed_at = EXCLUDED.processed_at,
			run_id = EXCLUDED.run_id,
			last_error = EXCLUDED.last_error,
			summary = EXCLUDED.summary,
			updated_at = NOW()`,
		s.id, nullTime(st.UploadedAt), nullTime(st.ProcessedAt), st.RunID, st.LastError, summary,
	)
	if err != nil {
		return fmt.Errorf("saving run state: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM roster_run_state WHERE id = $1`, s.id)
	return err
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
