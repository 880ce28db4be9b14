package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLService stores entries in sqlite or postgres. Queries are written with
// ? placeholders and rebound for postgres.
type SQLService struct {
	db      *sql.DB
	dialect dialect
	// keepPerWorld bounds how many entries a world retains; 0 keeps all.
	keepPerWorld int
}

func newSQLService(ctx context.Context, db *sql.DB, d dialect, keepPerWorld int) (*SQLService, error) {
	s := &SQLService{db: db, dialect: d, keepPerWorld: keepPerWorld}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NewPostgresService connects with lib/pq and creates the table if needed.
func NewPostgresService(dsn string, keepPerWorld int) (*SQLService, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s, err := newSQLService(ctx, db, dialectPostgres, keepPerWorld)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLService) Append(ctx context.Context, e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO journal_entries (run_id, world_id, agent_id, seq, kind, summary, envelope_b64, ts_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (run_id, seq) DO NOTHING
`), e.RunID, e.WorldID, e.AgentID, int64(e.Seq), string(e.Kind), e.Summary, e.EnvelopeB64, e.TsMs)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	if s.keepPerWorld > 0 && e.Seq%uint64(s.keepPerWorld) == 0 {
		return s.trim(ctx, e.WorldID)
	}
	return nil
}

func (s *SQLService) trim(ctx context.Context, worldID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
DELETE FROM journal_entries
WHERE world_id = ?
  AND id NOT IN (
    SELECT id FROM journal_entries
    WHERE world_id = ?
    ORDER BY id DESC
    LIMIT ?
  )
`), worldID, worldID, s.keepPerWorld)
	if err != nil {
		return fmt.Errorf("trim journal: %w", err)
	}
	return nil
}

func (s *SQLService) ListRecent(ctx context.Context, worldID, agentID string, limit int) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if worldID != "" {
		where = append(where, "world_id = ?")
		args = append(args, worldID)
	}
	if agentID != "" {
		where = append(where, "agent_id = ?")
		args = append(args, agentID)
	}
	query := `SELECT run_id, world_id, agent_id, seq, kind, summary, envelope_b64, ts_ms FROM journal_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, clampLimit(limit))
	return s.query(ctx, query, args...)
}

func (s *SQLService) ListByRun(ctx context.Context, runID string) ([]Entry, error) {
	return s.query(ctx, `
SELECT run_id, world_id, agent_id, seq, kind, summary, envelope_b64, ts_ms
FROM journal_entries
WHERE run_id = ?
ORDER BY seq ASC
`, runID)
}

func (s *SQLService) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e    Entry
			seq  int64
			kind string
		)
		if err := rows.Scan(&e.RunID, &e.WorldID, &e.AgentID, &seq, &kind, &e.Summary, &e.EnvelopeB64, &e.TsMs); err != nil {
			return nil, err
		}
		e.Seq = uint64(seq)
		e.Kind = Kind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLService) ensureSchema(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == dialectPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS journal_entries (
    ` + idColumn + `,
    run_id TEXT NOT NULL,
    world_id TEXT NOT NULL,
    agent_id TEXT NOT NULL DEFAULT '',
    seq BIGINT NOT NULL,
    kind TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    envelope_b64 TEXT NOT NULL DEFAULT '',
    ts_ms BIGINT NOT NULL,
    UNIQUE (run_id, seq)
)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_world ON journal_entries(world_id, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_agent ON journal_entries(agent_id, id DESC)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure journal schema: %w", err)
		}
	}
	return nil
}

// rebind turns ? placeholders into $1, $2, ... for postgres.
func (s *SQLService) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
