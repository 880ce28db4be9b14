package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

const (
	defaultSessionCacheSize = 1024
	// A cached session is trusted for this long before the row is touched
	// again to slide its expiry.
	sessionCacheRefresh = time.Minute
)

// SQLiteManager stores players and sessions in a local sqlite file. Resolved
// sessions are kept in an LRU so a chatty websocket does not hit the database
// on every reconnect.
type SQLiteManager struct {
	db         *sql.DB
	sessionTTL time.Duration
	cache      *lru.Cache[string, cachedSession]
}

type cachedSession struct {
	session   Session
	expiresAt time.Time
	checkedAt time.Time
}

type SQLiteOptions struct {
	Path       string
	SessionTTL time.Duration
	CacheSize  int
}

func NewSQLiteManager(opts SQLiteOptions) (*SQLiteManager, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultSessionCacheSize
	}
	cache, err := lru.New[string, cachedSession](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteManager{db: db, sessionTTL: opts.SessionTTL, cache: cache}, nil
}

// OpenSQLite opens path with the pragmas every local store in the server
// uses: a single connection, WAL and foreign keys.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if parent := filepath.Dir(path); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (m *SQLiteManager) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *SQLiteManager) Register(username, password string) (Session, string, error) {
	if err := validateCredentials(username, password); err != nil {
		return Session{}, "", err
	}
	key := normalizeUsername(username)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, "", err
	}
	defer tx.Rollback()

	nowMs := time.Now().UTC().UnixMilli()
	res, err := tx.ExecContext(ctx, `
INSERT INTO players (username, password_hash, created_at_ms, last_login_at_ms)
VALUES (?, ?, ?, ?)
`, key, string(hash), nowMs, nowMs)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return Session{}, "", ErrUsernameTaken
		}
		return Session{}, "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Session{}, "", err
	}
	token, err := m.issueSessionTx(ctx, tx, uint64(id), nowMs)
	if err != nil {
		return Session{}, "", err
	}
	if err := tx.Commit(); err != nil {
		return Session{}, "", err
	}
	return Session{PlayerID: uint64(id), Username: key}, token, nil
}

func (m *SQLiteManager) Login(username, password string) (Session, string, error) {
	key := normalizeUsername(username)
	if key == "" || password == "" {
		return Session{}, "", ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		id   uint64
		hash string
	)
	err := m.db.QueryRowContext(ctx, `SELECT id, password_hash FROM players WHERE username = ?`, key).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, "", ErrInvalidCredentials
		}
		return Session{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Session{}, "", ErrInvalidCredentials
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, "", err
	}
	defer tx.Rollback()

	nowMs := time.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, `UPDATE players SET last_login_at_ms = ? WHERE id = ?`, nowMs, id); err != nil {
		return Session{}, "", err
	}
	token, err := m.issueSessionTx(ctx, tx, id, nowMs)
	if err != nil {
		return Session{}, "", err
	}
	if err := tx.Commit(); err != nil {
		return Session{}, "", err
	}
	return Session{PlayerID: id, Username: key}, token, nil
}

// ResolveSession answers from the cache while the entry is fresh, otherwise
// slides the row's expiry and re-caches it.
func (m *SQLiteManager) ResolveSession(token string) (Session, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, false
	}
	now := time.Now().UTC()
	if c, ok := m.cache.Get(token); ok {
		if now.Before(c.expiresAt) && now.Sub(c.checkedAt) < sessionCacheRefresh {
			return c.session, true
		}
		m.cache.Remove(token)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, false
	}
	defer tx.Rollback()

	nowMs := now.UnixMilli()
	expiresAt := now.Add(m.sessionTTL)
	res, err := tx.ExecContext(ctx, `
UPDATE player_sessions
SET last_seen_at_ms = ?,
    expires_at_ms = ?
WHERE token = ?
  AND revoked_at_ms IS NULL
  AND expires_at_ms > ?
`, nowMs, expiresAt.UnixMilli(), token, nowMs)
	if err != nil {
		return Session{}, false
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return Session{}, false
	}

	var s Session
	err = tx.QueryRowContext(ctx, `
SELECT p.id, p.username
FROM player_sessions AS s
JOIN players AS p ON p.id = s.player_id
WHERE s.token = ?
`, token).Scan(&s.PlayerID, &s.Username)
	if err != nil {
		return Session{}, false
	}
	if err := tx.Commit(); err != nil {
		return Session{}, false
	}
	m.cache.Add(token, cachedSession{session: s, expiresAt: expiresAt, checkedAt: now})
	return s, true
}

func (m *SQLiteManager) Logout(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	m.cache.Remove(token)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = m.db.ExecContext(ctx, `
UPDATE player_sessions
SET revoked_at_ms = ?
WHERE token = ?
  AND revoked_at_ms IS NULL
`, time.Now().UTC().UnixMilli(), token)
}

func (m *SQLiteManager) issueSessionTx(ctx context.Context, tx *sql.Tx, playerID uint64, nowMs int64) (string, error) {
	expiresAtMs := nowMs + m.sessionTTL.Milliseconds()
	for i := 0; i < 5; i++ {
		token := mustToken()
		if _, err := tx.ExecContext(ctx, `
INSERT INTO player_sessions (token, player_id, issued_at_ms, expires_at_ms, last_seen_at_ms)
VALUES (?, ?, ?, ?, ?)
`, token, playerID, nowMs, expiresAtMs, nowMs); err != nil {
			if isSQLiteUniqueViolation(err) {
				continue
			}
			return "", err
		}
		return token, nil
	}
	return "", fmt.Errorf("failed to generate unique session token")
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS players (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at_ms INTEGER NOT NULL,
    last_login_at_ms INTEGER
)`,
		`
CREATE TABLE IF NOT EXISTS player_sessions (
    token TEXT PRIMARY KEY,
    player_id INTEGER NOT NULL,
    issued_at_ms INTEGER NOT NULL,
    expires_at_ms INTEGER NOT NULL,
    revoked_at_ms INTEGER,
    last_seen_at_ms INTEGER NOT NULL,
    FOREIGN KEY(player_id) REFERENCES players(id) ON DELETE CASCADE
)`,
		`CREATE INDEX IF NOT EXISTS idx_player_sessions_player ON player_sessions(player_id, expires_at_ms DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
