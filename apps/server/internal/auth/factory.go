package auth

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	ModeMemory = "memory"
	ModeSQLite = "sqlite"
)

const defaultLocalDBName = "npcsim_local.db"

func modeFromEnv() string {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	switch raw {
	case "", ModeMemory, "mem":
		return ModeMemory
	case ModeSQLite, "local":
		return ModeSQLite
	default:
		return raw
	}
}

// NewServiceFromEnv picks the backend named by AUTH_MODE. Memory is the
// default; it lets the gateway accept guests.
func NewServiceFromEnv() (Service, string, error) {
	mode := modeFromEnv()
	ttl := sessionTTLFromEnv()
	switch mode {
	case ModeMemory:
		return NewManager(ttl), mode, nil
	case ModeSQLite:
		path, err := localDatabasePathFromEnv()
		if err != nil {
			return nil, mode, err
		}
		m, err := NewSQLiteManager(SQLiteOptions{
			Path:       path,
			SessionTTL: ttl,
			CacheSize:  envInt("AUTH_SESSION_CACHE", defaultSessionCacheSize),
		})
		if err != nil {
			return nil, mode, err
		}
		log.Printf("[Auth] sqlite store at %s", path)
		return m, mode, nil
	default:
		return nil, mode, fmt.Errorf("invalid AUTH_MODE %q (supported: %s, %s)", mode, ModeMemory, ModeSQLite)
	}
}

func sessionTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("AUTH_SESSION_TTL"))
	if raw == "" {
		return defaultSessionTTL
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("[Auth] ignoring AUTH_SESSION_TTL=%q", raw)
		return defaultSessionTTL
	}
	return d
}

func localDatabasePathFromEnv() (string, error) {
	for _, key := range []string{"AUTH_SQLITE_PATH", "LOCAL_DATABASE_PATH"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return filepath.Clean(v), nil
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "npcsim", defaultLocalDBName), nil
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
