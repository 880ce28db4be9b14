package auth

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Manager keeps players and sessions in process memory. Everything is lost
// on restart.
type Manager struct {
	mu sync.Mutex

	nextPlayerID uint64
	sessionTTL   time.Duration
	now          func() time.Time

	sessions  map[string]memorySession // token -> player
	players   map[uint64]memoryPlayer
	usernames map[string]uint64 // normalized username -> player
}

type memorySession struct {
	playerID  uint64
	expiresAt time.Time
}

type memoryPlayer struct {
	username     string
	passwordHash []byte
	lastLogin    time.Time
}

func NewManager(sessionTTL time.Duration) *Manager {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &Manager{
		nextPlayerID: 1000,
		sessionTTL:   sessionTTL,
		now:          time.Now,
		sessions:     make(map[string]memorySession),
		players:      make(map[uint64]memoryPlayer),
		usernames:    make(map[string]uint64),
	}
}

func (m *Manager) Close() error { return nil }

// Register creates a player and returns a fresh session token.
func (m *Manager) Register(username, password string) (Session, string, error) {
	if err := validateCredentials(username, password); err != nil {
		return Session{}, "", err
	}
	key := normalizeUsername(username)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.usernames[key]; taken {
		return Session{}, "", ErrUsernameTaken
	}
	m.nextPlayerID++
	id := m.nextPlayerID
	now := m.now()
	m.players[id] = memoryPlayer{username: key, passwordHash: hash, lastLogin: now}
	m.usernames[key] = id
	return Session{PlayerID: id, Username: key}, m.issueLocked(id, now), nil
}

func (m *Manager) Login(username, password string) (Session, string, error) {
	key := normalizeUsername(username)
	if key == "" || password == "" {
		return Session{}, "", ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.usernames[key]
	if !ok {
		return Session{}, "", ErrInvalidCredentials
	}
	p := m.players[id]
	if bcrypt.CompareHashAndPassword(p.passwordHash, []byte(password)) != nil {
		return Session{}, "", ErrInvalidCredentials
	}
	now := m.now()
	p.lastLogin = now
	m.players[id] = p
	return Session{PlayerID: id, Username: p.username}, m.issueLocked(id, now), nil
}

// ResolveSession validates token and slides its expiry forward.
func (m *Manager) ResolveSession(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[token]
	if !ok {
		return Session{}, false
	}
	now := m.now()
	if !now.Before(rec.expiresAt) {
		delete(m.sessions, token)
		return Session{}, false
	}
	rec.expiresAt = now.Add(m.sessionTTL)
	m.sessions[token] = rec
	return Session{PlayerID: rec.playerID, Username: m.players[rec.playerID].username}, true
}

func (m *Manager) Logout(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

func (m *Manager) issueLocked(playerID uint64, now time.Time) string {
	token := mustToken()
	m.sessions[token] = memorySession{playerID: playerID, expiresAt: now.Add(m.sessionTTL)}
	return token
}
