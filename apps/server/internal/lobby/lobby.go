// Package lobby owns the set of live worlds.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"npcsim/apps/server/internal/journal"
	"npcsim/apps/server/internal/world"
	"npcsim/content"
	"npcsim/utility"
)

// Lobby creates worlds on demand and reaps the ones nobody watches.
type Lobby struct {
	mu     sync.RWMutex
	worlds map[string]*world.World
	nextID uint64

	cfg      world.Config
	catalog  *utility.Catalog
	personas *content.PersonaRegistry
	journal  journal.Service
}

func New(cfg world.Config, catalog *utility.Catalog, personas *content.PersonaRegistry, j journal.Service) *Lobby {
	if catalog == nil {
		catalog = content.DefaultCatalog()
	}
	if personas == nil {
		personas = content.DefaultPersonas()
	}
	return &Lobby{
		worlds:   make(map[string]*world.World),
		cfg:      cfg,
		catalog:  catalog,
		personas: personas,
		journal:  j,
	}
}

// QuickStart returns the first open world with a free subscriber seat, or a
// fresh world seeded with the persona roster.
func (l *Lobby) QuickStart() (*world.World, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range l.sortedIDsLocked() {
		w := l.worlds[id]
		if !w.IsClosed() && w.SubscriberCount() < l.cfg.MaxSubscribers {
			log.Printf("[Lobby] QuickStart: joining existing world %s", id)
			return w, nil
		}
	}
	w, err := l.createLocked("")
	if err != nil {
		return nil, err
	}
	log.Printf("[Lobby] QuickStart: created new world %s", w.ID)
	return w, nil
}

// Create starts a named world with every persona in the roster.
func (l *Lobby) Create(name string) (*world.World, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.createLocked(name)
}

func (l *Lobby) createLocked(name string) (*world.World, error) {
	l.nextID++
	id := fmt.Sprintf("world_%d", l.nextID)
	w, err := world.New(id, name, l.cfg, l.catalog, l.journal)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", id, err)
	}
	for _, p := range l.personas.All() {
		spec, err := p.AgentSpec()
		if err != nil {
			log.Printf("[Lobby] %s: skipping persona %s: %v", id, p.ID, err)
			continue
		}
		if err := w.SubmitEvent(world.Event{Type: world.EventSpawn, Spec: &spec}); err != nil {
			if errors.Is(err, world.ErrWorldFull) {
				break
			}
			log.Printf("[Lobby] %s: spawn %s failed: %v", id, p.ID, err)
		}
	}
	l.worlds[id] = w
	return w, nil
}

func (l *Lobby) Get(id string) *world.World {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.worlds[id]
}

// List summarizes every world in id order.
func (l *Lobby) List() []world.Info {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]world.Info, 0, len(l.worlds))
	for _, id := range l.sortedIDsLocked() {
		out = append(out, l.worlds[id].Info())
	}
	return out
}

// Personas is the roster new worlds and spawn commands draw from.
func (l *Lobby) Personas() *content.PersonaRegistry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.personas
}

func (l *Lobby) Catalog() *utility.Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog
}

// SetContent swaps the catalog and roster. Live worlds pick up the catalog
// for agents spawned from now on; nil arguments keep the current value.
func (l *Lobby) SetContent(catalog *utility.Catalog, personas *content.PersonaRegistry) {
	l.mu.Lock()
	if catalog != nil {
		l.catalog = catalog
	}
	if personas != nil {
		l.personas = personas
	}
	worlds := make([]*world.World, 0, len(l.worlds))
	for _, w := range l.worlds {
		worlds = append(worlds, w)
	}
	l.mu.Unlock()

	if catalog == nil {
		return
	}
	for _, w := range worlds {
		if err := w.SubmitEvent(world.Event{Type: world.EventSetCatalog, Catalog: catalog}); err != nil && !errors.Is(err, world.ErrWorldClosed) {
			log.Printf("[Lobby] %s: catalog swap failed: %v", w.ID, err)
		}
	}
}

// Reap stops and forgets worlds that have been closed or unwatched for ttl.
func (l *Lobby) Reap(ttl time.Duration) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var removed []string
	for _, id := range l.sortedIDsLocked() {
		w := l.worlds[id]
		if w.IsClosed() || w.IsIdleFor(ttl) {
			w.Stop()
			delete(l.worlds, id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		log.Printf("[Lobby] Reaped %d idle world(s): %v", len(removed), removed)
	}
	return removed
}

// RunReaper calls Reap every interval until ctx is done.
func (l *Lobby) RunReaper(ctx context.Context, every, ttl time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Reap(ttl)
		}
	}
}

// Close stops every world.
func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, w := range l.worlds {
		w.Stop()
		delete(l.worlds, id)
	}
}

func (l *Lobby) sortedIDsLocked() []string {
	ids := make([]string, 0, len(l.worlds))
	for id := range l.worlds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
