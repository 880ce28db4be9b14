// Package world runs one simulated scene as an actor. Every mutation of the
// underlying sim.World goes through the event channel or the ticker, so the
// simulation stays single-threaded under concurrent network input.
package world

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"npcsim/agent"
	"npcsim/apps/server/internal/codec"
	"npcsim/apps/server/internal/journal"
	"npcsim/emotion"
	"npcsim/sim"
	"npcsim/utility"
)

var (
	ErrWorldClosed = errors.New("world closed")
	ErrWorldFull   = errors.New("world full")
)

type EventType int

const (
	EventSpawn EventType = iota
	EventDespawn
	EventStimulus
	EventEngage
	EventSubscribe
	EventUnsubscribe
	EventSetCatalog
	EventClose
)

// Event is a message to the world actor. Only the fields its Type needs are
// read.
type Event struct {
	Type EventType

	SubscriberID uint64
	Format       codec.Format
	Send         func(data []byte) // must not block

	Agent     string
	Action    emotion.PlayerAction
	Intensity float64
	Spec      *sim.AgentSpec
	Catalog   *utility.Catalog

	Response chan error
}

type Config struct {
	TickInterval   time.Duration
	Step           time.Duration // sim time per tick; 0 uses TickInterval
	StatusEvery    int           // ticks between status broadcasts
	MaxAgents      int
	MaxSubscribers int
	Speed          float64
}

func DefaultConfig() Config {
	return Config{
		TickInterval:   100 * time.Millisecond,
		StatusEvery:    10,
		MaxAgents:      16,
		MaxSubscribers: 8,
		Speed:          sim.DefaultSpeed,
	}
}

func (c Config) validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("TickInterval must be > 0")
	}
	if c.StatusEvery <= 0 {
		return fmt.Errorf("StatusEvery must be > 0")
	}
	if c.MaxAgents <= 0 || c.MaxSubscribers <= 0 {
		return fmt.Errorf("MaxAgents and MaxSubscribers must be > 0")
	}
	return nil
}

type subscriber struct {
	format codec.Format
	send   func([]byte)
}

// World is a live scene with its own clock, agents and subscribers.
type World struct {
	ID    string
	Name  string
	RunID string

	cfg Config

	mu          sync.RWMutex
	sim         *sim.World
	subscribers map[uint64]subscriber
	journal     journal.Service
	seq         uint64
	ticks       uint64
	emptySince  time.Time
	closed      bool
	stopOnce    sync.Once

	events chan Event
	done   chan struct{}
}

// Info is a point-in-time summary for listings.
type Info struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	RunID       string   `json:"runId"`
	Agents      []string `json:"agents"`
	Subscribers int      `json:"subscribers"`
	ElapsedMs   int64    `json:"elapsedMs"`
}

// New builds the world and starts its actor goroutine. A nil journal drops
// entries.
func New(id, name string, cfg Config, catalog *utility.Catalog, j journal.Service) (*World, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("world config: %w", err)
	}
	if name == "" {
		name = id
	}
	w := &World{
		ID:          id,
		Name:        name,
		RunID:       uuid.NewString(),
		cfg:         cfg,
		subscribers: make(map[uint64]subscriber),
		journal:     j,
		events:      make(chan Event, 256),
		done:        make(chan struct{}),
	}
	w.emptySince = time.Now()

	scfg := sim.DefaultConfig(catalog)
	if cfg.Speed > 0 {
		scfg.Speed = cfg.Speed
	}
	scfg.Hooks = sim.Hooks{
		OnDecision:   w.onDecision,
		OnReaction:   w.onReaction,
		OnEffectDone: w.onEffectDone,
	}
	s, err := sim.New(scfg)
	if err != nil {
		return nil, err
	}
	w.sim = s

	go w.run()
	log.Printf("[World %s] Created (name=%s run=%s tick=%s)", id, name, w.RunID, cfg.TickInterval)
	return w, nil
}

func (w *World) run() {
	ticker := time.NewTicker(w.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case e := <-w.events:
			err := w.handleEvent(e)
			if e.Response != nil {
				e.Response <- err
			}
		case <-ticker.C:
			w.tick()
		case <-w.done:
			log.Printf("[World %s] Actor stopped", w.ID)
			return
		}
	}
}

// SubmitEvent queues e and waits for the actor's answer.
func (w *World) SubmitEvent(e Event) error {
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}
	select {
	case <-w.done:
		return ErrWorldClosed
	case w.events <- e:
	}
	select {
	case err := <-e.Response:
		return err
	case <-w.done:
		return ErrWorldClosed
	}
}

func (w *World) handleEvent(e Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed && e.Type != EventClose {
		return ErrWorldClosed
	}

	switch e.Type {
	case EventSpawn:
		return w.handleSpawn(e.Spec)
	case EventDespawn:
		return w.handleDespawn(e.Agent)
	case EventStimulus:
		return w.handleStimulus(e.Agent, e.Action, e.Intensity)
	case EventEngage:
		_, err := w.sim.Engage(e.Agent)
		return err
	case EventSubscribe:
		return w.handleSubscribe(e.SubscriberID, e.Format, e.Send)
	case EventUnsubscribe:
		w.handleUnsubscribe(e.SubscriberID)
		return nil
	case EventSetCatalog:
		w.sim.SetCatalog(e.Catalog)
		return nil
	case EventClose:
		w.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (w *World) handleSpawn(spec *sim.AgentSpec) error {
	if spec == nil {
		return fmt.Errorf("spawn without agent spec")
	}
	if w.sim.Len() >= w.cfg.MaxAgents {
		return fmt.Errorf("%w: %d agents", ErrWorldFull, w.sim.Len())
	}
	a, err := w.sim.AddAgent(*spec)
	if err != nil {
		return err
	}
	w.record(journal.KindSpawn, a.ID(), fmt.Sprintf("%s joined as %s", a.Name(), a.Profile().Code()))
	w.broadcastStatusLocked()
	return nil
}

func (w *World) handleDespawn(id string) error {
	a, ok := w.sim.Agent(id)
	if !ok || !w.sim.RemoveAgent(id) {
		return fmt.Errorf("%w: %s", sim.ErrUnknownAgent, id)
	}
	w.record(journal.KindDespawn, id, a.Name()+" left")
	w.broadcastStatusLocked()
	return nil
}

// handleStimulus applies at once; an empty agent addresses everyone.
func (w *World) handleStimulus(id string, action emotion.PlayerAction, intensity float64) error {
	if intensity <= 0 {
		intensity = agent.DefaultIntensity
	}
	if id != "" {
		_, err := w.sim.Stimulate(id, action, intensity)
		return err
	}
	for _, a := range w.sim.Agents() {
		if _, err := w.sim.Stimulate(a.ID(), action, intensity); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) handleSubscribe(id uint64, f codec.Format, send func([]byte)) error {
	if send == nil {
		return fmt.Errorf("subscribe without send func")
	}
	if _, ok := w.subscribers[id]; !ok && len(w.subscribers) >= w.cfg.MaxSubscribers {
		return fmt.Errorf("%w: %d subscribers", ErrWorldFull, len(w.subscribers))
	}
	w.subscribers[id] = subscriber{format: f, send: send}
	w.emptySince = time.Time{}
	log.Printf("[World %s] Subscriber %d joined (%d total)", w.ID, id, len(w.subscribers))

	w.seq++
	data, err := codec.EncodeStatus(w.ID, w.seq, time.Now().UnixMilli(), w.sim.Snapshot(), f)
	if err != nil {
		return err
	}
	send(data)
	return nil
}

func (w *World) handleUnsubscribe(id uint64) {
	if _, ok := w.subscribers[id]; !ok {
		return
	}
	delete(w.subscribers, id)
	if len(w.subscribers) == 0 {
		w.emptySince = time.Now()
	}
	log.Printf("[World %s] Subscriber %d left (%d total)", w.ID, id, len(w.subscribers))
}

// tick advances the simulation by one fixed step regardless of wall time.
func (w *World) tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	step := w.cfg.Step
	if step <= 0 {
		step = w.cfg.TickInterval
	}
	w.sim.Tick(step)
	w.ticks++
	if w.ticks%uint64(w.cfg.StatusEvery) == 0 {
		w.broadcastStatusLocked()
	}
}

func (w *World) onDecision(a *agent.Controller, d utility.Decision) {
	w.emit(journal.KindDecision, a.ID(), fmt.Sprintf("%s chose %s (%.3f)", a.Name(), d.ID, d.Score),
		func(seq uint64, ts int64, f codec.Format) ([]byte, error) {
			return codec.EncodeDecision(w.ID, seq, ts, a.ID(), d, f)
		})
}

func (w *World) onReaction(a *agent.Controller, r emotion.Reaction) {
	w.emit(journal.KindReaction, a.ID(), a.Name()+": "+r.String(),
		func(seq uint64, ts int64, f codec.Format) ([]byte, error) {
			return codec.EncodeReaction(w.ID, seq, ts, a.ID(), r, f)
		})
}

func (w *World) onEffectDone(a *agent.Controller, e *agent.Effect) {
	p := codec.EffectPayload{
		Agent:      a.ID(),
		Action:     e.ID,
		Pool:       e.Pool.String(),
		DurationMs: e.Duration.Milliseconds(),
		Stats:      a.Stats().Values(),
	}
	w.emit(journal.KindEffectDone, a.ID(), fmt.Sprintf("%s finished %s", a.Name(), e.ID),
		func(seq uint64, ts int64, f codec.Format) ([]byte, error) {
			return codec.EncodeEffectDone(w.ID, seq, ts, p, f)
		})
}

type encodeFunc func(seq uint64, tsMs int64, f codec.Format) ([]byte, error)

// emit runs under w.mu (hooks fire inside sim calls made by the actor). It
// broadcasts the envelope and journals its binary form.
func (w *World) emit(kind journal.Kind, agentID, summary string, enc encodeFunc) {
	w.seq++
	seq, ts := w.seq, time.Now().UnixMilli()
	bin, err := enc(seq, ts, codec.Binary)
	if err != nil {
		log.Printf("[World %s] encode %s failed: %v", w.ID, kind, err)
		return
	}
	w.broadcastLocked(bin, func(f codec.Format) ([]byte, error) { return enc(seq, ts, f) })
	w.appendJournal(kind, agentID, summary, seq, ts, bin)
}

// record journals an event that has no envelope of its own.
func (w *World) record(kind journal.Kind, agentID, summary string) {
	w.seq++
	w.appendJournal(kind, agentID, summary, w.seq, time.Now().UnixMilli(), nil)
}

func (w *World) appendJournal(kind journal.Kind, agentID, summary string, seq uint64, ts int64, bin []byte) {
	if w.journal == nil {
		return
	}
	e := journal.Entry{
		RunID:   w.RunID,
		WorldID: w.ID,
		AgentID: agentID,
		Seq:     seq,
		Kind:    kind,
		Summary: summary,
		TsMs:    ts,
	}
	if len(bin) > 0 {
		e.EnvelopeB64 = base64.StdEncoding.EncodeToString(bin)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := w.journal.Append(ctx, e); err != nil {
		log.Printf("[World %s] journal append failed: seq=%d err=%v", w.ID, seq, err)
	}
}

func (w *World) broadcastStatusLocked() {
	if len(w.subscribers) == 0 {
		return
	}
	w.seq++
	seq, ts, snap := w.seq, time.Now().UnixMilli(), w.sim.Snapshot()
	bin, err := codec.EncodeStatus(w.ID, seq, ts, snap, codec.Binary)
	if err != nil {
		log.Printf("[World %s] encode status failed: %v", w.ID, err)
		return
	}
	w.broadcastLocked(bin, func(f codec.Format) ([]byte, error) {
		return codec.EncodeStatus(w.ID, seq, ts, snap, f)
	})
}

// broadcastLocked sends bin to binary subscribers and a lazily encoded JSON
// rendering to the rest.
func (w *World) broadcastLocked(bin []byte, encode func(codec.Format) ([]byte, error)) {
	var text []byte
	for id, s := range w.subscribers {
		if s.format == codec.Binary {
			s.send(bin)
			continue
		}
		if text == nil {
			var err error
			if text, err = encode(codec.JSON); err != nil {
				log.Printf("[World %s] encode json for %d failed: %v", w.ID, id, err)
				return
			}
		}
		s.send(text)
	}
}

// Stop closes the world. Safe to call more than once.
func (w *World) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *World) stopLocked() {
	w.stopOnce.Do(func() {
		w.closed = true
		close(w.done)
	})
}

func (w *World) IsClosed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.closed
}

// IsIdleFor reports whether nobody has watched the world for at least ttl.
func (w *World) IsIdleFor(ttl time.Duration) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.subscribers) > 0 || w.emptySince.IsZero() {
		return false
	}
	return time.Since(w.emptySince) >= ttl
}

func (w *World) SubscriberCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subscribers)
}

func (w *World) Snapshot() []agent.Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sim.Snapshot()
}

func (w *World) Info() Info {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := make([]string, 0, w.sim.Len())
	for _, a := range w.sim.Agents() {
		ids = append(ids, a.ID())
	}
	sort.Strings(ids)
	return Info{
		ID:          w.ID,
		Name:        w.Name,
		RunID:       w.RunID,
		Agents:      ids,
		Subscribers: len(w.subscribers),
		ElapsedMs:   w.sim.Elapsed().Milliseconds(),
	}
}
