// Package sim runs a set of agents on a shared clock. Agents tick in the
// order they were added, each to completion, so a run is fully determined by
// its inputs.
package sim

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"npcsim/agent"
	"npcsim/emotion"
	"npcsim/personality"
	"npcsim/relationship"
	"npcsim/utility"
)

var (
	ErrUnknownAgent   = errors.New("unknown agent")
	ErrDuplicateAgent = errors.New("duplicate agent id")
)

const DefaultSpeed = 2.0

// DefaultLocations is a small village: the four utility targets plus the
// spot where the player stands.
func DefaultLocations() map[string]agent.Vec2 {
	return map[string]agent.Vec2{
		"home":    {X: 0, Y: 0},
		"work":    {X: 8, Y: 0},
		"market":  {X: 0, Y: 6},
		"storage": {X: 8, Y: 6},
		"partner": {X: 4, Y: 3},
	}
}

// Hooks observe the world. All of them run on the ticking goroutine.
type Hooks struct {
	OnDecision   func(a *agent.Controller, d utility.Decision)
	OnReaction   func(a *agent.Controller, r emotion.Reaction)
	OnEffectDone func(a *agent.Controller, e *agent.Effect)
}

type Config struct {
	Catalog   *utility.Catalog
	Locations map[string]agent.Vec2
	Speed     float64
	Hooks     Hooks
	Verbose   bool
	Logf      func(format string, args ...any)
}

func DefaultConfig(catalog *utility.Catalog) Config {
	return Config{
		Catalog:   catalog,
		Locations: DefaultLocations(),
		Speed:     DefaultSpeed,
	}
}

func (c Config) validate() error {
	if c.Catalog == nil {
		return fmt.Errorf("Catalog is required")
	}
	if c.Speed <= 0 {
		return fmt.Errorf("Speed must be > 0")
	}
	return nil
}

// AgentSpec describes one agent to add. Zero values fall back to defaults.
type AgentSpec struct {
	ID       string
	Name     string
	Profile  personality.Profile
	Position agent.Vec2
	Stats    *agent.StatValues
	Triangle *relationship.Triangle

	StoppingDistance float64
	StatusEvery      int // 0 keeps agent.DefaultStatusEvery; < 0 is rejected
	Animator         agent.Animator
	Display          agent.Display
}

type member struct {
	ctrl  *agent.Controller
	mover *PointMover
}

// World is not safe for concurrent use, except for the Bus it exposes.
type World struct {
	cfg       Config
	locations map[string]agent.Vec2
	members   []*member
	byID      map[string]*member
	bus       *agent.Bus
	elapsed   time.Duration
	spawned   int
}

func New(cfg Config) (*World, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("sim config: %w", err)
	}
	if cfg.Logf == nil {
		cfg.Logf = log.Printf
	}
	locs := make(map[string]agent.Vec2, len(cfg.Locations))
	for k, v := range cfg.Locations {
		locs[k] = v
	}
	return &World{
		cfg:       cfg,
		locations: locs,
		byID:      make(map[string]*member),
		bus:       agent.NewBus(),
	}, nil
}

func (w *World) Catalog() *utility.Catalog { return w.cfg.Catalog }
func (w *World) Elapsed() time.Duration    { return w.elapsed }
func (w *World) Bus() *agent.Bus           { return w.bus }
func (w *World) Len() int                  { return len(w.members) }

// SetCatalog swaps the catalog used by agents added from now on. Agents
// already in the world keep the one they were built with.
func (w *World) SetCatalog(c *utility.Catalog) {
	if c != nil {
		w.cfg.Catalog = c
	}
}

// Locate implements agent.Locator over the world's named places.
func (w *World) Locate(name string) (agent.Vec2, bool) {
	p, ok := w.locations[name]
	return p, ok
}

// SetLocation adds or moves a named place, e.g. where the player stands.
func (w *World) SetLocation(name string, p agent.Vec2) { w.locations[name] = p }

// Locations returns the place names in sorted order.
func (w *World) Locations() []string {
	out := make([]string, 0, len(w.locations))
	for k := range w.locations {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AddAgent builds an agent with its own core, stats and mover and appends it
// to the tick order.
func (w *World) AddAgent(spec AgentSpec) (*agent.Controller, error) {
	w.spawned++
	id := spec.ID
	if id == "" {
		id = fmt.Sprintf("agent-%d", w.spawned)
	}
	if _, dup := w.byID[id]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, id)
	}

	ecfg := emotion.DefaultConfig()
	if spec.Triangle != nil {
		ecfg.Triangle = *spec.Triangle
	}
	core := emotion.NewCore(ecfg)
	values := agent.DefaultStatValues()
	if spec.Stats != nil {
		values = *spec.Stats
	}
	stats := agent.NewStats(values, core)
	mover := NewPointMover(spec.Position, w.cfg.Speed)

	acfg := agent.DefaultConfig()
	acfg.ID = id
	acfg.Name = spec.Name
	acfg.Profile = spec.Profile
	acfg.StoppingDistance = spec.StoppingDistance
	if spec.StatusEvery != 0 {
		acfg.StatusEvery = spec.StatusEvery
	}
	acfg.Verbose = w.cfg.Verbose
	acfg.Logf = w.cfg.Logf

	ctrl, err := agent.New(acfg, agent.Deps{
		Catalog:  w.cfg.Catalog,
		Mover:    mover,
		Stats:    stats,
		Core:     core,
		Locator:  w,
		Animator: spec.Animator,
		Display:  spec.Display,
		Hooks: agent.Hooks{
			OnDecision: func(c *agent.Controller, d utility.Decision) {
				if w.cfg.Hooks.OnDecision != nil {
					w.cfg.Hooks.OnDecision(c, d)
				}
			},
			OnEffectDone: func(c *agent.Controller, e *agent.Effect) {
				if w.cfg.Hooks.OnEffectDone != nil {
					w.cfg.Hooks.OnEffectDone(c, e)
				}
			},
		},
	})
	if err != nil {
		return nil, err
	}

	m := &member{ctrl: ctrl, mover: mover}
	w.members = append(w.members, m)
	w.byID[id] = m
	w.cfg.Logf("[World] spawned %s (%s, %s) at %s", ctrl.Name(), id, spec.Profile.Code(), spec.Position)
	return ctrl, nil
}

// RemoveAgent drops an agent from the tick order.
func (w *World) RemoveAgent(id string) bool {
	m, ok := w.byID[id]
	if !ok {
		return false
	}
	delete(w.byID, id)
	for i, x := range w.members {
		if x == m {
			w.members = append(w.members[:i], w.members[i+1:]...)
			break
		}
	}
	w.cfg.Logf("[World] removed %s (%s)", m.ctrl.Name(), id)
	return true
}

func (w *World) Agent(id string) (*agent.Controller, bool) {
	m, ok := w.byID[id]
	if !ok {
		return nil, false
	}
	return m.ctrl, true
}

// Agents returns the controllers in tick order.
func (w *World) Agents() []*agent.Controller {
	out := make([]*agent.Controller, len(w.members))
	for i, m := range w.members {
		out[i] = m.ctrl
	}
	return out
}

// Stimulate applies a player action to one agent immediately.
func (w *World) Stimulate(id string, action emotion.PlayerAction, intensity float64) (emotion.Reaction, error) {
	m, ok := w.byID[id]
	if !ok {
		return emotion.Reaction{}, fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	r := m.ctrl.React(action, intensity)
	if w.cfg.Hooks.OnReaction != nil {
		w.cfg.Hooks.OnReaction(m.ctrl, r)
	}
	return r, nil
}

// Engage starts an interaction with one agent; see agent.Controller.Engage.
func (w *World) Engage(id string) (bool, error) {
	m, ok := w.byID[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	return m.ctrl.Engage(), nil
}

// Tick applies queued bus stimuli, then advances every mover and agent by
// dt in insertion order.
func (w *World) Tick(dt time.Duration) {
	for _, s := range w.bus.Drain() {
		if s.Agent == "" {
			for _, m := range w.members {
				w.Stimulate(m.ctrl.ID(), s.Action, s.Intensity)
			}
			continue
		}
		if _, err := w.Stimulate(s.Agent, s.Action, s.Intensity); err != nil {
			w.cfg.Logf("[World] dropped stimulus %s: %v", s.Action, err)
		}
	}
	for _, m := range w.members {
		m.mover.Advance(dt)
		m.ctrl.Tick(dt)
	}
	w.elapsed += dt
}

// Snapshot returns every agent's status in tick order.
func (w *World) Snapshot() []agent.Status {
	out := make([]agent.Status, len(w.members))
	for i, m := range w.members {
		out[i] = m.ctrl.Status()
	}
	return out
}
