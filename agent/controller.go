package agent

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"npcsim/emotion"
	"npcsim/personality"
	"npcsim/relationship"
	"npcsim/utility"
)

// State is a node of the controller's state machine.
type State byte

const (
	StateDecide  State = 0
	StateMove    State = 1
	StateExecute State = 2
	StateIdle    State = 3
	StateActive  State = 4
)

var StateDictionary = map[State]string{
	StateDecide:  "decide",
	StateMove:    "move",
	StateExecute: "execute",
	StateIdle:    "idle",
	StateActive:  "active",
}

func (s State) String() string {
	if v, ok := StateDictionary[s]; ok {
		return v
	}
	return fmt.Sprintf("state(%d)", s)
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for k, v := range StateDictionary {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown agent state %q", b)
}

const (
	DefaultTriggerTimeout = 10 * time.Second
	DefaultDriftRate      = 0.1
	DefaultStatusEvery    = 10

	// ArrivalSlack is added to the stopping distance for the arrival test.
	ArrivalSlack = 0.5

	// Animator flags.
	FlagBusy    = "busy"
	FlagEngaged = "engaged"
)

// Config holds per-agent tuning.
type Config struct {
	ID      string // empty => random UUID
	Name    string
	Profile personality.Profile

	// Emotion seeds the core when Deps.Core is nil.
	Emotion emotion.Config

	StoppingDistance float64
	TriggerTimeout   time.Duration

	// DriftRate pulls PAD toward the personality baseline, per second.
	DriftRate float64

	// AutoAct makes every stimulus a pending trigger for the emotional pool.
	AutoAct bool

	// StatusEvery sends a status line to the Display every N ticks (0 disables).
	StatusEvery int

	Verbose bool
	Logf    func(format string, args ...any)
}

func DefaultConfig() Config {
	return Config{
		Emotion:        emotion.DefaultConfig(),
		TriggerTimeout: DefaultTriggerTimeout,
		DriftRate:      DefaultDriftRate,
		AutoAct:        true,
		StatusEvery:    DefaultStatusEvery,
	}
}

func (c Config) validate() error {
	if c.StoppingDistance < 0 {
		return fmt.Errorf("StoppingDistance must be >= 0")
	}
	if c.TriggerTimeout < 0 {
		return fmt.Errorf("TriggerTimeout must be >= 0")
	}
	if c.DriftRate < 0 {
		return fmt.Errorf("DriftRate must be >= 0")
	}
	if c.StatusEvery < 0 {
		return fmt.Errorf("StatusEvery must be >= 0")
	}
	return nil
}

// Hooks are optional observers of controller progress.
type Hooks struct {
	OnDecision   func(c *Controller, d utility.Decision)
	OnEffectDone func(c *Controller, e *Effect)
}

// Deps are the collaborators an agent is built with. Catalog, Mover and
// Stats are required.
type Deps struct {
	Catalog  *utility.Catalog
	Mover    Mover
	Stats    StatStore
	Core     *emotion.Core
	Locator  Locator
	Animator Animator
	Display  Display
	Hooks    Hooks
}

// Controller runs one agent. It is not safe for concurrent use: the owner
// calls Tick, React and Engage from a single goroutine.
type Controller struct {
	cfg      Config
	id       string
	core     *emotion.Core
	stats    StatStore
	mover    Mover
	locator  Locator
	animator Animator
	display  Display
	hooks    Hooks
	runtime  *utility.Runtime
	engine   *utility.Engine
	baseline emotion.PAD

	state State
	now   time.Duration
	ticks uint64

	current   int
	pool      utility.Pool
	effect    *Effect
	executing bool
	last      utility.Decision

	triggered   bool
	triggeredAt time.Duration
	engaged     bool
}

// New builds a controller, failing fast with *ConfigurationError when a
// required collaborator is missing.
func New(cfg Config, deps Deps) (*Controller, error) {
	var missing []string
	if deps.Catalog == nil {
		missing = append(missing, "catalog")
	}
	if deps.Mover == nil {
		missing = append(missing, "mover")
	}
	if deps.Stats == nil {
		missing = append(missing, "stats")
	}
	if len(missing) > 0 {
		name := cfg.Name
		if name == "" {
			name = cfg.ID
		}
		return nil, &ConfigurationError{Agent: name, Missing: missing}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("agent %s: %w", cfg.Name, err)
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if cfg.Logf == nil {
		cfg.Logf = log.Printf
	}

	c := &Controller{
		cfg:      cfg,
		id:       cfg.ID,
		core:     deps.Core,
		stats:    deps.Stats,
		mover:    deps.Mover,
		locator:  deps.Locator,
		animator: deps.Animator,
		display:  deps.Display,
		hooks:    deps.Hooks,
		runtime:  utility.NewRuntime(deps.Catalog),
		current:  -1,
		state:    StateDecide,
	}
	if c.core == nil {
		c.core = emotion.NewCore(cfg.Emotion)
	}
	if c.animator == nil {
		c.animator = NopAnimator{}
	}
	if c.display == nil {
		c.display = NopDisplay{}
	}
	c.engine = utility.NewEngine(c.runtime, cfg.Profile)

	b := cfg.Profile.Baseline()
	c.baseline = emotion.PAD{P: b.P, A: b.A, D: b.D}
	c.core.Settle(c.baseline, 0.5)
	return c, nil
}

func (c *Controller) ID() string                     { return c.id }
func (c *Controller) Name() string                   { return c.cfg.Name }
func (c *Controller) State() State                   { return c.state }
func (c *Controller) Now() time.Duration             { return c.now }
func (c *Controller) Core() *emotion.Core            { return c.core }
func (c *Controller) Stats() StatStore               { return c.stats }
func (c *Controller) Profile() personality.Profile   { return c.cfg.Profile }
func (c *Controller) Baseline() emotion.PAD          { return c.baseline }
func (c *Controller) Runtime() *utility.Runtime      { return c.runtime }
func (c *Controller) Position() Vec2                 { return c.mover.Position() }
func (c *Controller) Engaged() bool                  { return c.engaged }
func (c *Controller) LastDecision() utility.Decision { return c.last }

// Current returns the ID of the action being pursued, if any.
func (c *Controller) Current() (string, bool) {
	if c.current < 0 {
		return "", false
	}
	return c.runtime.Catalog().At(c.current).ID, true
}

// TriggerPending reports whether a stimulus is waiting to be answered from
// the emotional pool.
func (c *Controller) TriggerPending() bool {
	return c.triggered && c.now-c.triggeredAt <= c.cfg.TriggerTimeout
}

// React feeds a stimulus to the emotional core. With AutoAct set the
// stimulus also becomes a pending trigger for the next decision.
func (c *Controller) React(action emotion.PlayerAction, intensity float64) emotion.Reaction {
	r := c.core.ApplyStimulus(action, intensity)
	if c.cfg.AutoAct {
		c.triggered = true
		c.triggeredAt = c.now
	}
	c.logf("[Agent %s] react %s", c.cfg.Name, r)
	return r
}

// Engage starts an externally triggered interaction. Before an effect has
// started (decide, move or idle) the current candidate is dropped and the
// agent switches to the active state; once executing, the trigger waits for
// the effect to finish.
// It reports whether the current behavior was preempted.
func (c *Controller) Engage() bool {
	c.triggered = true
	c.triggeredAt = c.now
	switch c.state {
	case StateDecide, StateMove, StateIdle:
		c.engine.Reset()
		if c.current >= 0 {
			c.mover.SetDestination(c.mover.Position())
			c.current = -1
		}
		c.engaged = true
		c.animator.SetFlag(FlagEngaged, true)
		c.state = StateActive
		c.logf("[Agent %s] engaged", c.cfg.Name)
		return true
	}
	return false
}

// Tick advances the agent by dt: stat decay, PAD drift toward the
// personality baseline and one state machine step.
func (c *Controller) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	c.now += dt
	c.ticks++
	c.stats.Decay(dt)
	c.core.Drift(c.baseline, c.cfg.DriftRate, dt)

	switch c.state {
	case StateDecide:
		c.decide()
	case StateMove:
		if c.arrived() {
			c.state = StateExecute
		}
	case StateExecute:
		c.execute(dt)
	case StateIdle, StateActive:
		c.state = StateDecide
	}

	if c.cfg.StatusEvery > 0 && c.ticks%uint64(c.cfg.StatusEvery) == 0 {
		c.display.ShowStatus(c.Status().String())
	}
}

func (c *Controller) decide() {
	pool := utility.PoolUtility
	if c.triggered {
		if c.TriggerPending() {
			pool = utility.PoolEmotional
		} else {
			c.triggered = false
			c.disengage()
		}
	}

	ctx := view{stats: c.stats, core: c.core}
	d, err := c.engine.Decide(c.runtime.Catalog().Pool(pool), ctx, c.now)
	if err != nil {
		if errors.Is(err, utility.ErrNoValidDecision) {
			c.logf("[Agent %s] no valid %s decision", c.cfg.Name, pool)
		}
		return
	}
	c.engine.Take()
	if pool == utility.PoolEmotional {
		c.triggered = false
	} else {
		c.disengage()
	}
	c.current = d.Index
	c.pool = pool
	c.last = d
	c.logf("[Agent %s] decide %s score=%.3f", c.cfg.Name, d.ID, d.Score)
	if c.hooks.OnDecision != nil {
		c.hooks.OnDecision(c, d)
	}

	c.mover.SetDestination(c.resolve(c.runtime.Slot(d.Index).Target))
	if c.arrived() {
		c.state = StateExecute
	} else {
		c.state = StateMove
	}
}

func (c *Controller) resolve(target string) Vec2 {
	if target == "" || c.locator == nil {
		return c.mover.Position()
	}
	if p, ok := c.locator.Locate(target); ok {
		return p
	}
	return c.mover.Position()
}

func (c *Controller) arrived() bool {
	return c.mover.IsArrived() || c.mover.RemainingDistance() <= c.cfg.StoppingDistance+ArrivalSlack
}

func (c *Controller) execute(dt time.Duration) {
	if !c.executing {
		c.executing = true
		def := c.runtime.Catalog().At(c.current)
		c.runtime.Arm(c.current, c.now)
		c.effect = newEffect(c.current, def)
		if def.Animation != "" {
			c.animator.Trigger(def.Animation)
		}
		c.effect.Start(c.stats)
		if !c.effect.Done() {
			c.animator.SetFlag(FlagBusy, true)
		}
	} else {
		c.effect.Advance(dt, c.stats)
	}
	if c.effect.Done() {
		c.finish()
	}
}

func (c *Controller) finish() {
	fx := c.effect
	c.animator.SetFlag(FlagBusy, false)
	c.logf("[Agent %s] done %s", c.cfg.Name, fx.ID)
	if c.hooks.OnEffectDone != nil {
		c.hooks.OnEffectDone(c, fx)
	}
	c.executing = false
	c.effect = nil
	c.current = -1
	if fx.Pool == utility.PoolEmotional {
		c.disengage()
		c.state = StateIdle
		return
	}
	c.state = StateDecide
}

// disengage ends an interaction; a no-op when none is running.
func (c *Controller) disengage() {
	if !c.engaged {
		return
	}
	c.engaged = false
	c.animator.SetFlag(FlagEngaged, false)
}

func (c *Controller) logf(format string, args ...any) {
	if c.cfg.Verbose {
		c.cfg.Logf(format, args...)
	}
}

// Status is a point-in-time view of the agent for displays and clients.
type Status struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Personality  string                `json:"personality"`
	State        State                 `json:"state"`
	Action       string                `json:"action,omitempty"`
	PAD          emotion.PAD           `json:"pad"`
	Emotion      emotion.Octant        `json:"emotion"`
	Triangle     relationship.Triangle `json:"triangle"`
	Relationship relationship.Type     `json:"relationship"`
	Stats        StatValues            `json:"stats"`
	Position     Vec2                  `json:"position"`
	ElapsedMs    int64                 `json:"elapsedMs"`
}

func (c *Controller) Status() Status {
	action, _ := c.Current()
	return Status{
		ID:           c.id,
		Name:         c.cfg.Name,
		Personality:  c.cfg.Profile.Code(),
		State:        c.state,
		Action:       action,
		PAD:          c.core.PAD(),
		Emotion:      c.core.Emotion(),
		Triangle:     c.core.Triangle(),
		Relationship: c.core.RelationshipType(),
		Stats:        c.stats.Values(),
		Position:     c.mover.Position(),
		ElapsedMs:    c.now.Milliseconds(),
	}
}

func (s Status) String() string {
	action := s.Action
	if action == "" {
		action = "-"
	}
	return fmt.Sprintf("%s [%s] %s %s | %s %s | %s I:%.2f P:%.2f C:%.2f | energy %.0f hunger %.0f money %.0f",
		s.Name, s.Personality, s.State, action,
		s.Emotion, s.PAD,
		s.Relationship, s.Triangle.Intimacy, s.Triangle.Passion, s.Triangle.Commitment,
		s.Stats.Energy, s.Stats.Hunger, s.Stats.Money)
}

// view adapts the agent's stats and core to utility.Context.
var _ utility.Context = view{}

type view struct {
	stats StatStore
	core  *emotion.Core
}

func (v view) Energy() float64                 { return v.stats.Energy() }
func (v view) Hunger() float64                 { return v.stats.Hunger() }
func (v view) Money() float64                  { return v.stats.Money() }
func (v view) Resources() int                  { return v.stats.Resources() }
func (v view) Intimacy() float64               { return v.stats.Intimacy() }
func (v view) Romantic() float64               { return v.stats.Romantic() }
func (v view) Belonging() float64              { return v.stats.Belonging() }
func (v view) PAD() emotion.PAD                { return v.core.PAD() }
func (v view) LastDelta() emotion.PAD          { return v.core.LastDelta() }
func (v view) LastIntent() emotion.Intent      { return v.core.LastIntent() }
func (v view) Triangle() relationship.Triangle { return v.core.Triangle() }
