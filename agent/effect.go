package agent

import (
	"fmt"
	"time"

	"npcsim/utility"
)

// EffectPhase is the life cycle of one executing action.
type EffectPhase byte

const (
	EffectPending EffectPhase = 0
	EffectRunning EffectPhase = 1
	EffectDone    EffectPhase = 2
)

var EffectPhaseDictionary = map[EffectPhase]string{
	EffectPending: "pending",
	EffectRunning: "running",
	EffectDone:    "done",
}

func (p EffectPhase) String() string {
	if s, ok := EffectPhaseDictionary[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", p)
}

// Effect is an in-flight action. Instant effects finish inside Start; timed
// ones count down on Advance and apply their stat change on expiry.
type Effect struct {
	Action    int
	ID        string
	Pool      utility.Pool
	Phase     EffectPhase
	Remaining time.Duration
	Duration  time.Duration

	delta StatDelta
}

func newEffect(index int, def *utility.Def) *Effect {
	return &Effect{
		Action:   index,
		ID:       def.ID,
		Pool:     def.Pool,
		Duration: def.Effect.Duration,
		delta:    deltaFor(def.Effect),
	}
}

// Start moves a pending effect to running, or straight to done when it has
// no duration. Calling Start twice is a no-op.
func (e *Effect) Start(stats StatStore) {
	if e.Phase != EffectPending {
		return
	}
	if e.Duration <= 0 {
		stats.Apply(e.delta)
		e.Phase = EffectDone
		return
	}
	e.Remaining = e.Duration
	e.Phase = EffectRunning
}

// Advance counts down a running effect and reports whether it is done.
func (e *Effect) Advance(dt time.Duration, stats StatStore) bool {
	if e.Phase != EffectRunning {
		return e.Phase == EffectDone
	}
	e.Remaining -= dt
	if e.Remaining > 0 {
		return false
	}
	e.Remaining = 0
	stats.Apply(e.delta)
	e.Phase = EffectDone
	return true
}

func (e *Effect) Done() bool { return e.Phase == EffectDone }

func deltaFor(fx utility.Effect) StatDelta {
	return StatDelta{
		Energy:        fx.Energy,
		Hunger:        fx.Hunger,
		Money:         fx.Money,
		Resources:     fx.Resources,
		SellResources: fx.SellResources,
		Intimacy:      fx.Intimacy,
		Romantic:      fx.Romantic,
		Belonging:     fx.Belonging,
	}
}
