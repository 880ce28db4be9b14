package agent

import (
	"math"
	"time"

	"npcsim/emotion"
)

// DecayInterval is how much sim time passes between hunger/energy decay
// steps.
const DecayInterval = 5 * time.Second

// StatValues is a plain copy of every stat.
type StatValues struct {
	Energy    float64 `json:"energy"`
	Hunger    float64 `json:"hunger"`
	Money     float64 `json:"money"`
	Resources int     `json:"resources"`
	Intimacy  float64 `json:"intimacy"`
	Romantic  float64 `json:"romantic"`
	Belonging float64 `json:"belonging"`
}

// DefaultStatValues is a hungry agent with half its energy and some savings.
func DefaultStatValues() StatValues {
	return StatValues{Energy: 50, Hunger: 90, Money: 500}
}

// StatDelta is a relative change to apply to a StatStore.
type StatDelta struct {
	Energy    float64
	Hunger    float64
	Money     float64
	Resources int

	// SellResources converts every carried resource into this much money
	// each and empties the inventory.
	SellResources float64

	Intimacy  float64
	Romantic  float64
	Belonging float64
}

// StatStore holds the numeric needs that considerations read and effects
// mutate.
type StatStore interface {
	Energy() float64
	Hunger() float64
	Money() float64
	Resources() int
	Intimacy() float64
	Romantic() float64
	Belonging() float64

	Apply(d StatDelta)
	Decay(dt time.Duration)
	Values() StatValues
}

// PADSink receives the small PAD nudges that stat changes cause.
// *emotion.Core satisfies it.
type PADSink interface {
	Adjust(d emotion.PAD)
}

// Stats is the default StatStore. Every write clamps the field and, when a
// sink is attached, nudges PAD from the field's new level.
type Stats struct {
	v     StatValues
	sink  PADSink
	decay time.Duration
}

// NewStats clamps initial without nudging the sink.
func NewStats(initial StatValues, sink PADSink) *Stats {
	s := &Stats{sink: sink}
	s.v = StatValues{
		Energy:    clampRange(initial.Energy, 0, 100),
		Hunger:    clampRange(initial.Hunger, 0, 100),
		Money:     math.Max(0, finite(initial.Money)),
		Resources: max(0, initial.Resources),
		Intimacy:  clamp01(initial.Intimacy),
		Romantic:  clamp01(initial.Romantic),
		Belonging: clamp01(initial.Belonging),
	}
	return s
}

func (s *Stats) Energy() float64    { return s.v.Energy }
func (s *Stats) Hunger() float64    { return s.v.Hunger }
func (s *Stats) Money() float64     { return s.v.Money }
func (s *Stats) Resources() int     { return s.v.Resources }
func (s *Stats) Intimacy() float64  { return s.v.Intimacy }
func (s *Stats) Romantic() float64  { return s.v.Romantic }
func (s *Stats) Belonging() float64 { return s.v.Belonging }
func (s *Stats) Values() StatValues { return s.v }

func (s *Stats) SetEnergy(v float64) {
	s.v.Energy = clampRange(v, 0, 100)
	r := s.v.Energy / 100
	s.nudge(emotion.PAD{P: (r - 0.5) * 0.1, A: (r - 0.3) * 0.2})
}

func (s *Stats) SetHunger(v float64) {
	s.v.Hunger = clampRange(v, 0, 100)
	h := s.v.Hunger / 100
	s.nudge(emotion.PAD{P: -h * 0.15, A: h * 0.1, D: -h * 0.05})
}

func (s *Stats) SetMoney(v float64) {
	s.v.Money = math.Max(0, finite(v))
	m := clamp01(s.v.Money / 1000)
	s.nudge(emotion.PAD{P: (m - 0.5) * 0.08, D: (m - 0.3) * 0.12})
}

// SetResources has no emotional weight.
func (s *Stats) SetResources(n int) { s.v.Resources = max(0, n) }

func (s *Stats) SetIntimacy(v float64) {
	s.v.Intimacy = clamp01(v)
	i := s.v.Intimacy
	s.nudge(emotion.PAD{P: i * 0.1, A: i * 0.05, D: i * 0.03})
}

func (s *Stats) SetRomantic(v float64) {
	s.v.Romantic = clamp01(v)
	r := s.v.Romantic
	s.nudge(emotion.PAD{P: r * 0.12, A: r * 0.15, D: r * 0.02})
}

func (s *Stats) SetBelonging(v float64) {
	s.v.Belonging = clamp01(v)
	b := s.v.Belonging
	s.nudge(emotion.PAD{P: b * 0.08, D: b * 0.06})
}

// Apply writes every non-zero field of d through its setter.
func (s *Stats) Apply(d StatDelta) {
	if d.Energy != 0 {
		s.SetEnergy(s.v.Energy + d.Energy)
	}
	if d.Hunger != 0 {
		s.SetHunger(s.v.Hunger + d.Hunger)
	}
	if d.SellResources != 0 && s.v.Resources > 0 {
		earned := d.SellResources * float64(s.v.Resources)
		s.SetResources(0)
		s.SetMoney(s.v.Money + earned)
	}
	if d.Money != 0 {
		s.SetMoney(s.v.Money + d.Money)
	}
	if d.Resources != 0 {
		s.SetResources(s.v.Resources + d.Resources)
	}
	if d.Intimacy != 0 {
		s.SetIntimacy(s.v.Intimacy + d.Intimacy)
	}
	if d.Romantic != 0 {
		s.SetRomantic(s.v.Romantic + d.Romantic)
	}
	if d.Belonging != 0 {
		s.SetBelonging(s.v.Belonging + d.Belonging)
	}
}

// Decay accumulates sim time and, for every DecayInterval elapsed, raises
// hunger by 1 and drains energy by 1.
func (s *Stats) Decay(dt time.Duration) {
	if dt <= 0 {
		return
	}
	s.decay += dt
	for s.decay >= DecayInterval {
		s.decay -= DecayInterval
		s.SetHunger(s.v.Hunger + 1)
		s.SetEnergy(s.v.Energy - 1)
	}
}

func (s *Stats) nudge(d emotion.PAD) {
	if s.sink != nil {
		s.sink.Adjust(d)
	}
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clampRange(v, 0, 1) }

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
