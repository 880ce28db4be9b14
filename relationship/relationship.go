// Package relationship implements the Intimacy/Passion/Commitment triangle,
// its discrete classification and the amplifier that scales emotional deltas
// by relationship strength.
package relationship

import (
	"fmt"
	"math"
)

// Type is the derived relationship class. Values are ordered by rank.
type Type byte

const (
	TypeDislike      Type = 0
	TypeStranger     Type = 1
	TypeAcquaintance Type = 2
	TypeFriend       Type = 3
	TypeCloseFriend  Type = 4
	TypeCrush        Type = 5
	TypePartner      Type = 6
)

var TypeDictionary = map[Type]string{
	TypeDislike:      "dislike",
	TypeStranger:     "stranger",
	TypeAcquaintance: "acquaintance",
	TypeFriend:       "friend",
	TypeCloseFriend:  "close_friend",
	TypeCrush:        "crush",
	TypePartner:      "partner",
}

var typeDescriptions = map[Type]string{
	TypeDislike:      "Negative feelings, avoids contact",
	TypeStranger:     "No significant connection",
	TypeAcquaintance: "Knows each other casually",
	TypeFriend:       "Trusting friendship",
	TypeCloseFriend:  "Deep, committed friendship",
	TypeCrush:        "Romantic interest, still uncertain",
	TypePartner:      "Full romantic partnership",
}

func (t Type) String() string {
	if s, ok := TypeDictionary[t]; ok {
		return s
	}
	return fmt.Sprintf("type(%d)", t)
}

// Rank orders types for transition magnitudes: Dislike is -1, Partner 5.
func (t Type) Rank() int { return int(t) - 1 }

// Describe returns a short human description of the type.
func (t Type) Describe() string { return typeDescriptions[t] }

// ParseType accepts the snake_case type name.
func ParseType(s string) (Type, error) {
	for t, name := range TypeDictionary {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown relationship type %q", s)
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

const (
	LowThreshold  = 0.3
	HighThreshold = 0.7
)

// Triangle is the relationship strength, every axis in [0,1].
type Triangle struct {
	Intimacy   float64 `json:"intimacy"`
	Passion    float64 `json:"passion"`
	Commitment float64 `json:"commitment"`
}

func (t Triangle) clamped() Triangle {
	return Triangle{
		Intimacy:   clamp01(t.Intimacy),
		Passion:    clamp01(t.Passion),
		Commitment: clamp01(t.Commitment),
	}
}

// Scale multiplies every axis by k.
func (t Triangle) Scale(k float64) Triangle {
	return Triangle{Intimacy: t.Intimacy * k, Passion: t.Passion * k, Commitment: t.Commitment * k}
}

// Classify applies the threshold rules in priority order.
func Classify(t Triangle) Type {
	iHigh, pHigh, cHigh := t.Intimacy >= HighThreshold, t.Passion >= HighThreshold, t.Commitment >= HighThreshold
	iLow, pLow, cLow := t.Intimacy <= LowThreshold, t.Passion <= LowThreshold, t.Commitment <= LowThreshold

	switch {
	case iHigh && pHigh && cHigh:
		return TypePartner
	case iHigh && cHigh && !pHigh:
		return TypeCloseFriend
	case iHigh && !pLow && !cLow:
		return TypeFriend
	case pHigh && !iLow && !cLow:
		return TypeCrush
	case iLow && pLow && cLow:
		return TypeDislike
	default:
		return TypeStranger
	}
}

// Delta is a PAD-shaped vector emitted on type transitions. It mirrors
// emotion.PAD without importing it.
type Delta struct {
	P float64
	A float64
	D float64
}

// IsZero reports whether the delta has no effect.
func (d Delta) IsZero() bool { return d.P == 0 && d.A == 0 && d.D == 0 }

// TransitionDelta is the one-time PAD nudge for moving from one type to
// another; zero when the type is unchanged.
func TransitionDelta(from, to Type) Delta {
	diff := to.Rank() - from.Rank()
	if diff == 0 {
		return Delta{}
	}
	k := math.Abs(float64(diff)) * 0.1
	if diff > 0 {
		return Delta{P: 0.15 * k, A: 0.10 * k, D: 0.08 * k}
	}
	return Delta{P: -0.20 * k, A: 0.15 * k, D: -0.10 * k}
}

// Transition records a type change produced by State.Apply.
type Transition struct {
	From  Type
	To    Type
	Delta Delta
}

// State owns one triangle and its derived type.
type State struct {
	tri  Triangle
	kind Type
}

// NewState clamps the initial triangle and classifies it.
func NewState(initial Triangle) *State {
	tri := initial.clamped()
	return &State{tri: tri, kind: Classify(tri)}
}

func (s *State) Triangle() Triangle { return s.tri }
func (s *State) Type() Type         { return s.kind }

// Apply adds delta, clamps, reclassifies, and reports a transition when the
// type changed.
func (s *State) Apply(delta Triangle) (Transition, bool) {
	s.tri = Triangle{
		Intimacy:   s.tri.Intimacy + finite(delta.Intimacy),
		Passion:    s.tri.Passion + finite(delta.Passion),
		Commitment: s.tri.Commitment + finite(delta.Commitment),
	}.clamped()

	prev := s.kind
	s.kind = Classify(s.tri)
	if s.kind == prev {
		return Transition{}, false
	}
	return Transition{From: prev, To: s.kind, Delta: TransitionDelta(prev, s.kind)}, true
}

// Describe renders the state for status displays.
func (s *State) Describe() string {
	return fmt.Sprintf("%s (I:%.2f P:%.2f C:%.2f) %s",
		s.kind, s.tri.Intimacy, s.tri.Passion, s.tri.Commitment, s.kind.Describe())
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
