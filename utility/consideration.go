package utility

import (
	"fmt"
	"math"
	"strings"

	"npcsim/curve"
	"npcsim/emotion"
)

// Kind selects the raw signal a consideration reads.
type Kind byte

const (
	KindConstant    Kind = 0
	KindEnergy      Kind = 1
	KindHunger      Kind = 2
	KindMoney       Kind = 3
	KindResources   Kind = 4
	KindIntimacy    Kind = 5
	KindRomantic    Kind = 6
	KindBelonging   Kind = 7
	KindPADAxis     Kind = 8
	KindPADDelta    Kind = 9
	KindIntentMatch Kind = 10
	KindTriangle    Kind = 11
)

var KindDictionary = map[Kind]string{
	KindConstant:    "constant",
	KindEnergy:      "energy",
	KindHunger:      "hunger",
	KindMoney:       "money",
	KindResources:   "resources",
	KindIntimacy:    "intimacy",
	KindRomantic:    "romantic",
	KindBelonging:   "belonging",
	KindPADAxis:     "pad_axis",
	KindPADDelta:    "pad_delta",
	KindIntentMatch: "intent_match",
	KindTriangle:    "triangle",
}

func (k Kind) String() string {
	if s, ok := KindDictionary[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", k)
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range KindDictionary {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown consideration kind %q", s)
}

// Axis names a PAD or triangle component.
type Axis byte

const (
	AxisPleasure   Axis = 0
	AxisArousal    Axis = 1
	AxisDominance  Axis = 2
	AxisIntimacy   Axis = 3
	AxisPassion    Axis = 4
	AxisCommitment Axis = 5
)

var AxisDictionary = map[Axis]string{
	AxisPleasure:   "pleasure",
	AxisArousal:    "arousal",
	AxisDominance:  "dominance",
	AxisIntimacy:   "intimacy",
	AxisPassion:    "passion",
	AxisCommitment: "commitment",
}

func (a Axis) String() string {
	if s, ok := AxisDictionary[a]; ok {
		return s
	}
	return fmt.Sprintf("axis(%d)", a)
}

func (a Axis) isPAD() bool { return a <= AxisDominance }

// ParseAxis accepts full names or the PAD letters p, a and d.
func ParseAxis(s string) (Axis, error) {
	return ParseAxisFor(KindPADAxis, s)
}

// ParseAxisFor accepts full names or a single letter read in the axis set of
// kind: i, p and c for triangle, p, a and d otherwise. So "p" is passion on a
// triangle consideration and pleasure everywhere else.
func ParseAxisFor(kind Kind, s string) (Axis, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 {
		letters := map[string]Axis{"p": AxisPleasure, "a": AxisArousal, "d": AxisDominance}
		if kind == KindTriangle {
			letters = map[string]Axis{"i": AxisIntimacy, "p": AxisPassion, "c": AxisCommitment}
		}
		if a, ok := letters[s]; ok {
			return a, nil
		}
		return 0, fmt.Errorf("unknown %s axis %q", kind, s)
	}
	for a, name := range AxisDictionary {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

const (
	DefaultDeltaRange = 0.35
	DefaultOnMatch    = 1.0
	DefaultOnMismatch = 0.2
)

// Consideration is one normalized input to an action's score. It is a plain
// value: scoring never mutates it.
type Consideration struct {
	Name   string
	Kind   Kind
	Axis   Axis
	Invert bool

	// intent_match
	Desired    emotion.Intent
	OnMatch    float64
	OnMismatch float64

	// pad_delta; 0 means DefaultDeltaRange
	Range float64

	// constant
	Value float64

	// nil means identity
	Curve curve.Curve
}

// Stat reads one of the stat-backed kinds.
func Stat(kind Kind, c curve.Curve) Consideration {
	return Consideration{Name: kind.String(), Kind: kind, Curve: c}
}

// PADAxis reads the current value of one PAD axis.
func PADAxis(name string, axis Axis, invert bool, c curve.Curve) Consideration {
	return Consideration{Name: name, Kind: KindPADAxis, Axis: axis, Invert: invert, Curve: c}
}

// PADDelta reads the last applied delta on one axis, mapped from
// [-Range, Range] to [0,1].
func PADDelta(name string, axis Axis, invert bool, c curve.Curve) Consideration {
	return Consideration{Name: name, Kind: KindPADDelta, Axis: axis, Invert: invert, Range: DefaultDeltaRange, Curve: c}
}

// IntentMatch scores 1 when the last stimulus carried the desired intent and
// 0.2 otherwise.
func IntentMatch(name string, desired emotion.Intent) Consideration {
	return Consideration{
		Name:       name,
		Kind:       KindIntentMatch,
		Desired:    desired,
		OnMatch:    DefaultOnMatch,
		OnMismatch: DefaultOnMismatch,
	}
}

// TriangleAxis reads one relationship axis.
func TriangleAxis(name string, axis Axis, invert bool, c curve.Curve) Consideration {
	return Consideration{Name: name, Kind: KindTriangle, Axis: axis, Invert: invert, Curve: c}
}

// Constant always yields v through the curve.
func Constant(name string, v float64) Consideration {
	return Consideration{Name: name, Kind: KindConstant, Value: v}
}

// Score returns the consideration's value in [0,1]. It never panics; any
// non-finite input degrades to 0.
func (c Consideration) Score(ctx Context) float64 {
	x := clamp01(c.raw(ctx))
	if c.Invert && c.Kind != KindIntentMatch && c.Kind != KindPADDelta {
		x = 1 - x
	}
	if c.Curve == nil {
		return x
	}
	return clamp01(c.Curve.Evaluate(x))
}

func (c Consideration) raw(ctx Context) float64 {
	switch c.Kind {
	case KindConstant:
		return c.Value
	case KindEnergy:
		return ctx.Energy() / 100
	case KindHunger:
		return ctx.Hunger() / 100
	case KindMoney:
		return ctx.Money() / 1000
	case KindResources:
		return math.Min(float64(ctx.Resources()), 1)
	case KindIntimacy:
		return ctx.Intimacy()
	case KindRomantic:
		return ctx.Romantic()
	case KindBelonging:
		return ctx.Belonging()
	case KindPADAxis:
		return padAxis(ctx.PAD(), c.Axis)
	case KindPADDelta:
		r := c.Range
		if r <= 0 {
			r = DefaultDeltaRange
		}
		v := padAxis(ctx.LastDelta(), c.Axis)
		v = math.Max(-r, math.Min(r, v))
		z := 0.5 + v/(2*r)
		if c.Invert {
			z = 1 - z
		}
		return z
	case KindIntentMatch:
		if ctx.LastIntent() == c.Desired {
			return c.OnMatch
		}
		return c.OnMismatch
	case KindTriangle:
		t := ctx.Triangle()
		switch c.Axis {
		case AxisIntimacy:
			return t.Intimacy
		case AxisPassion:
			return t.Passion
		case AxisCommitment:
			return t.Commitment
		}
	}
	return 0
}

func padAxis(v emotion.PAD, a Axis) float64 {
	switch a {
	case AxisPleasure:
		return v.P
	case AxisArousal:
		return v.A
	case AxisDominance:
		return v.D
	}
	return 0
}

func (c Consideration) validate() error {
	if _, ok := KindDictionary[c.Kind]; !ok {
		return fmt.Errorf("consideration %q: unknown kind %d", c.Name, c.Kind)
	}
	switch c.Kind {
	case KindPADAxis, KindPADDelta:
		if !c.Axis.isPAD() {
			return fmt.Errorf("consideration %q: %s needs a PAD axis, got %s", c.Name, c.Kind, c.Axis)
		}
	case KindTriangle:
		if c.Axis.isPAD() {
			return fmt.Errorf("consideration %q: triangle needs a relationship axis, got %s", c.Name, c.Axis)
		}
	}
	if c.Range < 0 {
		return fmt.Errorf("consideration %q: range must be >= 0", c.Name)
	}
	return nil
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
