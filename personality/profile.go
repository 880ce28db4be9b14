// Package personality models the five binary trait axes of an agent and the
// bias multipliers they apply to action scores.
package personality

import (
	"fmt"
	"math"
	"strings"
)

// Axis is one of the five trait dimensions.
type Axis byte

const (
	AxisEnergy   Axis = 0 // Extraverted / Introverted
	AxisMind     Axis = 1 // Intuitive / Observant
	AxisNature   Axis = 2 // Feeling / Thinking
	AxisTactics  Axis = 3 // Judging / Prospecting
	AxisIdentity Axis = 4 // Assertive / Turbulent
)

var AxisDictionary = map[Axis]string{
	AxisEnergy:   "energy",
	AxisMind:     "mind",
	AxisNature:   "nature",
	AxisTactics:  "tactics",
	AxisIdentity: "identity",
}

// Axes lists every axis in declaration order.
var Axes = []Axis{AxisEnergy, AxisMind, AxisNature, AxisTactics, AxisIdentity}

func (a Axis) String() string {
	if s, ok := AxisDictionary[a]; ok {
		return s
	}
	return fmt.Sprintf("axis(%d)", a)
}

// ParseAxis accepts the lower-case axis name.
func ParseAxis(s string) (Axis, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range AxisDictionary {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown personality axis %q", s)
}

func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Profile holds one boolean per axis; true is the positive side
// (E, N, F, J, A).
type Profile struct {
	Extraverted bool `json:"extraverted" yaml:"extraverted"`
	Intuitive   bool `json:"intuitive" yaml:"intuitive"`
	Feeling     bool `json:"feeling" yaml:"feeling"`
	Judging     bool `json:"judging" yaml:"judging"`
	Assertive   bool `json:"assertive" yaml:"assertive"`
}

// Positive reports whether the profile sits on the positive side of a.
func (p Profile) Positive(a Axis) bool {
	switch a {
	case AxisEnergy:
		return p.Extraverted
	case AxisMind:
		return p.Intuitive
	case AxisNature:
		return p.Feeling
	case AxisTactics:
		return p.Judging
	case AxisIdentity:
		return p.Assertive
	}
	return false
}

// Code renders the profile as a type code such as "ENFP-A".
func (p Profile) Code() string {
	var b strings.Builder
	b.WriteByte(pick(p.Extraverted, 'E', 'I'))
	b.WriteByte(pick(p.Intuitive, 'N', 'S'))
	b.WriteByte(pick(p.Feeling, 'F', 'T'))
	b.WriteByte(pick(p.Judging, 'J', 'P'))
	b.WriteByte('-')
	b.WriteByte(pick(p.Assertive, 'A', 'T'))
	return b.String()
}

func (p Profile) String() string { return p.Code() }

// ParseCode parses "ENFP-A" style codes. The identity suffix is optional and
// defaults to Assertive.
func ParseCode(code string) (Profile, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	base, suffix, hasSuffix := strings.Cut(c, "-")
	if len(base) != 4 {
		return Profile{}, fmt.Errorf("invalid personality code %q", code)
	}
	var p Profile
	var err error
	if p.Extraverted, err = letter(base[0], 'E', 'I'); err != nil {
		return Profile{}, fmt.Errorf("personality code %q: %w", code, err)
	}
	if p.Intuitive, err = letter(base[1], 'N', 'S'); err != nil {
		return Profile{}, fmt.Errorf("personality code %q: %w", code, err)
	}
	if p.Feeling, err = letter(base[2], 'F', 'T'); err != nil {
		return Profile{}, fmt.Errorf("personality code %q: %w", code, err)
	}
	if p.Judging, err = letter(base[3], 'J', 'P'); err != nil {
		return Profile{}, fmt.Errorf("personality code %q: %w", code, err)
	}
	p.Assertive = true
	if hasSuffix {
		if len(suffix) != 1 {
			return Profile{}, fmt.Errorf("invalid identity suffix in %q", code)
		}
		if p.Assertive, err = letter(suffix[0], 'A', 'T'); err != nil {
			return Profile{}, fmt.Errorf("personality code %q: %w", code, err)
		}
	}
	return p, nil
}

// Baseline is the resting PAD point the profile drifts toward.
type Baseline struct {
	P float64
	A float64
	D float64
}

// Baseline derives the resting PAD point from the trait axes.
func (p Profile) Baseline() Baseline {
	b := Baseline{P: 0.5, A: 0.5, D: 0.5}
	if p.Extraverted {
		b.P += 0.08
		b.A += 0.10
	} else {
		b.A -= 0.05
	}
	if p.Intuitive {
		b.A += 0.05
	}
	if p.Feeling {
		b.P += 0.06
		b.D -= 0.05
	} else {
		b.D += 0.03
	}
	if p.Judging {
		b.A -= 0.05
		b.D += 0.05
	}
	if p.Assertive {
		b.P += 0.04
		b.D += 0.12
	} else {
		b.P -= 0.04
		b.A += 0.05
		b.D -= 0.06
	}
	b.P = clamp01(b.P)
	b.A = clamp01(b.A)
	b.D = clamp01(b.D)
	return b
}

// Compatibility scores two profiles in [0,1]. Shared values and tactics
// count most; complementary energy and mind add spark.
func Compatibility(a, b Profile) float64 {
	score := 0.0
	if a.Feeling == b.Feeling {
		score += 0.25
	}
	if a.Judging == b.Judging {
		score += 0.25
	}
	if a.Extraverted != b.Extraverted {
		score += 0.2
	}
	if a.Intuitive != b.Intuitive {
		score += 0.2
	}
	if a.Assertive == b.Assertive {
		score += 0.1
	}
	return clamp01(score)
}

func pick(v bool, pos, neg byte) byte {
	if v {
		return pos
	}
	return neg
}

func letter(c, pos, neg byte) (bool, error) {
	switch c {
	case pos:
		return true, nil
	case neg:
		return false, nil
	}
	return false, fmt.Errorf("expected %c or %c, got %c", pos, neg, c)
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
