package emotion

import (
	"fmt"
	"math"

	"npcsim/relationship"
)

// PAD is a Pleasure-Arousal-Dominance point or delta. As a state every axis
// lives in [0,1] with 0.5 as the neutral midpoint.
type PAD struct {
	P float64 `json:"p"`
	A float64 `json:"a"`
	D float64 `json:"d"`
}

// Neutral is the midpoint state.
var Neutral = PAD{P: 0.5, A: 0.5, D: 0.5}

func (v PAD) Add(o PAD) PAD { return PAD{P: v.P + o.P, A: v.A + o.A, D: v.D + o.D} }

func (v PAD) Scale(k float64) PAD { return PAD{P: v.P * k, A: v.A * k, D: v.D * k} }

// Clamp bounds every axis to [0,1]; NaN becomes 0.
func (v PAD) Clamp() PAD { return PAD{P: clamp01(v.P), A: clamp01(v.A), D: clamp01(v.D)} }

// Lerp moves v toward target by t in [0,1].
func (v PAD) Lerp(target PAD, t float64) PAD {
	t = clamp01(t)
	return PAD{
		P: v.P + (target.P-v.P)*t,
		A: v.A + (target.A-v.A)*t,
		D: v.D + (target.D-v.D)*t,
	}
}

// Magnitude is the euclidean length, used for deltas.
func (v PAD) Magnitude() float64 { return math.Sqrt(v.P*v.P + v.A*v.A + v.D*v.D) }

func (v PAD) String() string { return fmt.Sprintf("P:%.2f A:%.2f D:%.2f", v.P, v.A, v.D) }

func (v PAD) finite() PAD { return PAD{P: finite(v.P), A: finite(v.A), D: finite(v.D)} }

func fromDelta(d relationship.Delta) PAD { return PAD{P: d.P, A: d.A, D: d.D} }

func (v PAD) toDelta() relationship.Delta { return relationship.Delta{P: v.P, A: v.A, D: v.D} }

// Octant is the discrete emotion label of a PAD point.
type Octant byte

// Bits are P<<2 | A<<1 | D, each set when the axis is at or above 0.5.
const (
	OctantSad         Octant = 0
	OctantResigned    Octant = 1
	OctantAnxious     Octant = 2
	OctantAngry       Octant = 3
	OctantTender      Octant = 4
	OctantProudSecure Octant = 5
	OctantAwe         Octant = 6
	OctantJoy         Octant = 7
)

var OctantDictionary = map[Octant]string{
	OctantSad:         "sad",
	OctantResigned:    "resigned",
	OctantAnxious:     "anxious",
	OctantAngry:       "angry",
	OctantTender:      "tender",
	OctantProudSecure: "proud_secure",
	OctantAwe:         "awe",
	OctantJoy:         "joy",
}

func (o Octant) String() string {
	if s, ok := OctantDictionary[o]; ok {
		return s
	}
	return fmt.Sprintf("octant(%d)", o)
}

// Classify maps a PAD point to its octant.
func Classify(v PAD) Octant {
	var o Octant
	if v.P >= 0.5 {
		o |= 4
	}
	if v.A >= 0.5 {
		o |= 2
	}
	if v.D >= 0.5 {
		o |= 1
	}
	return o
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

// ParseOctant accepts the lower-case octant name.
func ParseOctant(s string) (Octant, error) {
	for o, name := range OctantDictionary {
		if name == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown emotion %q", s)
}

func (o Octant) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Octant) UnmarshalText(b []byte) error {
	v, err := ParseOctant(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
