// Package curve holds the response curves used by considerations and actions
// to reshape a normalized input into a normalized output.
package curve

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Curve maps an input in [0,1] to an output in [0,1].
// Implementations clamp both sides, so callers may pass raw values.
type Curve interface {
	Evaluate(x float64) float64
	String() string
}

// Identity is the default curve for considerations and actions.
var Identity Curve = Linear{Slope: 1}

type Linear struct {
	Slope     float64
	Intercept float64
}

func (c Linear) Evaluate(x float64) float64 {
	return clamp01(c.Slope*clamp01(x) + c.Intercept)
}

func (c Linear) String() string {
	if c.Slope == 1 && c.Intercept == 0 {
		return "linear"
	}
	return fmt.Sprintf("linear(%s, %s)", num(c.Slope), num(c.Intercept))
}

// Power is x^Exponent; 2 is the usual "quadratic" ease-in.
type Power struct {
	Exponent float64
}

func (c Power) Evaluate(x float64) float64 {
	return clamp01(math.Pow(clamp01(x), c.Exponent))
}

func (c Power) String() string { return fmt.Sprintf("power(%s)", num(c.Exponent)) }

type Logistic struct {
	Steepness float64
	Midpoint  float64
}

func (c Logistic) Evaluate(x float64) float64 {
	return clamp01(1 / (1 + math.Exp(-c.Steepness*(clamp01(x)-c.Midpoint))))
}

func (c Logistic) String() string {
	return fmt.Sprintf("logistic(%s, %s)", num(c.Steepness), num(c.Midpoint))
}

// Inverse mirrors Inner: 1 - Inner(x). A nil Inner mirrors the identity.
type Inverse struct {
	Inner Curve
}

func (c Inverse) Evaluate(x float64) float64 {
	inner := c.Inner
	if inner == nil {
		inner = Identity
	}
	return clamp01(1 - inner.Evaluate(x))
}

func (c Inverse) String() string {
	if c.Inner == nil {
		return "inverse"
	}
	return "inverse(" + c.Inner.String() + ")"
}

type Step struct {
	Threshold float64
}

func (c Step) Evaluate(x float64) float64 {
	if clamp01(x) >= c.Threshold {
		return 1
	}
	return 0
}

func (c Step) String() string { return fmt.Sprintf("step(%s)", num(c.Threshold)) }

type Const struct {
	Value float64
}

func (c Const) Evaluate(float64) float64 { return clamp01(c.Value) }

func (c Const) String() string { return fmt.Sprintf("const(%s)", num(c.Value)) }

type Point struct {
	X float64
	Y float64
}

// Keyframes interpolates linearly between points sorted by X and holds the
// end values outside the covered range.
type Keyframes []Point

// NewKeyframes copies and sorts pts by X.
func NewKeyframes(pts ...Point) Keyframes {
	out := append(Keyframes(nil), pts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

func (k Keyframes) Evaluate(x float64) float64 {
	x = clamp01(x)
	if len(k) == 0 {
		return x
	}
	if x <= k[0].X {
		return clamp01(k[0].Y)
	}
	last := k[len(k)-1]
	if x >= last.X {
		return clamp01(last.Y)
	}
	for i := 1; i < len(k); i++ {
		a, b := k[i-1], k[i]
		if x > b.X {
			continue
		}
		span := b.X - a.X
		if span <= 0 {
			return clamp01(b.Y)
		}
		t := (x - a.X) / span
		return clamp01(a.Y + (b.Y-a.Y)*t)
	}
	return clamp01(last.Y)
}

func (k Keyframes) String() string {
	parts := make([]string, 0, len(k))
	for _, p := range k {
		parts = append(parts, num(p.X)+":"+num(p.Y))
	}
	return "keys(" + strings.Join(parts, ", ") + ")"
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

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
