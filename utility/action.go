package utility

import (
	"fmt"
	"math"
	"strings"
	"time"

	"npcsim/curve"
	"npcsim/personality"
)

// Pool separates autonomous actions from emotional responses.
type Pool byte

const (
	PoolUtility   Pool = 0
	PoolEmotional Pool = 1
)

var PoolDictionary = map[Pool]string{
	PoolUtility:   "utility",
	PoolEmotional: "emotional",
}

func (p Pool) String() string {
	if s, ok := PoolDictionary[p]; ok {
		return s
	}
	return fmt.Sprintf("pool(%d)", p)
}

func ParsePool(s string) (Pool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range PoolDictionary {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown action pool %q", s)
}

// Effect is what executing an action does to the agent's stats. A zero
// Duration applies immediately; otherwise the change lands when the timer
// expires.
type Effect struct {
	Duration time.Duration

	Energy    float64
	Hunger    float64
	Money     float64
	Resources int

	// SellResources converts every carried resource into this much money and
	// empties the inventory.
	SellResources float64

	Intimacy  float64
	Romantic  float64
	Belonging float64
}

// IsZero reports whether the effect changes no stat.
func (e Effect) IsZero() bool {
	return e.Energy == 0 && e.Hunger == 0 && e.Money == 0 && e.Resources == 0 &&
		e.SellResources == 0 && e.Intimacy == 0 && e.Romantic == 0 && e.Belonging == 0
}

// Def is an immutable action definition shared by every agent using the
// catalog. Mutable per-agent state lives in Slot.
type Def struct {
	ID             string
	Name           string
	Pool           Pool
	Considerations []Consideration
	Weight         float64
	Cooldown       time.Duration

	// Curve shapes the combined consideration score; nil means identity.
	Curve curve.Curve

	// Target is a named location, or empty for "where the agent stands".
	Target    string
	Effect    Effect
	Animation string

	Preset personality.Preset
	Bias   personality.BiasTable
}

// BiasTable returns the explicit entries, or the preset's when none are set.
func (d *Def) BiasTable() personality.BiasTable {
	return personality.Resolve(d.Bias, d.Preset)
}

func (d *Def) validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return &DefinitionError{ID: d.ID, Reason: "empty id"}
	}
	if _, ok := PoolDictionary[d.Pool]; !ok {
		return &DefinitionError{ID: d.ID, Reason: fmt.Sprintf("unknown pool %d", d.Pool)}
	}
	if d.Weight < 0 || math.IsNaN(d.Weight) {
		return &DefinitionError{ID: d.ID, Reason: "weight must be >= 0"}
	}
	if d.Cooldown < 0 || d.Effect.Duration < 0 {
		return &DefinitionError{ID: d.ID, Reason: "durations must be >= 0"}
	}
	for _, c := range d.Considerations {
		if err := c.validate(); err != nil {
			return &DefinitionError{ID: d.ID, Reason: err.Error()}
		}
	}
	return nil
}

// Score runs the full scoring rule for d: cooldown gate, empty-list
// fallback, product with veto, makeup, curve and weight.
func Score(d *Def, ctx Context, cooldownUntil, now time.Duration) float64 {
	if now < cooldownUntil {
		return 0
	}
	n := len(d.Considerations)
	if n == 0 {
		return clamp01(0.5 * d.Weight)
	}
	product := 1.0
	for _, c := range d.Considerations {
		product *= c.Score(ctx)
		if product <= 0 {
			return 0
		}
	}
	combined := Makeup(product, n)
	shaped := clamp01(combined)
	if d.Curve != nil {
		shaped = d.Curve.Evaluate(shaped)
	}
	return clamp01(shaped * d.Weight)
}

// Makeup compensates a product of n factors for the shrinkage that
// multiplying many values below 1 causes. For n = 1 it returns product
// unchanged.
func Makeup(product float64, n int) float64 {
	if n <= 0 {
		return product
	}
	mod := 1 - 1/float64(n)
	return product + (1-product)*mod*product
}
