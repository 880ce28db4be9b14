// Package content loads action catalogs and persona rosters from YAML and
// ships the built-in ones.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"npcsim/curve"
	"npcsim/emotion"
	"npcsim/personality"
	"npcsim/utility"
)

//go:embed actions.yaml
var defaultActions []byte

// CatalogDoc is the on-disk shape of an action catalog.
type CatalogDoc struct {
	Actions []ActionDoc `yaml:"actions"`
}

type ActionDoc struct {
	ID             string             `yaml:"id"`
	Name           string             `yaml:"name"`
	Pool           string             `yaml:"pool"`
	Weight         *float64           `yaml:"weight"`
	Cooldown       string             `yaml:"cooldown"`
	Curve          string             `yaml:"curve"`
	Target         string             `yaml:"target"`
	Animation      string             `yaml:"animation"`
	Preset         string             `yaml:"preset"`
	Bias           []BiasDoc          `yaml:"bias"`
	Effect         EffectDoc          `yaml:"effect"`
	Considerations []ConsiderationDoc `yaml:"considerations"`
}

type BiasDoc struct {
	Axis string  `yaml:"axis"`
	Pos  float64 `yaml:"pos"`
	Neg  float64 `yaml:"neg"`
}

type EffectDoc struct {
	Duration      string  `yaml:"duration"`
	Energy        float64 `yaml:"energy"`
	Hunger        float64 `yaml:"hunger"`
	Money         float64 `yaml:"money"`
	Resources     int     `yaml:"resources"`
	SellResources float64 `yaml:"sell_resources"`
	Intimacy      float64 `yaml:"intimacy"`
	Romantic      float64 `yaml:"romantic"`
	Belonging     float64 `yaml:"belonging"`
}

type ConsiderationDoc struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Axis       string   `yaml:"axis"`
	Invert     bool     `yaml:"invert"`
	Intent     string   `yaml:"intent"`
	OnMatch    *float64 `yaml:"on_match"`
	OnMismatch *float64 `yaml:"on_mismatch"`
	Range      float64  `yaml:"range"`
	Value      float64  `yaml:"value"`
	Curve      string   `yaml:"curve"`
}

// LoadError points at the action that failed to convert.
type LoadError struct {
	Index int
	ID    string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("action #%d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseCatalog decodes YAML and builds a validated catalog.
func ParseCatalog(data []byte) (*utility.Catalog, error) {
	var doc CatalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	return doc.Build()
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (*utility.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the built-in catalog. It panics if the embedded
// file is broken, which tests guard against.
func DefaultCatalog() *utility.Catalog {
	c, err := ParseCatalog(defaultActions)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalogYAML returns a copy of the embedded catalog source.
func DefaultCatalogYAML() []byte {
	return append([]byte(nil), defaultActions...)
}

// Build converts every action and hands them to utility.NewCatalog.
func (d CatalogDoc) Build() (*utility.Catalog, error) {
	if len(d.Actions) == 0 {
		return nil, fmt.Errorf("catalog has no actions")
	}
	defs := make([]utility.Def, 0, len(d.Actions))
	for i, a := range d.Actions {
		def, err := a.Def()
		if err != nil {
			return nil, &LoadError{Index: i, ID: a.ID, Err: err}
		}
		defs = append(defs, def)
	}
	return utility.NewCatalog(defs...)
}

// Def converts one document into a definition. Validation of the result is
// left to utility.NewCatalog.
func (a ActionDoc) Def() (utility.Def, error) {
	def := utility.Def{
		ID:        a.ID,
		Name:      a.Name,
		Weight:    1,
		Target:    a.Target,
		Animation: a.Animation,
	}
	if def.Name == "" {
		def.Name = a.ID
	}
	if a.Weight != nil {
		def.Weight = *a.Weight
	}

	var err error
	if a.Pool != "" {
		if def.Pool, err = utility.ParsePool(a.Pool); err != nil {
			return def, err
		}
	}
	if def.Cooldown, err = duration(a.Cooldown); err != nil {
		return def, fmt.Errorf("cooldown: %w", err)
	}
	if def.Curve, err = optionalCurve(a.Curve); err != nil {
		return def, err
	}
	if a.Preset != "" {
		if def.Preset, err = personality.ParsePreset(a.Preset); err != nil {
			return def, err
		}
	}
	for _, b := range a.Bias {
		axis, err := personality.ParseAxis(b.Axis)
		if err != nil {
			return def, err
		}
		def.Bias = append(def.Bias, personality.Bias(axis, b.Pos, b.Neg))
	}
	if def.Effect, err = a.Effect.effect(); err != nil {
		return def, err
	}
	for i, c := range a.Considerations {
		cons, err := c.consideration()
		if err != nil {
			return def, fmt.Errorf("consideration #%d: %w", i, err)
		}
		def.Considerations = append(def.Considerations, cons)
	}
	return def, nil
}

func (e EffectDoc) effect() (utility.Effect, error) {
	d, err := duration(e.Duration)
	if err != nil {
		return utility.Effect{}, fmt.Errorf("effect duration: %w", err)
	}
	return utility.Effect{
		Duration:      d,
		Energy:        e.Energy,
		Hunger:        e.Hunger,
		Money:         e.Money,
		Resources:     e.Resources,
		SellResources: e.SellResources,
		Intimacy:      e.Intimacy,
		Romantic:      e.Romantic,
		Belonging:     e.Belonging,
	}, nil
}

func (c ConsiderationDoc) consideration() (utility.Consideration, error) {
	kind, err := utility.ParseKind(c.Kind)
	if err != nil {
		return utility.Consideration{}, err
	}
	out := utility.Consideration{
		Name:   c.Name,
		Kind:   kind,
		Invert: c.Invert,
		Range:  c.Range,
		Value:  c.Value,
	}
	if out.Name == "" {
		out.Name = kind.String()
		if c.Axis != "" {
			out.Name += "_" + c.Axis
		}
	}
	if c.Axis != "" {
		if out.Axis, err = utility.ParseAxisFor(kind, c.Axis); err != nil {
			return out, err
		}
	}
	if out.Curve, err = optionalCurve(c.Curve); err != nil {
		return out, err
	}

	switch kind {
	case utility.KindIntentMatch:
		if out.Desired, err = emotion.ParseIntent(c.Intent); err != nil {
			return out, err
		}
		out.OnMatch = utility.DefaultOnMatch
		out.OnMismatch = utility.DefaultOnMismatch
		if c.OnMatch != nil {
			out.OnMatch = *c.OnMatch
		}
		if c.OnMismatch != nil {
			out.OnMismatch = *c.OnMismatch
		}
	case utility.KindPADDelta:
		if out.Range == 0 {
			out.Range = utility.DefaultDeltaRange
		}
	}
	return out, nil
}

func duration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func optionalCurve(expr string) (curve.Curve, error) {
	if expr == "" {
		return nil, nil
	}
	return curve.Parse(expr)
}
