package content

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"npcsim/agent"
	"npcsim/personality"
	"npcsim/relationship"
	"npcsim/sim"
)

//go:embed personas.yaml
var defaultPersonas []byte

// Persona is a named character template an agent can be spawned from.
type Persona struct {
	ID          string                 `yaml:"id" json:"id"`
	Name        string                 `yaml:"name" json:"name"`
	Tagline     string                 `yaml:"tagline" json:"tagline"`
	Personality string                 `yaml:"personality" json:"personality"` // e.g. "ENFP-T"
	Position    agent.Vec2             `yaml:"position" json:"position"`
	Stats       *agent.StatValues      `yaml:"stats" json:"stats,omitempty"`
	Triangle    *relationship.Triangle `yaml:"triangle" json:"triangle,omitempty"`
}

// Profile parses the personality code.
func (p *Persona) Profile() (personality.Profile, error) {
	return personality.ParseCode(p.Personality)
}

// PersonaRegistry holds persona definitions keyed by ID.
type PersonaRegistry struct {
	mu       sync.RWMutex
	personas map[string]*Persona
}

func NewRegistry() *PersonaRegistry {
	return &PersonaRegistry{
		personas: make(map[string]*Persona),
	}
}

// DefaultPersonas returns a registry holding the built-in roster.
func DefaultPersonas() *PersonaRegistry {
	r := NewRegistry()
	if err := r.LoadFromYAML(defaultPersonas); err != nil {
		panic(err)
	}
	return r
}

// LoadFromFile loads personas from a YAML file.
func (r *PersonaRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read personas file: %w", err)
	}
	return r.LoadFromYAML(data)
}

// LoadFromYAML loads a list of personas. Entries without an ID are skipped;
// a later entry replaces an earlier one with the same ID. The whole batch is
// rejected if any personality code is malformed.
func (r *PersonaRegistry) LoadFromYAML(data []byte) error {
	var list []*Persona
	if err := yaml.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse personas YAML: %w", err)
	}
	for _, p := range list {
		if p == nil || p.ID == "" {
			continue
		}
		if _, err := p.Profile(); err != nil {
			return fmt.Errorf("persona %s: %w", p.ID, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range list {
		if p == nil || p.ID == "" {
			continue
		}
		r.personas[p.ID] = p
	}
	return nil
}

// Get returns a persona by ID, or nil.
func (r *PersonaRegistry) Get(id string) *Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.personas[id]
}

// All returns every persona sorted by ID.
func (r *PersonaRegistry) All() []*Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Persona, 0, len(r.personas))
	for _, p := range r.personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of registered personas.
func (r *PersonaRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.personas)
}

// AgentSpec turns the persona into a spawn request for a sim.World.
func (p *Persona) AgentSpec() (sim.AgentSpec, error) {
	prof, err := p.Profile()
	if err != nil {
		return sim.AgentSpec{}, err
	}
	spec := sim.AgentSpec{
		ID:       p.ID,
		Name:     p.Name,
		Profile:  prof,
		Position: p.Position,
	}
	if p.Stats != nil {
		v := *p.Stats
		spec.Stats = &v
	}
	if p.Triangle != nil {
		t := *p.Triangle
		spec.Triangle = &t
	}
	return spec, nil
}
