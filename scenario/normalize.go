package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"npcsim/agent"
	"npcsim/content"
	"npcsim/emotion"
	"npcsim/personality"
	"npcsim/sim"
)

const (
	DefaultTickMs = 100
	MaxTicks      = 100000
	MaxAgents     = 64
)

type stepKind byte

const (
	stepStimulus stepKind = iota
	stepEngage
)

type normalizedStep struct {
	index     int // position in the source list, for errors
	kind      stepKind
	tick      int
	agent     string
	action    emotion.PlayerAction
	intensity float64
}

type normalizedSpec struct {
	name        string
	tickMs      int
	ticks       int
	statusEvery int
	locations   map[string]agent.Vec2
	agents      []sim.AgentSpec
	steps       []normalizedStep
}

func (ns normalizedSpec) dt() time.Duration {
	return time.Duration(ns.tickMs) * time.Millisecond
}

func normalizeSpec(spec Spec, personas *content.PersonaRegistry) (normalizedSpec, error) {
	var out normalizedSpec
	out.name = strings.TrimSpace(spec.Name)
	out.tickMs = spec.TickMs
	if out.tickMs == 0 {
		out.tickMs = DefaultTickMs
	}
	if out.tickMs < 0 {
		return out, specError("invalid_tick", "tick_ms must be > 0")
	}
	if spec.Ticks <= 0 || spec.Ticks > MaxTicks {
		return out, specError("invalid_ticks", "ticks must be in [1, %d]", MaxTicks)
	}
	out.ticks = spec.Ticks
	if spec.StatusEvery < 0 {
		return out, specError("invalid_status_every", "status_every must be >= 0")
	}
	out.statusEvery = spec.StatusEvery

	out.locations = sim.DefaultLocations()
	for name, p := range spec.Locations {
		if strings.TrimSpace(name) == "" {
			return out, specError("invalid_location", "location name must not be empty")
		}
		if !finiteVec(p) {
			return out, specError("invalid_location", "location %s is not finite", name)
		}
		out.locations[name] = p
	}

	if len(spec.Agents) == 0 {
		return out, specError("invalid_agents", "at least 1 agent is required")
	}
	if len(spec.Agents) > MaxAgents {
		return out, specError("invalid_agents", "at most %d agents are allowed", MaxAgents)
	}
	ids := make(map[string]struct{}, len(spec.Agents))
	for i, a := range spec.Agents {
		as, err := normalizeAgent(i, a, personas)
		if err != nil {
			return out, err
		}
		if _, dup := ids[as.ID]; dup {
			return out, specError("duplicate_agent", "duplicate agent id %s", as.ID)
		}
		ids[as.ID] = struct{}{}
		out.agents = append(out.agents, as)
	}

	for i, s := range spec.Stimuli {
		st, err := normalizeStimulus(i, s, out.ticks, ids)
		if err != nil {
			return out, err
		}
		out.steps = append(out.steps, st)
	}
	for i, e := range spec.Engagements {
		if e.Tick < 0 || e.Tick >= out.ticks {
			return out, &Error{Step: i, Reason: "invalid_tick", Message: fmt.Sprintf("engagement tick %d outside [0, %d)", e.Tick, out.ticks)}
		}
		if _, ok := ids[e.Agent]; !ok {
			return out, &Error{Step: i, Reason: "unknown_agent", Message: fmt.Sprintf("engagement targets unknown agent %q", e.Agent)}
		}
		out.steps = append(out.steps, normalizedStep{index: i, kind: stepEngage, tick: e.Tick, agent: e.Agent})
	}
	if spec.RNG != nil && spec.RNG.Stimuli > 0 {
		out.steps = append(out.steps, randomStimuli(*spec.RNG, out.ticks, out.agents)...)
	}
	sort.SliceStable(out.steps, func(i, j int) bool { return out.steps[i].tick < out.steps[j].tick })
	return out, nil
}

func normalizeAgent(i int, a AgentSpec, personas *content.PersonaRegistry) (sim.AgentSpec, error) {
	var out sim.AgentSpec
	if a.Persona != "" {
		p := personas.Get(a.Persona)
		if p == nil {
			return out, specError("unknown_persona", "agent %d references unknown persona %q", i, a.Persona)
		}
		ps, err := p.AgentSpec()
		if err != nil {
			return out, specError("invalid_persona", "persona %s: %v", a.Persona, err)
		}
		out = ps
	}

	if id := strings.TrimSpace(a.ID); id != "" {
		out.ID = id
	}
	if out.ID == "" {
		out.ID = fmt.Sprintf("agent-%d", i+1)
	}
	if name := strings.TrimSpace(a.Name); name != "" {
		out.Name = name
	}
	if out.Name == "" {
		out.Name = out.ID
	}
	if a.Personality != "" {
		prof, err := personality.ParseCode(a.Personality)
		if err != nil {
			return out, specError("invalid_personality", "agent %s: %v", out.ID, err)
		}
		out.Profile = prof
	}
	if a.Position != nil {
		if !finiteVec(*a.Position) {
			return out, specError("invalid_position", "agent %s position is not finite", out.ID)
		}
		out.Position = *a.Position
	}
	if a.Stats != nil {
		v := *a.Stats
		out.Stats = &v
	}
	if a.Triangle != nil {
		t := *a.Triangle
		out.Triangle = &t
	}
	return out, nil
}

func normalizeStimulus(i int, s StimulusSpec, ticks int, ids map[string]struct{}) (normalizedStep, error) {
	st := normalizedStep{index: i, kind: stepStimulus, tick: s.Tick, agent: s.Agent, intensity: s.Intensity}
	if s.Tick < 0 || s.Tick >= ticks {
		return st, &Error{Step: i, Reason: "invalid_tick", Message: fmt.Sprintf("stimulus tick %d outside [0, %d)", s.Tick, ticks)}
	}
	if s.Agent != "" {
		if _, ok := ids[s.Agent]; !ok {
			return st, &Error{Step: i, Reason: "unknown_agent", Message: fmt.Sprintf("stimulus targets unknown agent %q", s.Agent)}
		}
	}
	action, err := emotion.ParsePlayerAction(s.Action)
	if err != nil {
		return st, &Error{Step: i, Reason: "invalid_action", Message: err.Error()}
	}
	st.action = action
	if math.IsNaN(s.Intensity) || s.Intensity < 0 || s.Intensity > 1 {
		return st, &Error{Step: i, Reason: "invalid_intensity", Message: "intensity must be in [0, 1]"}
	}
	if st.intensity == 0 {
		st.intensity = agent.DefaultIntensity
	}
	return st, nil
}

// randomStimuli draws actions, targets, ticks and intensities from a source
// seeded by the spec, so the same seed always yields the same steps.
func randomStimuli(r RNGSpec, ticks int, agents []sim.AgentSpec) []normalizedStep {
	rng := rand.New(rand.NewSource(r.Seed))
	actions := emotion.PlayerActions()
	out := make([]normalizedStep, 0, r.Stimuli)
	for i := 0; i < r.Stimuli; i++ {
		out = append(out, normalizedStep{
			index:     -1,
			kind:      stepStimulus,
			tick:      rng.Intn(ticks),
			agent:     agents[rng.Intn(len(agents))].ID,
			action:    actions[rng.Intn(len(actions))],
			intensity: 0.2 + 0.8*rng.Float64(),
		})
	}
	return out
}

func finiteVec(v agent.Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
