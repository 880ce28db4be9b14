// Package scenario replays a scripted sequence of player actions against a
// fresh world and records everything the agents did as a tape. The same spec
// always produces the same tape.
package scenario

import (
	"npcsim/agent"
	"npcsim/content"
	"npcsim/emotion"
	"npcsim/sim"
	"npcsim/utility"
)

// Run executes spec against catalog (nil means content.DefaultCatalog) with
// personas resolved from the built-in roster.
func Run(spec Spec, catalog *utility.Catalog) (*Tape, error) {
	return RunWith(spec, catalog, content.DefaultPersonas())
}

// RunWith is Run with an explicit persona registry.
func RunWith(spec Spec, catalog *utility.Catalog, personas *content.PersonaRegistry) (*Tape, error) {
	if personas == nil {
		personas = content.NewRegistry()
	}
	ns, err := normalizeSpec(spec, personas)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		catalog = content.DefaultCatalog()
	}

	b := &tapeBuilder{}
	cfg := sim.DefaultConfig(catalog)
	cfg.Locations = ns.locations
	cfg.Logf = func(string, ...any) {}
	cfg.Hooks = sim.Hooks{
		OnDecision:   b.addDecision,
		OnReaction:   b.addReaction,
		OnEffectDone: b.addEffect,
	}
	world, err := sim.New(cfg)
	if err != nil {
		return nil, &Error{Step: -1, Reason: "world_init_failed", Message: err.Error()}
	}
	b.world = world

	ids := make([]string, 0, len(ns.agents))
	for _, as := range ns.agents {
		a, err := world.AddAgent(as)
		if err != nil {
			return nil, &Error{Step: -1, Reason: "agent_init_failed", Message: err.Error()}
		}
		ids = append(ids, a.ID())
	}

	dt := ns.dt()
	next := 0
	for tick := 0; tick < ns.ticks; tick++ {
		b.tick = tick
		for next < len(ns.steps) && ns.steps[next].tick == tick {
			if err := applyStep(world, ns.steps[next]); err != nil {
				return nil, err
			}
			next++
		}
		world.Tick(dt)
		if ns.statusEvery > 0 && (tick+1)%ns.statusEvery == 0 {
			b.addStatuses()
		}
	}
	if ns.statusEvery == 0 || ns.ticks%ns.statusEvery != 0 {
		b.addStatuses()
	}

	return &Tape{
		TapeVersion: TapeVersion,
		Name:        ns.name,
		TickMs:      ns.tickMs,
		Ticks:       ns.ticks,
		Agents:      ids,
		Frames:      b.frames,
	}, nil
}

func applyStep(w *sim.World, st normalizedStep) error {
	switch st.kind {
	case stepEngage:
		if _, err := w.Engage(st.agent); err != nil {
			return &Error{Step: st.index, Reason: "engage_failed", Message: err.Error()}
		}
	case stepStimulus:
		if st.agent != "" {
			if _, err := w.Stimulate(st.agent, st.action, st.intensity); err != nil {
				return &Error{Step: st.index, Reason: "stimulus_failed", Message: err.Error()}
			}
			return nil
		}
		for _, a := range w.Agents() {
			if _, err := w.Stimulate(a.ID(), st.action, st.intensity); err != nil {
				return &Error{Step: st.index, Reason: "stimulus_failed", Message: err.Error()}
			}
		}
	}
	return nil
}

type tapeBuilder struct {
	world  *sim.World
	tick   int
	seq    uint64
	frames []Frame
}

func (b *tapeBuilder) frame(typ, agentID string) Frame {
	b.seq++
	var elapsed int64
	if b.world != nil {
		elapsed = b.world.Elapsed().Milliseconds()
	}
	return Frame{Type: typ, Seq: b.seq, Tick: b.tick, ElapsedMs: elapsed, Agent: agentID}
}

func (b *tapeBuilder) addDecision(a *agent.Controller, d utility.Decision) {
	f := b.frame(FrameDecision, a.ID())
	df := &DecisionFrame{Action: d.ID, Score: d.Score, Candidates: make([]CandidateFrame, 0, len(d.Candidates))}
	for _, c := range d.Candidates {
		df.Candidates = append(df.Candidates, CandidateFrame{Action: c.ID, Raw: c.Raw, Bias: c.Bias, Final: c.Final})
	}
	f.Decision = df
	b.frames = append(b.frames, f)
}

func (b *tapeBuilder) addReaction(a *agent.Controller, r emotion.Reaction) {
	f := b.frame(FrameReaction, a.ID())
	f.Reaction = &r
	b.frames = append(b.frames, f)
}

func (b *tapeBuilder) addEffect(a *agent.Controller, e *agent.Effect) {
	f := b.frame(FrameEffectDone, a.ID())
	f.Effect = &EffectFrame{
		Action:     e.ID,
		Pool:       e.Pool.String(),
		DurationMs: e.Duration.Milliseconds(),
		Stats:      a.Stats().Values(),
	}
	b.frames = append(b.frames, f)
}

func (b *tapeBuilder) addStatuses() {
	for _, s := range b.world.Snapshot() {
		f := b.frame(FrameStatus, s.ID)
		st := s
		f.Status = &st
		b.frames = append(b.frames, f)
	}
}
