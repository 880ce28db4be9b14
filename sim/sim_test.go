package sim_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"npcsim/agent"
	"npcsim/content"
	"npcsim/emotion"
	"npcsim/sim"
	"npcsim/utility"
)

const tick = 100 * time.Millisecond

func quiet(string, ...any) {}

func newWorld(t *testing.T, hooks sim.Hooks) *sim.World {
	t.Helper()
	cfg := sim.DefaultConfig(content.DefaultCatalog())
	cfg.Hooks = hooks
	cfg.Logf = quiet
	w, err := sim.New(cfg)
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	return w
}

func spawnRoster(t *testing.T, w *sim.World) {
	t.Helper()
	for _, p := range content.DefaultPersonas().All() {
		spec, err := p.AgentSpec()
		if err != nil {
			t.Fatalf("AgentSpec err: %v", err)
		}
		if _, err := w.AddAgent(spec); err != nil {
			t.Fatalf("AddAgent err: %v", err)
		}
	}
}

func TestPointMover_WalksAndSnaps(t *testing.T) {
	m := sim.NewPointMover(agent.Vec2{}, 2)
	if !m.IsArrived() {
		t.Fatalf("fresh mover should be arrived")
	}
	m.SetDestination(agent.Vec2{X: 3, Y: 4})
	m.Advance(time.Second)
	p := m.Position()
	if math.Abs(p.X-1.2) > 1e-9 || math.Abs(p.Y-1.6) > 1e-9 {
		t.Fatalf("pos = %v", p)
	}
	if d := m.RemainingDistance(); math.Abs(d-3) > 1e-9 {
		t.Fatalf("remaining = %v", d)
	}
	m.Advance(0)
	if m.Position() != p {
		t.Fatalf("zero dt moved the mover")
	}
	m.Advance(5 * time.Second)
	if !m.IsArrived() || m.Position() != (agent.Vec2{X: 3, Y: 4}) {
		t.Fatalf("did not snap: %v", m.Position())
	}
}

func TestNew_RequiresCatalog(t *testing.T) {
	if _, err := sim.New(sim.Config{Speed: 1}); err == nil {
		t.Fatalf("expected error without catalog")
	}
	cfg := sim.DefaultConfig(content.DefaultCatalog())
	cfg.Speed = 0
	if _, err := sim.New(cfg); err == nil {
		t.Fatalf("expected error for zero speed")
	}
}

func TestWorld_Locations(t *testing.T) {
	w := newWorld(t, sim.Hooks{})
	if got := strings.Join(w.Locations(), ","); got != "home,market,partner,storage,work" {
		t.Fatalf("Locations = %s", got)
	}
	w.SetLocation("partner", agent.Vec2{X: 1, Y: 1})
	p, ok := w.Locate("partner")
	if !ok || p != (agent.Vec2{X: 1, Y: 1}) {
		t.Fatalf("Locate = %v %v", p, ok)
	}
	if _, ok := w.Locate("moon"); ok {
		t.Fatalf("unknown place resolved")
	}
}

func TestWorld_AddRemove(t *testing.T) {
	w := newWorld(t, sim.Hooks{})
	a, err := w.AddAgent(sim.AgentSpec{Name: "anon"})
	if err != nil {
		t.Fatalf("AddAgent err: %v", err)
	}
	if a.ID() != "agent-1" {
		t.Fatalf("ID = %s", a.ID())
	}
	if _, err := w.AddAgent(sim.AgentSpec{ID: "agent-1"}); !errors.Is(err, sim.ErrDuplicateAgent) {
		t.Fatalf("err = %v, want ErrDuplicateAgent", err)
	}
	if _, err := w.AddAgent(sim.AgentSpec{ID: "b", Name: "bee"}); err != nil {
		t.Fatalf("AddAgent err: %v", err)
	}
	if w.Len() != 2 {
		t.Fatalf("Len = %d", w.Len())
	}
	if !w.RemoveAgent("agent-1") || w.RemoveAgent("agent-1") {
		t.Fatalf("RemoveAgent should succeed exactly once")
	}
	agents := w.Agents()
	if len(agents) != 1 || agents[0].ID() != "b" {
		t.Fatalf("Agents = %v", agents)
	}
	if _, ok := w.Agent("agent-1"); ok {
		t.Fatalf("removed agent still resolvable")
	}
}

func TestWorld_SetCatalogAppliesToNewAgents(t *testing.T) {
	w := newWorld(t, sim.Hooks{})
	before, err := w.AddAgent(sim.AgentSpec{ID: "before"})
	if err != nil {
		t.Fatalf("AddAgent err: %v", err)
	}
	small, err := content.ParseCatalog([]byte(`
actions:
  - id: nap
    pool: utility
    target: home
    considerations:
      - {kind: constant, value: 1}
`))
	if err != nil {
		t.Fatalf("ParseCatalog err: %v", err)
	}
	w.SetCatalog(small)
	w.SetCatalog(nil)
	after, err := w.AddAgent(sim.AgentSpec{ID: "after"})
	if err != nil {
		t.Fatalf("AddAgent err: %v", err)
	}
	if got := before.Runtime().Catalog().Len(); got != 15 {
		t.Fatalf("existing agent catalog len = %d", got)
	}
	if got := after.Runtime().Catalog().Len(); got != 1 {
		t.Fatalf("new agent catalog len = %d", got)
	}
	if w.Catalog() != small {
		t.Fatalf("Catalog() not swapped")
	}
}

func TestWorld_UnknownAgent(t *testing.T) {
	w := newWorld(t, sim.Hooks{})
	if _, err := w.Stimulate("ghost", emotion.PlayerActionHug, 0.5); !errors.Is(err, sim.ErrUnknownAgent) {
		t.Fatalf("Stimulate err = %v", err)
	}
	if _, err := w.Engage("ghost"); !errors.Is(err, sim.ErrUnknownAgent) {
		t.Fatalf("Engage err = %v", err)
	}
}

func TestWorld_BusStimuliApplyOnTick(t *testing.T) {
	var reactions []string
	w := newWorld(t, sim.Hooks{
		OnReaction: func(a *agent.Controller, r emotion.Reaction) {
			reactions = append(reactions, a.ID()+":"+r.Action.String())
		},
	})
	spawnRoster(t, w)

	w.Bus().Publish(agent.Stimulus{Agent: "mara", Action: emotion.PlayerActionHug})
	w.Bus().Publish(agent.Stimulus{Agent: "ghost", Action: emotion.PlayerActionHug})
	mara, _ := w.Agent("mara")
	if mara.Core().StimulusCount() != 0 {
		t.Fatalf("stimulus applied before tick")
	}
	w.Tick(tick)
	if mara.Core().StimulusCount() != 1 {
		t.Fatalf("mara count = %d", mara.Core().StimulusCount())
	}
	teo, _ := w.Agent("teo")
	if teo.Core().StimulusCount() != 0 {
		t.Fatalf("teo should be untouched")
	}

	w.Bus().Raise(emotion.PlayerActionJoke)
	w.Tick(tick)
	for _, a := range w.Agents() {
		want := 1
		if a.ID() == "mara" {
			want = 2
		}
		if a.Core().StimulusCount() != want {
			t.Fatalf("%s count = %d, want %d", a.ID(), a.Core().StimulusCount(), want)
		}
	}
	if len(reactions) != 5 || reactions[0] != "mara:hug" {
		t.Fatalf("reactions = %v", reactions)
	}
}

func TestWorld_HooksObserveLoop(t *testing.T) {
	var decisions, done int
	w := newWorld(t, sim.Hooks{
		OnDecision:   func(*agent.Controller, utility.Decision) { decisions++ },
		OnEffectDone: func(*agent.Controller, *agent.Effect) { done++ },
	})
	if _, err := w.AddAgent(sim.AgentSpec{ID: "solo", Name: "Solo"}); err != nil {
		t.Fatalf("AddAgent err: %v", err)
	}
	for i := 0; i < 200; i++ {
		w.Tick(tick)
	}
	if decisions == 0 || done == 0 {
		t.Fatalf("decisions = %d, done = %d", decisions, done)
	}
	if w.Elapsed() != 200*tick {
		t.Fatalf("Elapsed = %v", w.Elapsed())
	}
}

func TestWorld_AgentsWalkToTargets(t *testing.T) {
	w := newWorld(t, sim.Hooks{})
	a, err := w.AddAgent(sim.AgentSpec{ID: "solo", Name: "Solo"})
	if err != nil {
		t.Fatalf("AddAgent err: %v", err)
	}
	// Hungry with money: the first pick is eat, at the market.
	w.Tick(tick)
	if id, ok := a.Current(); !ok || id != "eat" {
		t.Fatalf("Current = %q %v", id, ok)
	}
	for i := 0; i < 60 && a.State() == agent.StateMove; i++ {
		w.Tick(tick)
	}
	market, _ := w.Locate("market")
	if a.Position().Distance(market) > agent.ArrivalSlack {
		t.Fatalf("position = %v, want near %v", a.Position(), market)
	}
}

func run(t *testing.T) []agent.Status {
	w := newWorld(t, sim.Hooks{})
	spawnRoster(t, w)
	for i := 0; i < 400; i++ {
		switch i {
		case 20:
			w.Bus().Publish(agent.Stimulus{Agent: "teo", Action: emotion.PlayerActionFlirt, Intensity: 0.8})
		case 90:
			w.Bus().Raise(emotion.PlayerActionCriticize)
		case 150:
			if _, err := w.Engage("rook"); err != nil {
				t.Fatalf("Engage err: %v", err)
			}
		}
		w.Tick(tick)
	}
	return w.Snapshot()
}

func TestWorld_Deterministic(t *testing.T) {
	a := run(t)
	b := run(t)
	if len(a) != 4 {
		t.Fatalf("snapshot len = %d", len(a))
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("runs diverged (-first +second):\n%s", diff)
	}
	for _, s := range a {
		if s.ElapsedMs != 40000 {
			t.Fatalf("%s ElapsedMs = %d", s.ID, s.ElapsedMs)
		}
	}
}
