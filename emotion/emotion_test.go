package emotion

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"
	"time"

	"npcsim/relationship"
)

func TestClassify_AllOctantsReachable(t *testing.T) {
	cases := []struct {
		pad  PAD
		want Octant
	}{
		{PAD{0.2, 0.2, 0.2}, OctantSad},
		{PAD{0.2, 0.2, 0.8}, OctantResigned},
		{PAD{0.2, 0.8, 0.2}, OctantAnxious},
		{PAD{0.2, 0.8, 0.8}, OctantAngry},
		{PAD{0.8, 0.2, 0.2}, OctantTender},
		{PAD{0.8, 0.2, 0.8}, OctantProudSecure},
		{PAD{0.8, 0.8, 0.2}, OctantAwe},
		{PAD{0.8, 0.8, 0.8}, OctantJoy},
	}
	seen := make(map[Octant]bool)
	for _, tc := range cases {
		got := Classify(tc.pad)
		if got != tc.want {
			t.Fatalf("Classify(%v) = %s, want %s", tc.pad, got, tc.want)
		}
		seen[got] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct octants, got %d", len(seen))
	}
	if Classify(Neutral) != OctantJoy {
		t.Fatalf("midpoint counts as high on every axis")
	}
}

func TestIntentFor_IsTotal(t *testing.T) {
	counts := make(map[Intent]int)
	for _, a := range PlayerActions() {
		counts[IntentFor(a)]++
		if _, ok := intensityByAction[a]; !ok {
			t.Fatalf("action %s has no intensity modifier", a)
		}
	}
	if len(PlayerActions()) != 46 {
		t.Fatalf("expected 46 player actions, got %d", len(PlayerActions()))
	}
	for _, i := range Intents {
		if counts[i] < 5 {
			t.Fatalf("intent %s has %d actions, want >= 5", i, counts[i])
		}
		if BasePADDelta(i) == (PAD{}) {
			t.Fatalf("intent %s has no PAD delta", i)
		}
		if BaseRelationshipDelta(i) == (relationship.Triangle{}) {
			t.Fatalf("intent %s has no relationship delta", i)
		}
	}
	if IntentFor(PlayerActionNone) != IntentBonding {
		t.Fatalf("unmapped action should fall back to bonding")
	}
	if IntensityModifier(PlayerActionNone) != 1 {
		t.Fatalf("unlisted action modifier should be 1")
	}
}

func TestParsePlayerAction(t *testing.T) {
	for _, a := range PlayerActions() {
		got, err := ParsePlayerAction(a.String())
		if err != nil || got != a {
			t.Fatalf("ParsePlayerAction(%q) = %v, %v", a.String(), got, err)
		}
	}
	got, err := ParsePlayerAction("KissQuick")
	if err != nil || got != PlayerActionKissQuick {
		t.Fatalf("CamelCase parse failed: %v, %v", got, err)
	}
	if _, err := ParsePlayerAction("none"); err == nil {
		t.Fatalf("none is not a stimulus")
	}
}

func TestApplyStimulus_KissQuickChangesState(t *testing.T) {
	core := NewCore(DefaultConfig())
	before := core.PAD()
	if before != Neutral {
		t.Fatalf("fresh core should start neutral, got %v", before)
	}

	r := core.ApplyStimulus(PlayerActionKissQuick, 0.5)
	after := core.PAD()
	if after.P == before.P || after.A == before.A {
		t.Fatalf("expected P and A to change: before=%v after=%v", before, after)
	}
	if core.LastIntent() != IntentDesire || r.Intent != IntentDesire {
		t.Fatalf("lastIntent = %s, want desire", core.LastIntent())
	}
	if core.LastDelta().Magnitude() <= 0 {
		t.Fatalf("expected a nonzero delta")
	}
	if r.Emotion != core.Emotion() || r.PAD != after {
		t.Fatalf("reaction does not reflect core state: %+v", r)
	}
}

func TestApplyStimulus_MatchesPipeline(t *testing.T) {
	core := NewCore(DefaultConfig())
	r := core.ApplyStimulus(PlayerActionHug, 1)

	// Hug: affection, modifier 1.5. Triangle after update:
	// I 0.4+0.15, P 0.4+0.03, C 0.4+0.075.
	tri := r.Triangle
	if math.Abs(tri.Intimacy-0.55) > 1e-9 || math.Abs(tri.Passion-0.43) > 1e-9 || math.Abs(tri.Commitment-0.475) > 1e-9 {
		t.Fatalf("unexpected triangle %+v", tri)
	}
	wantP := 0.20 * 1.5 * (1 + 0.8*0.55)
	if wantP > relationship.SafetyBand {
		wantP = relationship.SafetyBand
	}
	wantA := 0.05 * 1.5 * (1 + 0.6*0.43)
	wantD := -0.05 * 1.5 * (1 + 0.6*0.475)
	if math.Abs(r.Delta.P-wantP) > 1e-9 || math.Abs(r.Delta.A-wantA) > 1e-9 || math.Abs(r.Delta.D-wantD) > 1e-9 {
		t.Fatalf("delta = %+v, want {%v %v %v}", r.Delta, wantP, wantA, wantD)
	}
	if r.Transition != nil {
		t.Fatalf("no relationship transition expected, got %+v", r.Transition)
	}
}

func TestApplyStimulus_TransitionAddsDelta(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Triangle = relationship.Triangle{Intimacy: 0.65, Passion: 0.65, Commitment: 0.65}
	core := NewCore(cfg)
	r := core.ApplyStimulus(PlayerActionForgive, 1) // trust, modifier 1.6
	if r.Transition == nil {
		t.Fatalf("expected a relationship transition")
	}
	if r.Transition.To != core.RelationshipType() {
		t.Fatalf("transition target %s != current %s", r.Transition.To, core.RelationshipType())
	}
	if r.Transition.To.Rank() <= r.Transition.From.Rank() {
		t.Fatalf("trust should upgrade the relationship: %+v", r.Transition)
	}
}

func TestApplyStimulus_StateStaysInRange(t *testing.T) {
	core := NewCore(DefaultConfig())
	rng := rand.New(rand.NewSource(3))
	actions := PlayerActions()
	for i := 0; i < 2000; i++ {
		a := actions[rng.Intn(len(actions))]
		r := core.ApplyStimulus(a, rng.Float64()*3-1)
		for _, v := range []float64{r.PAD.P, r.PAD.A, r.PAD.D, r.Triangle.Intimacy, r.Triangle.Passion, r.Triangle.Commitment} {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("state out of range after %s: %+v", a, r)
			}
		}
		for _, v := range []float64{r.Delta.P, r.Delta.A, r.Delta.D} {
			if math.Abs(v) > relationship.SafetyBand {
				t.Fatalf("delta outside safety band: %+v", r.Delta)
			}
		}
	}
}

func TestAdjustAndDrift(t *testing.T) {
	core := NewCore(DefaultConfig())
	core.Adjust(PAD{P: 5, A: -5, D: math.NaN()})
	if got := core.PAD(); got.P != 1 || got.A != 0 || got.D != 0.5 {
		t.Fatalf("Adjust should clamp, got %v", got)
	}
	if core.Emotion() != OctantProudSecure {
		t.Fatalf("emotion not refreshed after Adjust: %s", core.Emotion())
	}

	target := PAD{P: 0.2, A: 0.2, D: 0.2}
	core.Drift(target, 0.1, time.Second)
	if got := core.PAD(); math.Abs(got.P-0.92) > 1e-9 {
		t.Fatalf("Drift step = %v, want P 0.92", got)
	}
	core.Drift(target, 0.1, 0)
	if got := core.PAD(); math.Abs(got.P-0.92) > 1e-9 {
		t.Fatalf("zero dt should not drift")
	}
	core.Settle(target, 1)
	if got := core.PAD(); math.Abs(got.P-target.P) > 1e-9 || math.Abs(got.A-target.A) > 1e-9 || math.Abs(got.D-target.D) > 1e-9 {
		t.Fatalf("Settle(1) should land on target, got %v", core.PAD())
	}
}

func TestReaction_JSONUsesNames(t *testing.T) {
	core := NewCore(DefaultConfig())
	r := core.ApplyStimulus(PlayerActionJoke, 0.5)
	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal err: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if decoded["action"] != "joke" || decoded["intent"] != "playfulness" {
		t.Fatalf("unexpected json: %s", raw)
	}
	var back Reaction
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal Reaction err: %v", err)
	}
	if back.Action != r.Action || back.Emotion != r.Emotion || back.Relationship != r.Relationship {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, r)
	}
}
