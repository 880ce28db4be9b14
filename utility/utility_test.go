package utility

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"npcsim/curve"
	"npcsim/emotion"
	"npcsim/personality"
	"npcsim/relationship"
)

type fakeContext struct {
	energy, hunger, money         float64
	resources                     int
	intimacy, romantic, belonging float64
	pad, delta                    emotion.PAD
	intent                        emotion.Intent
	tri                           relationship.Triangle
}

func (f *fakeContext) Energy() float64                 { return f.energy }
func (f *fakeContext) Hunger() float64                 { return f.hunger }
func (f *fakeContext) Money() float64                  { return f.money }
func (f *fakeContext) Resources() int                  { return f.resources }
func (f *fakeContext) Intimacy() float64               { return f.intimacy }
func (f *fakeContext) Romantic() float64               { return f.romantic }
func (f *fakeContext) Belonging() float64              { return f.belonging }
func (f *fakeContext) PAD() emotion.PAD                { return f.pad }
func (f *fakeContext) LastDelta() emotion.PAD          { return f.delta }
func (f *fakeContext) LastIntent() emotion.Intent      { return f.intent }
func (f *fakeContext) Triangle() relationship.Triangle { return f.tri }

func neutralContext() *fakeContext {
	return &fakeContext{
		energy: 50, hunger: 90, money: 500,
		pad:    emotion.Neutral,
		intent: emotion.IntentBonding,
		tri:    relationship.Triangle{Intimacy: 0.4, Passion: 0.4, Commitment: 0.4},
	}
}

func mustCatalog(t *testing.T, defs ...Def) *Catalog {
	t.Helper()
	c, err := NewCatalog(defs...)
	if err != nil {
		t.Fatalf("NewCatalog err: %v", err)
	}
	return c
}

func TestConsideration_Normalization(t *testing.T) {
	ctx := neutralContext()
	ctx.resources = 4
	ctx.delta = emotion.PAD{P: 0.35, A: -1}
	cases := []struct {
		c    Consideration
		want float64
	}{
		{Stat(KindEnergy, nil), 0.5},
		{Stat(KindHunger, nil), 0.9},
		{Stat(KindMoney, nil), 0.5},
		{Stat(KindResources, nil), 1},
		{Consideration{Kind: KindHunger, Invert: true}, 0.1},
		{PADAxis("p", AxisPleasure, false, nil), 0.5},
		{PADDelta("dp", AxisPleasure, false, nil), 1},
		{PADDelta("dp_inv", AxisPleasure, true, nil), 0},
		{PADDelta("da", AxisArousal, false, nil), 0},
		{PADDelta("dd", AxisDominance, false, nil), 0.5},
		{IntentMatch("bond", emotion.IntentBonding), 1},
		{IntentMatch("desire", emotion.IntentDesire), 0.2},
		{TriangleAxis("i", AxisIntimacy, false, nil), 0.4},
		{TriangleAxis("i_inv", AxisIntimacy, true, nil), 0.6},
		{Constant("k", 3), 1},
		{Stat(KindEnergy, curve.Power{Exponent: 2}), 0.25},
	}
	for _, tc := range cases {
		if got := tc.c.Score(ctx); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s(%s) = %v, want %v", tc.c.Kind, tc.c.Name, got, tc.want)
		}
	}
}

func TestScore_StaysInUnitRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	curves := []curve.Curve{nil, curve.Identity, curve.Power{Exponent: 3}, curve.Logistic{Steepness: 10, Midpoint: 0.5}, curve.Inverse{}}
	for i := 0; i < 2000; i++ {
		ctx := &fakeContext{
			energy: rng.Float64()*300 - 100, hunger: rng.Float64()*300 - 100, money: rng.Float64() * 5000,
			resources: rng.Intn(5), intimacy: rng.Float64(), romantic: rng.Float64()*2 - 0.5,
			pad:   emotion.PAD{P: rng.Float64(), A: rng.Float64(), D: rng.Float64()},
			delta: emotion.PAD{P: rng.Float64() - 0.5, A: rng.Float64() - 0.5, D: rng.Float64() - 0.5},
		}
		n := rng.Intn(5)
		d := Def{ID: "x", Weight: rng.Float64() * 3, Curve: curves[rng.Intn(len(curves))]}
		for j := 0; j < n; j++ {
			d.Considerations = append(d.Considerations, Consideration{
				Kind:  Kind(rng.Intn(len(KindDictionary))),
				Axis:  AxisPleasure,
				Value: rng.Float64()*2 - 0.5,
				Curve: curves[rng.Intn(len(curves))],
			})
		}
		s := Score(&d, ctx, 0, 0)
		if s < 0 || s > 1 || math.IsNaN(s) {
			t.Fatalf("score %v out of range for %+v", s, d)
		}
	}
}

func TestScore_ZeroFactorVetoes(t *testing.T) {
	ctx := neutralContext()
	d := Def{
		ID:     "veto",
		Weight: 1,
		Considerations: []Consideration{
			Constant("high", 1),
			Constant("zero", 0),
			Constant("high2", 0.9),
		},
	}
	if s := Score(&d, ctx, 0, 0); s != 0 {
		t.Fatalf("expected veto, got %v", s)
	}
	d.Considerations[1] = Stat(KindEnergy, nil)
	ctx.energy = 0
	if s := Score(&d, ctx, 0, 0); s != 0 {
		t.Fatalf("expected veto from empty energy, got %v", s)
	}
}

func TestScore_SingleFactorIsUnchanged(t *testing.T) {
	for _, v := range []float64{0.1, 0.37, 0.5, 0.99} {
		if got := Makeup(v, 1); got != v {
			t.Fatalf("Makeup(%v, 1) = %v", v, got)
		}
		d := Def{ID: "one", Weight: 1, Considerations: []Consideration{Constant("v", v)}}
		if got := Score(&d, neutralContext(), 0, 0); math.Abs(got-v) > 1e-12 {
			t.Fatalf("Score with one factor %v = %v", v, got)
		}
	}
	// Two factors of 0.5: 0.25 + 0.75*0.5*0.25.
	if got := Makeup(0.25, 2); math.Abs(got-0.34375) > 1e-12 {
		t.Fatalf("Makeup(0.25, 2) = %v", got)
	}
}

func TestScore_EmptyFallsBackToHalfWeight(t *testing.T) {
	d := Def{ID: "empty", Weight: 0.8}
	if got := Score(&d, neutralContext(), 0, 0); math.Abs(got-0.4) > 1e-12 {
		t.Fatalf("fallback = %v, want 0.4", got)
	}
	d.Weight = 5
	if got := Score(&d, neutralContext(), 0, 0); got != 1 {
		t.Fatalf("fallback should clamp, got %v", got)
	}
}

func TestEngine_TieKeepsFirstCandidate(t *testing.T) {
	cat := mustCatalog(t,
		Def{ID: "first", Weight: 1, Considerations: []Consideration{Constant("c", 0.6)}},
		Def{ID: "second", Weight: 1, Considerations: []Consideration{Constant("c", 0.6)}},
		Def{ID: "third", Weight: 1, Considerations: []Consideration{Constant("c", 0.3)}},
	)
	for run := 0; run < 2; run++ {
		eng := NewEngine(NewRuntime(cat), personality.Profile{})
		d, err := eng.Decide([]int{0, 1, 2}, neutralContext(), 0)
		if err != nil {
			t.Fatalf("Decide err: %v", err)
		}
		if d.ID != "first" || d.Index != 0 {
			t.Fatalf("run %d picked %s", run, d.ID)
		}
		if !eng.Ready() {
			t.Fatalf("decision should be ready")
		}
		if _, ok := eng.Take(); !ok || eng.Ready() {
			t.Fatalf("Take should consume the decision")
		}
	}
}

func TestEngine_NoValidDecision(t *testing.T) {
	cat := mustCatalog(t,
		Def{ID: "vetoed", Weight: 1, Considerations: []Consideration{Constant("zero", 0)}},
		Def{ID: "weightless", Weight: 0},
	)
	eng := NewEngine(NewRuntime(cat), personality.Profile{})
	if _, err := eng.Decide(nil, neutralContext(), 0); !errors.Is(err, ErrNoValidDecision) {
		t.Fatalf("empty list err = %v", err)
	}
	d, err := eng.Decide([]int{0, 1}, neutralContext(), 0)
	if !errors.Is(err, ErrNoValidDecision) {
		t.Fatalf("all-zero err = %v", err)
	}
	if d.Index != -1 || eng.Ready() {
		t.Fatalf("no candidate should be selected: %+v", d)
	}
	for _, c := range d.Candidates {
		if !c.Vetoed() {
			t.Fatalf("candidate %s should be vetoed", c.ID)
		}
	}
}

func TestEngine_CooldownGates(t *testing.T) {
	cat := mustCatalog(t,
		Def{ID: "wave", Weight: 1, Cooldown: 3 * time.Second, Considerations: []Consideration{Constant("c", 0.7)}},
	)
	rt := NewRuntime(cat)
	eng := NewEngine(rt, personality.Profile{})
	ctx := neutralContext()

	t0 := 10 * time.Second
	if _, err := eng.Decide([]int{0}, ctx, t0); err != nil {
		t.Fatalf("Decide err: %v", err)
	}
	rt.Arm(0, t0)
	for _, at := range []time.Duration{t0, t0 + time.Second, t0 + 3*time.Second - time.Millisecond} {
		if s := rt.Evaluate(0, ctx, at); s != 0 {
			t.Fatalf("score at %v = %v during cooldown", at, s)
		}
		if !rt.CoolingDown(0, at) {
			t.Fatalf("CoolingDown(%v) = false", at)
		}
	}
	if s := rt.Evaluate(0, ctx, t0+3*time.Second); s == 0 {
		t.Fatalf("cooldown should expire at t+cooldown")
	}
	if rt.Slot(0).Score == 0 {
		t.Fatalf("slot score should cache the last evaluation")
	}
}

func TestEngine_BiasReordersCandidates(t *testing.T) {
	cat := mustCatalog(t,
		Def{ID: "quiet", Weight: 1, Considerations: []Consideration{Constant("c", 0.5)},
			Bias: personality.BiasTable{personality.Bias(personality.AxisEnergy, 0.9, 1.2)}},
		Def{ID: "loud", Weight: 1, Considerations: []Consideration{Constant("c", 0.5)},
			Bias: personality.BiasTable{personality.Bias(personality.AxisEnergy, 1.2, 0.9)}},
	)
	extravert := NewEngine(NewRuntime(cat), personality.Profile{Extraverted: true})
	introvert := NewEngine(NewRuntime(cat), personality.Profile{})

	d, err := extravert.Decide([]int{0, 1}, neutralContext(), 0)
	if err != nil || d.ID != "loud" {
		t.Fatalf("extravert picked %s (%v)", d.ID, err)
	}
	if math.Abs(d.Score-0.6) > 1e-12 {
		t.Fatalf("biased score = %v, want 0.6", d.Score)
	}
	d, err = introvert.Decide([]int{0, 1}, neutralContext(), 0)
	if err != nil || d.ID != "quiet" {
		t.Fatalf("introvert picked %s (%v)", d.ID, err)
	}
}

func TestEngine_BiasedScoreMayExceedOne(t *testing.T) {
	cat := mustCatalog(t,
		Def{ID: "boast", Weight: 1, Considerations: []Consideration{Constant("c", 1)},
			Bias: personality.BiasTable{personality.Bias(personality.AxisEnergy, 1.3, 1)}},
	)
	e := NewEngine(NewRuntime(cat), personality.Profile{Extraverted: true})
	d, err := e.Decide([]int{0}, neutralContext(), 0)
	if err != nil {
		t.Fatalf("Decide err: %v", err)
	}
	c := d.Candidates[0]
	if c.Raw != 1 || math.Abs(c.Final-1.3) > 1e-12 || d.Score != c.Final {
		t.Fatalf("raw=%v final=%v score=%v", c.Raw, c.Final, d.Score)
	}
}

func TestCatalog_Validation(t *testing.T) {
	if _, err := NewCatalog(Def{ID: "a"}, Def{ID: "a"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("duplicate err = %v", err)
	}
	var defErr *DefinitionError
	if _, err := NewCatalog(Def{ID: ""}); !errors.As(err, &defErr) {
		t.Fatalf("empty id err = %v", err)
	}
	bad := Def{ID: "bad", Considerations: []Consideration{{Kind: KindTriangle, Axis: AxisPleasure}}}
	if _, err := NewCatalog(bad); !errors.As(err, &defErr) || defErr.ID != "bad" {
		t.Fatalf("axis err = %v", err)
	}

	cat := mustCatalog(t,
		Def{ID: "eat", Pool: PoolUtility, Target: "market"},
		Def{ID: "hug", Pool: PoolEmotional, Preset: personality.PresetHugWarm},
		Def{ID: "work", Pool: PoolUtility},
	)
	if got := cat.Pool(PoolUtility); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("utility pool = %v", got)
	}
	if i, ok := cat.Lookup("hug"); !ok || i != 1 {
		t.Fatalf("Lookup(hug) = %d, %v", i, ok)
	}
	if len(cat.At(1).BiasTable()) == 0 {
		t.Fatalf("preset entries should back an empty explicit table")
	}
	if NewRuntime(cat).Slot(0).Target != "market" {
		t.Fatalf("slot target should start from the definition")
	}
}

func TestParseAxisFor_LettersFollowKind(t *testing.T) {
	cases := []struct {
		kind Kind
		in   string
		want Axis
	}{
		{KindPADAxis, "p", AxisPleasure},
		{KindPADDelta, "D", AxisDominance},
		{KindTriangle, "p", AxisPassion},
		{KindTriangle, "i", AxisIntimacy},
		{KindTriangle, "c", AxisCommitment},
		{KindTriangle, "passion", AxisPassion},
		{KindPADAxis, " Arousal ", AxisArousal},
	}
	for _, c := range cases {
		got, err := ParseAxisFor(c.kind, c.in)
		if err != nil || got != c.want {
			t.Fatalf("ParseAxisFor(%s, %q) = %s, %v; want %s", c.kind, c.in, got, err, c.want)
		}
	}
	if _, err := ParseAxisFor(KindTriangle, "a"); err == nil || !strings.Contains(err.Error(), "triangle axis") {
		t.Fatalf("arousal letter on a triangle: err = %v", err)
	}
	if _, err := ParseAxisFor(KindPADAxis, "c"); err == nil {
		t.Fatalf("commitment letter on a PAD kind should fail")
	}
	if got, err := ParseAxis("p"); err != nil || got != AxisPleasure {
		t.Fatalf("ParseAxis(p) = %s, %v", got, err)
	}
}
