package relationship

import (
	"math"
	"math/rand"
	"testing"
)

func TestClassify_Examples(t *testing.T) {
	cases := []struct {
		tri  Triangle
		want Type
	}{
		{Triangle{0.8, 0.8, 0.8}, TypePartner},
		{Triangle{0.2, 0.2, 0.2}, TypeDislike},
		{Triangle{0.5, 0.5, 0.5}, TypeStranger},
		{Triangle{0.8, 0.5, 0.8}, TypeCloseFriend},
		{Triangle{0.8, 0.4, 0.5}, TypeFriend},
		{Triangle{0.5, 0.9, 0.4}, TypeCrush},
		{Triangle{0.8, 0.2, 0.5}, TypeStranger},
		{Triangle{0.3, 0.3, 0.3}, TypeDislike},
		{Triangle{0.7, 0.7, 0.7}, TypePartner},
	}
	for _, tc := range cases {
		if got := Classify(tc.tri); got != tc.want {
			t.Fatalf("Classify(%+v) = %s, want %s", tc.tri, got, tc.want)
		}
	}
}

func TestRank_Order(t *testing.T) {
	if TypeDislike.Rank() != -1 || TypeStranger.Rank() != 0 || TypePartner.Rank() != 5 {
		t.Fatalf("unexpected ranks: %d %d %d", TypeDislike.Rank(), TypeStranger.Rank(), TypePartner.Rank())
	}
}

func TestTransitionDelta(t *testing.T) {
	if d := TransitionDelta(TypeFriend, TypeFriend); !d.IsZero() {
		t.Fatalf("same type should yield zero delta, got %+v", d)
	}
	up := TransitionDelta(TypeStranger, TypePartner) // k = 0.5
	if math.Abs(up.P-0.075) > 1e-9 || math.Abs(up.A-0.05) > 1e-9 || math.Abs(up.D-0.04) > 1e-9 {
		t.Fatalf("upgrade delta = %+v", up)
	}
	down := TransitionDelta(TypeStranger, TypeDislike) // k = 0.1
	if math.Abs(down.P+0.02) > 1e-9 || math.Abs(down.A-0.015) > 1e-9 || math.Abs(down.D+0.01) > 1e-9 {
		t.Fatalf("downgrade delta = %+v", down)
	}
}

func TestState_ApplyEmitsTransitionOnce(t *testing.T) {
	s := NewState(Triangle{0.65, 0.65, 0.65})
	if s.Type() != TypeStranger {
		t.Fatalf("initial type = %s", s.Type())
	}
	tr, changed := s.Apply(Triangle{0.1, 0.1, 0.1})
	if !changed {
		t.Fatalf("expected a transition")
	}
	if tr.From != TypeStranger || tr.To != TypePartner || tr.Delta.IsZero() {
		t.Fatalf("unexpected transition %+v", tr)
	}
	if _, changed := s.Apply(Triangle{0.01, 0, 0}); changed {
		t.Fatalf("no transition expected while type holds")
	}
}

func TestState_ClampsTriangle(t *testing.T) {
	s := NewState(Triangle{2, -1, math.NaN()})
	tri := s.Triangle()
	if tri.Intimacy != 1 || tri.Passion != 0 || tri.Commitment != 0 {
		t.Fatalf("initial clamp failed: %+v", tri)
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		s.Apply(Triangle{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1})
		tri = s.Triangle()
		for _, v := range []float64{tri.Intimacy, tri.Passion, tri.Commitment} {
			if v < 0 || v > 1 {
				t.Fatalf("triangle out of range: %+v", tri)
			}
		}
	}
}

func TestAmplify_ClampsToSafetyBand(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		tri := Triangle{rng.Float64(), rng.Float64(), rng.Float64()}
		d := Delta{P: rng.Float64()*4 - 2, A: rng.Float64()*4 - 2, D: rng.Float64()*4 - 2}
		out := Amplify(d, tri)
		for _, v := range []float64{out.P, out.A, out.D} {
			if v < -SafetyBand || v > SafetyBand {
				t.Fatalf("Amplify(%+v, %+v) = %+v outside band", d, tri, out)
			}
		}
	}
}

func TestAmplify_ScalesByTriangle(t *testing.T) {
	out := Amplify(Delta{P: 0.1, A: 0.1, D: 0.1}, Triangle{0.5, 0.5, 0.5})
	if math.Abs(out.P-0.14) > 1e-9 || math.Abs(out.A-0.13) > 1e-9 || math.Abs(out.D-0.13) > 1e-9 {
		t.Fatalf("unexpected amplification %+v", out)
	}
}
