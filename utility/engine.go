package utility

import (
	"time"

	"npcsim/personality"
)

// Candidate is one scored entry of a decision pass. Raw is the action's
// score in [0,1]; Final is Raw times the personality Bias and is not bounded
// by 1 (a 1.3 multiplier on a perfect score gives 1.3).
type Candidate struct {
	Index int
	ID    string
	Raw   float64
	Bias  float64
	Final float64
}

// Vetoed reports whether the candidate was zeroed out.
func (c Candidate) Vetoed() bool { return c.Final <= 0 }

// Decision is the winner of a decision pass plus every candidate's score.
type Decision struct {
	Index int
	ID    string
	// Score is the winner's biased Final, not its Raw score, so it can
	// exceed 1.
	Score      float64
	Candidates []Candidate
}

// Engine picks the highest scoring candidate for one agent.
type Engine struct {
	runtime *Runtime
	profile personality.Profile
	bias    []personality.BiasTable

	pending *Decision
}

func NewEngine(rt *Runtime, profile personality.Profile) *Engine {
	bias := make([]personality.BiasTable, rt.catalog.Len())
	for i := range bias {
		bias[i] = rt.catalog.At(i).BiasTable()
	}
	return &Engine{runtime: rt, profile: profile, bias: bias}
}

func (e *Engine) Runtime() *Runtime            { return e.runtime }
func (e *Engine) Profile() personality.Profile { return e.profile }

// BiasFor returns the personality multiplier applied to action i.
func (e *Engine) BiasFor(i int) float64 { return e.bias[i].Eval(e.profile) }

// Decide scores every candidate index and keeps the first strictly best one.
// Ties keep the earlier candidate. When nothing scores above zero the
// pending decision is cleared and ErrNoValidDecision is returned.
func (e *Engine) Decide(candidates []int, ctx Context, now time.Duration) (Decision, error) {
	e.pending = nil
	d := Decision{Index: -1, Candidates: make([]Candidate, 0, len(candidates))}
	best := 0.0
	for _, i := range candidates {
		raw := e.runtime.Evaluate(i, ctx, now)
		bias := e.BiasFor(i)
		c := Candidate{Index: i, ID: e.runtime.catalog.At(i).ID, Raw: raw, Bias: bias, Final: raw * bias}
		d.Candidates = append(d.Candidates, c)
		if c.Final > best {
			best = c.Final
			d.Index = i
			d.ID = c.ID
			d.Score = c.Final
		}
	}
	if d.Index < 0 {
		return d, ErrNoValidDecision
	}
	e.pending = &d
	return d, nil
}

// Ready reports whether a decision is waiting to be taken.
func (e *Engine) Ready() bool { return e.pending != nil }

// Take consumes the pending decision.
func (e *Engine) Take() (Decision, bool) {
	if e.pending == nil {
		return Decision{Index: -1}, false
	}
	d := *e.pending
	e.pending = nil
	return d, true
}

// Reset drops any pending decision.
func (e *Engine) Reset() { e.pending = nil }
