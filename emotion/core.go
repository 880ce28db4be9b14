package emotion

import (
	"fmt"
	"time"

	"npcsim/relationship"
)

// Config seeds a Core.
type Config struct {
	Initial  PAD
	Triangle relationship.Triangle
}

// DefaultConfig starts at the neutral point with a weak, undecided
// relationship.
func DefaultConfig() Config {
	return Config{
		Initial:  Neutral,
		Triangle: relationship.Triangle{Intimacy: 0.4, Passion: 0.4, Commitment: 0.4},
	}
}

// Reaction describes one processed stimulus.
type Reaction struct {
	Action       PlayerAction             `json:"action"`
	Intent       Intent                   `json:"intent"`
	Modifier     float64                  `json:"modifier"`
	Intensity    float64                  `json:"intensity"`
	Delta        PAD                      `json:"delta"`
	Transition   *relationship.Transition `json:"transition,omitempty"`
	Triangle     relationship.Triangle    `json:"triangle"`
	Relationship relationship.Type        `json:"relationship"`
	PAD          PAD                      `json:"pad"`
	Emotion      Octant                   `json:"emotion"`
}

func (r Reaction) String() string {
	s := fmt.Sprintf("%s (%s) delta[%s] -> %s %s", r.Action, r.Intent, r.Delta, r.PAD, r.Emotion)
	if r.Transition != nil {
		s += fmt.Sprintf(" relationship %s -> %s", r.Transition.From, r.Transition.To)
	}
	return s
}

// Core owns one agent's PAD state and relationship. It is not safe for
// concurrent use; the owning agent is the only writer.
type Core struct {
	pad PAD
	rel *relationship.State

	emotion    Octant
	lastDelta  PAD
	lastIntent Intent
	lastAction PlayerAction
	stimuli    int
}

func NewCore(cfg Config) *Core {
	c := &Core{
		pad:        cfg.Initial.finite().Clamp(),
		rel:        relationship.NewState(cfg.Triangle),
		lastIntent: IntentBonding,
	}
	c.emotion = Classify(c.pad)
	return c
}

func (c *Core) PAD() PAD                            { return c.pad }
func (c *Core) Emotion() Octant                     { return c.emotion }
func (c *Core) LastDelta() PAD                      { return c.lastDelta }
func (c *Core) LastIntent() Intent                  { return c.lastIntent }
func (c *Core) LastAction() PlayerAction            { return c.lastAction }
func (c *Core) Triangle() relationship.Triangle     { return c.rel.Triangle() }
func (c *Core) RelationshipType() relationship.Type { return c.rel.Type() }
func (c *Core) DescribeRelationship() string        { return c.rel.Describe() }
func (c *Core) StimulusCount() int                  { return c.stimuli }

// ApplyStimulus runs the full pipeline for one external action: intent
// lookup, relationship update, scaled and amplified PAD delta, clamp and
// reclassification.
func (c *Core) ApplyStimulus(action PlayerAction, intensity float64) Reaction {
	intent := IntentFor(action)
	modifier := IntensityModifier(action)
	intensity = clamp01(intensity)

	r := Reaction{Action: action, Intent: intent, Modifier: modifier, Intensity: intensity}

	if tr, changed := c.rel.Apply(BaseRelationshipDelta(intent).Scale(modifier)); changed {
		c.pad = c.pad.Add(fromDelta(tr.Delta)).Clamp()
		r.Transition = &tr
	}

	raw := BasePADDelta(intent).Scale(modifier * intensity)
	delta := fromDelta(relationship.Amplify(raw.toDelta(), c.rel.Triangle()))
	c.pad = c.pad.Add(delta).Clamp()
	c.emotion = Classify(c.pad)

	c.lastDelta = delta
	c.lastIntent = intent
	c.lastAction = action
	c.stimuli++

	r.Delta = delta
	r.Triangle = c.rel.Triangle()
	r.Relationship = c.rel.Type()
	r.PAD = c.pad
	r.Emotion = c.emotion
	return r
}

// Adjust applies a small external nudge, such as a stat change, without
// touching the stimulus bookkeeping.
func (c *Core) Adjust(d PAD) {
	c.pad = c.pad.Add(d.finite()).Clamp()
	c.emotion = Classify(c.pad)
}

// Drift pulls PAD toward target at rate per second.
func (c *Core) Drift(target PAD, rate float64, dt time.Duration) {
	if rate <= 0 || dt <= 0 {
		return
	}
	c.pad = c.pad.Lerp(target.finite().Clamp(), rate*dt.Seconds()).Clamp()
	c.emotion = Classify(c.pad)
}

// Settle moves PAD a fraction t of the way toward target in one step.
func (c *Core) Settle(target PAD, t float64) {
	c.pad = c.pad.Lerp(target.finite().Clamp(), t).Clamp()
	c.emotion = Classify(c.pad)
}
