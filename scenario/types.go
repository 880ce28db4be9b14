package scenario

import (
	"npcsim/agent"
	"npcsim/emotion"
	"npcsim/relationship"
)

// Spec is a scripted run: who is in the world, what the player does and
// when, and for how long the clock runs.
type Spec struct {
	Name        string                `json:"name"`
	TickMs      int                   `json:"tick_ms"`
	Ticks       int                   `json:"ticks"`
	StatusEvery int                   `json:"status_every,omitempty"` // status frames every N ticks; 0 = final only
	Locations   map[string]agent.Vec2 `json:"locations,omitempty"`
	Agents      []AgentSpec           `json:"agents"`
	Stimuli     []StimulusSpec        `json:"stimuli,omitempty"`
	Engagements []EngageSpec          `json:"engagements,omitempty"`
	RNG         *RNGSpec              `json:"rng,omitempty"`
}

// AgentSpec either references a built-in persona or spells the agent out.
// Explicit fields override the persona's.
type AgentSpec struct {
	ID          string                 `json:"id,omitempty"`
	Persona     string                 `json:"persona,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Personality string                 `json:"personality,omitempty"`
	Position    *agent.Vec2            `json:"position,omitempty"`
	Stats       *agent.StatValues      `json:"stats,omitempty"`
	Triangle    *relationship.Triangle `json:"triangle,omitempty"`
}

// StimulusSpec is applied before the world advances on Tick. An empty Agent
// addresses every agent.
type StimulusSpec struct {
	Tick      int     `json:"tick"`
	Agent     string  `json:"agent,omitempty"`
	Action    string  `json:"action"`
	Intensity float64 `json:"intensity,omitempty"`
}

type EngageSpec struct {
	Tick  int    `json:"tick"`
	Agent string `json:"agent"`
}

// RNGSpec appends Stimuli random player actions, drawn from a source seeded
// with Seed, to the scripted ones.
type RNGSpec struct {
	Seed    int64 `json:"seed"`
	Stimuli int   `json:"stimuli"`
}

const TapeVersion = 1

// Frame types.
const (
	FrameDecision   = "decision"
	FrameReaction   = "reaction"
	FrameEffectDone = "effect_done"
	FrameStatus     = "status"
)

type Tape struct {
	TapeVersion int      `json:"tape_version"`
	Name        string   `json:"name"`
	TickMs      int      `json:"tick_ms"`
	Ticks       int      `json:"ticks"`
	Agents      []string `json:"agents"`
	Frames      []Frame  `json:"frames"`
}

// Frame is one observed event. Exactly one of the payload pointers is set,
// matching Type.
type Frame struct {
	Type      string `json:"type"`
	Seq       uint64 `json:"seq"`
	Tick      int    `json:"tick"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Agent     string `json:"agent"`

	Decision *DecisionFrame    `json:"decision,omitempty"`
	Reaction *emotion.Reaction `json:"reaction,omitempty"`
	Effect   *EffectFrame      `json:"effect,omitempty"`
	Status   *agent.Status     `json:"status,omitempty"`
}

type DecisionFrame struct {
	Action     string           `json:"action"`
	Score      float64          `json:"score"`
	Candidates []CandidateFrame `json:"candidates"`
}

type CandidateFrame struct {
	Action string  `json:"action"`
	Raw    float64 `json:"raw"`
	Bias   float64 `json:"bias"`
	Final  float64 `json:"final"`
}

type EffectFrame struct {
	Action     string           `json:"action"`
	Pool       string           `json:"pool"`
	DurationMs int64            `json:"duration_ms"`
	Stats      agent.StatValues `json:"stats"`
}
