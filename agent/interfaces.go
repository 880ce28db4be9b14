// Package agent drives one NPC: a decide/move/execute/idle state machine on
// top of the utility engine, the emotional core and its stat store.
package agent

import (
	"fmt"
	"math"
)

// Vec2 is a point on the ground plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Add(o Vec2) Vec2         { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Scale(k float64) Vec2    { return Vec2{X: v.X * k, Y: v.Y * k} }
func (v Vec2) Len() float64            { return math.Hypot(v.X, v.Y) }
func (v Vec2) Distance(o Vec2) float64 { return v.Sub(o).Len() }
func (v Vec2) String() string          { return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y) }

// Mover walks the agent to a destination. The controller only sets targets
// and polls arrival; it never computes a path.
type Mover interface {
	SetDestination(p Vec2)
	IsArrived() bool
	RemainingDistance() float64
	Position() Vec2
}

// Animator receives presentation cues while effects run. Optional.
type Animator interface {
	SetFlag(name string, v bool)
	SetFloat(name string, v float64)
	Trigger(name string)
}

type NopAnimator struct{}

func (NopAnimator) SetFlag(string, bool)     {}
func (NopAnimator) SetFloat(string, float64) {}
func (NopAnimator) Trigger(string)           {}

// Display shows the periodic status text. Optional.
type Display interface {
	ShowStatus(text string)
}

type NopDisplay struct{}

func (NopDisplay) ShowStatus(string) {}

// Locator resolves named targets such as "home" or "market".
type Locator interface {
	Locate(name string) (Vec2, bool)
}
