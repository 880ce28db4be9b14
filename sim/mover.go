package sim

import (
	"time"

	"npcsim/agent"
)

// PointMover walks in a straight line at constant speed. It stands in for a
// navigation mesh: no obstacles, no paths.
type PointMover struct {
	pos   agent.Vec2
	dest  agent.Vec2
	speed float64 // units per second
}

func NewPointMover(at agent.Vec2, speed float64) *PointMover {
	return &PointMover{pos: at, dest: at, speed: speed}
}

func (m *PointMover) SetDestination(p agent.Vec2) { m.dest = p }
func (m *PointMover) IsArrived() bool             { return m.pos == m.dest }
func (m *PointMover) RemainingDistance() float64  { return m.pos.Distance(m.dest) }
func (m *PointMover) Position() agent.Vec2        { return m.pos }

// Advance moves toward the destination by speed x dt, snapping on arrival.
func (m *PointMover) Advance(dt time.Duration) {
	if m.pos == m.dest || dt <= 0 {
		return
	}
	step := m.speed * dt.Seconds()
	d := m.dest.Sub(m.pos)
	dist := d.Len()
	if dist <= step {
		m.pos = m.dest
		return
	}
	m.pos = m.pos.Add(d.Scale(step / dist))
}
