package agent

import (
	"sync"

	"npcsim/emotion"
)

// DefaultIntensity is used when a stimulus is raised without one.
const DefaultIntensity = 0.5

// Stimulus is one player action aimed at an agent. An empty Agent addresses
// every agent.
type Stimulus struct {
	Agent     string               `json:"agent,omitempty"`
	Action    emotion.PlayerAction `json:"action"`
	Intensity float64              `json:"intensity"`
}

// InputSource produces stimuli for the simulation loop to apply.
type InputSource interface {
	Drain() []Stimulus
}

// Bus is an in-process InputSource. Publish may be called from any
// goroutine; the simulation drains the queue on its own tick.
type Bus struct {
	mu    sync.Mutex
	queue []Stimulus
}

func NewBus() *Bus { return &Bus{} }

// Publish queues s, filling in DefaultIntensity when none is set.
func (b *Bus) Publish(s Stimulus) {
	if s.Intensity <= 0 {
		s.Intensity = DefaultIntensity
	}
	b.mu.Lock()
	b.queue = append(b.queue, s)
	b.mu.Unlock()
}

// Raise broadcasts action to every agent at the default intensity.
func (b *Bus) Raise(action emotion.PlayerAction) {
	b.Publish(Stimulus{Action: action})
}

// Drain returns and clears the queued stimuli in publish order.
func (b *Bus) Drain() []Stimulus {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}
