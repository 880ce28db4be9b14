// Package journal is an append-only audit trail of what agents decided and
// how they reacted. It is never read back to restore a world.
package journal

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type Kind string

const (
	KindDecision   Kind = "decision"
	KindReaction   Kind = "reaction"
	KindEffectDone Kind = "effect_done"
	KindSpawn      Kind = "spawn"
	KindDespawn    Kind = "despawn"
)

var ErrInvalidEntry = errors.New("invalid journal entry")

// Entry is one journaled event. EnvelopeB64 holds the proto-encoded envelope
// that was broadcast for it, when there was one.
type Entry struct {
	RunID       string `json:"run_id"`
	WorldID     string `json:"world_id"`
	AgentID     string `json:"agent_id"`
	Seq         uint64 `json:"seq"`
	Kind        Kind   `json:"kind"`
	Summary     string `json:"summary"`
	EnvelopeB64 string `json:"envelope_b64,omitempty"`
	TsMs        int64  `json:"ts_ms"`
}

func (e Entry) validate() error {
	if e.RunID == "" || e.WorldID == "" || e.Kind == "" {
		return ErrInvalidEntry
	}
	return nil
}

type Service interface {
	Close() error
	Append(ctx context.Context, e Entry) error
	// ListRecent returns newest first. Empty worldID or agentID match any.
	ListRecent(ctx context.Context, worldID, agentID string, limit int) ([]Entry, error)
	// ListByRun returns one run in seq order.
	ListByRun(ctx context.Context, runID string) ([]Entry, error)
}

type noopService struct{}

func (noopService) Close() error                        { return nil }
func (noopService) Append(context.Context, Entry) error { return nil }

func (noopService) ListRecent(context.Context, string, string, int) ([]Entry, error) {
	return []Entry{}, nil
}

func (noopService) ListByRun(context.Context, string) ([]Entry, error) {
	return []Entry{}, nil
}

// MemoryService keeps the newest entries in process memory, dropping the
// oldest once capacity is reached.
type MemoryService struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

func NewMemoryService(capacity int) *MemoryService {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &MemoryService{capacity: capacity}
}

func (m *MemoryService) Close() error { return nil }

func (m *MemoryService) Append(_ context.Context, e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.entries {
		if x.RunID == e.RunID && x.Seq == e.Seq {
			return nil
		}
	}
	if len(m.entries) == m.capacity {
		m.entries = append(m.entries[:0], m.entries[1:]...)
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *MemoryService) ListRecent(_ context.Context, worldID, agentID string, limit int) ([]Entry, error) {
	limit = clampLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.entries[i]
		if worldID != "" && e.WorldID != worldID {
			continue
		}
		if agentID != "" && e.AgentID != agentID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MemoryService) ListByRun(_ context.Context, runID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Entry{}
	for _, e := range m.entries {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}
