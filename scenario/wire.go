package scenario

import (
	"encoding/json"
	"fmt"
)

// WireTape is the camelCase form consumed by browser clients. Each frame's
// payload is pre-encoded so clients can switch on Type before decoding it.
type WireTape struct {
	TapeVersion int         `json:"tapeVersion"`
	Name        string      `json:"name"`
	TickMs      int         `json:"tickMs"`
	Ticks       int         `json:"ticks"`
	Agents      []string    `json:"agents"`
	Frames      []WireFrame `json:"frames"`
}

type WireFrame struct {
	Type      string          `json:"type"`
	Seq       uint64          `json:"seq"`
	Tick      int             `json:"tick"`
	ElapsedMs int64           `json:"elapsedMs"`
	Agent     string          `json:"agent"`
	Payload   json.RawMessage `json:"payload"`
}

func ToWire(tape *Tape) (*WireTape, error) {
	if tape == nil {
		return nil, nil
	}
	out := &WireTape{
		TapeVersion: tape.TapeVersion,
		Name:        tape.Name,
		TickMs:      tape.TickMs,
		Ticks:       tape.Ticks,
		Agents:      append([]string(nil), tape.Agents...),
		Frames:      make([]WireFrame, 0, len(tape.Frames)),
	}
	for _, f := range tape.Frames {
		payload, err := f.payload()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", f.Seq, err)
		}
		out.Frames = append(out.Frames, WireFrame{
			Type:      f.Type,
			Seq:       f.Seq,
			Tick:      f.Tick,
			ElapsedMs: f.ElapsedMs,
			Agent:     f.Agent,
			Payload:   payload,
		})
	}
	return out, nil
}

func (f Frame) payload() (json.RawMessage, error) {
	var v any
	switch f.Type {
	case FrameDecision:
		v = f.Decision
	case FrameReaction:
		v = f.Reaction
	case FrameEffectDone:
		v = f.Effect
	case FrameStatus:
		v = f.Status
	default:
		return nil, fmt.Errorf("unknown frame type %q", f.Type)
	}
	return json.Marshal(v)
}
