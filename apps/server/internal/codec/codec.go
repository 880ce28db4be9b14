// Package codec builds the envelopes exchanged over the websocket. Every
// envelope is a google.protobuf.Struct with type, seq, ts_ms, world_id and
// payload fields; binary frames carry proto bytes and text frames carry the
// protojson rendering of the same message.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"npcsim/agent"
	"npcsim/emotion"
	"npcsim/utility"
)

// Server to client envelope types.
const (
	TypeStatus     = "status"
	TypeReaction   = "reaction"
	TypeDecision   = "decision"
	TypeEffectDone = "effect_done"
	TypeJoined     = "joined"
	TypeError      = "error"
)

var (
	ErrBadEnvelope    = errors.New("malformed envelope")
	ErrUnknownCommand = errors.New("unknown command")
)

// Envelope is the decoded form of the wire message.
type Envelope struct {
	Type    string
	Seq     uint64
	TsMs    int64
	WorldID string
	Payload map[string]any
}

// Format selects how an envelope is serialized.
type Format int

const (
	Binary Format = iota
	JSON
)

// Encode turns payload into a Struct by way of its JSON form, so payloads
// keep the field names their json tags declare.
func Encode(typ, worldID string, seq uint64, tsMs int64, payload any) (*structpb.Struct, error) {
	body, err := toMap(payload)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{
		"type":     typ,
		"seq":      float64(seq),
		"ts_ms":    float64(tsMs),
		"world_id": worldID,
		"payload":  body,
	})
}

func Marshal(env *structpb.Struct, f Format) ([]byte, error) {
	if f == JSON {
		return protojson.Marshal(env)
	}
	return proto.Marshal(env)
}

// Decode parses either format back into an Envelope.
func Decode(data []byte, f Format) (*Envelope, error) {
	st := &structpb.Struct{}
	var err error
	if f == JSON {
		err = protojson.Unmarshal(data, st)
	} else {
		err = proto.Unmarshal(data, st)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	m := st.AsMap()
	env := &Envelope{
		Type:    stringField(m, "type"),
		Seq:     uint64(numberField(m, "seq")),
		TsMs:    int64(numberField(m, "ts_ms")),
		WorldID: stringField(m, "world_id"),
	}
	if p, ok := m["payload"].(map[string]any); ok {
		env.Payload = p
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrBadEnvelope)
	}
	return env, nil
}

// ToJSON re-renders a binary envelope as protojson, for logs and journals.
func ToJSON(data []byte) ([]byte, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	return protojson.Marshal(st)
}

func EncodeStatus(worldID string, seq uint64, tsMs int64, agents []agent.Status, f Format) ([]byte, error) {
	if agents == nil {
		agents = []agent.Status{}
	}
	return encode(TypeStatus, worldID, seq, tsMs, map[string]any{"agents": agents}, f)
}

func EncodeReaction(worldID string, seq uint64, tsMs int64, agentID string, r emotion.Reaction, f Format) ([]byte, error) {
	return encode(TypeReaction, worldID, seq, tsMs, struct {
		Agent string `json:"agent"`
		emotion.Reaction
	}{agentID, r}, f)
}

// DecisionPayload is the wire form of a utility.Decision. Score and each
// candidate's Final carry the personality bias and may exceed 1; Raw stays in
// [0,1].
type DecisionPayload struct {
	Agent      string             `json:"agent"`
	Action     string             `json:"action"`
	Score      float64            `json:"score"`
	Candidates []CandidatePayload `json:"candidates"`
}

type CandidatePayload struct {
	Action string  `json:"action"`
	Raw    float64 `json:"raw"`
	Bias   float64 `json:"bias"`
	Final  float64 `json:"final"`
}

func NewDecisionPayload(agentID string, d utility.Decision) DecisionPayload {
	p := DecisionPayload{Agent: agentID, Action: d.ID, Score: d.Score, Candidates: make([]CandidatePayload, 0, len(d.Candidates))}
	for _, c := range d.Candidates {
		p.Candidates = append(p.Candidates, CandidatePayload{Action: c.ID, Raw: c.Raw, Bias: c.Bias, Final: c.Final})
	}
	return p
}

func EncodeDecision(worldID string, seq uint64, tsMs int64, agentID string, d utility.Decision, f Format) ([]byte, error) {
	return encode(TypeDecision, worldID, seq, tsMs, NewDecisionPayload(agentID, d), f)
}

type EffectPayload struct {
	Agent      string           `json:"agent"`
	Action     string           `json:"action"`
	Pool       string           `json:"pool"`
	DurationMs int64            `json:"durationMs"`
	Stats      agent.StatValues `json:"stats"`
}

func EncodeEffectDone(worldID string, seq uint64, tsMs int64, p EffectPayload, f Format) ([]byte, error) {
	return encode(TypeEffectDone, worldID, seq, tsMs, p, f)
}

type JoinedPayload struct {
	WorldID  string   `json:"worldId"`
	Name     string   `json:"name"`
	PlayerID uint64   `json:"playerId"`
	Agents   []string `json:"agents"`
}

func EncodeJoined(seq uint64, tsMs int64, p JoinedPayload, f Format) ([]byte, error) {
	return encode(TypeJoined, p.WorldID, seq, tsMs, p, f)
}

func EncodeError(worldID string, seq uint64, tsMs int64, code, message string, f Format) ([]byte, error) {
	return encode(TypeError, worldID, seq, tsMs, map[string]string{"code": code, "message": message}, f)
}

func encode(typ, worldID string, seq uint64, tsMs int64, payload any, f Format) ([]byte, error) {
	env, err := Encode(typ, worldID, seq, tsMs, payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typ, err)
	}
	return Marshal(env, f)
}

func toMap(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("payload must be an object: %w", err)
	}
	return m, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func numberField(m map[string]any, key string) float64 {
	n, _ := m[key].(float64)
	return n
}
