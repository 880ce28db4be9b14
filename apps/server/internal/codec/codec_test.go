package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"npcsim/agent"
	"npcsim/emotion"
	"npcsim/utility"
)

func TestEncodeStatus_BothFormats(t *testing.T) {
	status := []agent.Status{{ID: "mara", Name: "Mara", Personality: "ENFJ-A", PAD: emotion.PAD{P: 0.6, A: 0.4, D: 0.5}}}
	for _, f := range []Format{Binary, JSON} {
		data, err := EncodeStatus("world_1", 7, 1234, status, f)
		if err != nil {
			t.Fatalf("EncodeStatus err: %v", err)
		}
		env, err := Decode(data, f)
		if err != nil {
			t.Fatalf("Decode err: %v", err)
		}
		if env.Type != TypeStatus || env.Seq != 7 || env.TsMs != 1234 || env.WorldID != "world_1" {
			t.Fatalf("envelope header = %+v", env)
		}
		agents, ok := env.Payload["agents"].([]any)
		if !ok || len(agents) != 1 {
			t.Fatalf("agents payload = %#v", env.Payload["agents"])
		}
		first := agents[0].(map[string]any)
		if first["name"] != "Mara" || first["personality"] != "ENFJ-A" {
			t.Fatalf("agent payload = %#v", first)
		}
		pad := first["pad"].(map[string]any)
		if pad["p"] != 0.6 {
			t.Fatalf("pad payload = %#v", pad)
		}
	}
}

func TestEncodeStatus_EmptyAgentsIsList(t *testing.T) {
	data, err := EncodeStatus("w", 1, 0, nil, JSON)
	if err != nil {
		t.Fatalf("EncodeStatus err: %v", err)
	}
	if !strings.Contains(string(data), `"agents":[]`) && !strings.Contains(string(data), `"agents": []`) {
		t.Fatalf("json = %s", data)
	}
}

func TestEncodeReactionAndDecision(t *testing.T) {
	r := emotion.Reaction{Action: emotion.PlayerActionHug, Intent: emotion.IntentAffection, Intensity: 0.5}
	data, err := EncodeReaction("w", 2, 0, "teo", r, Binary)
	if err != nil {
		t.Fatalf("EncodeReaction err: %v", err)
	}
	env, err := Decode(data, Binary)
	if err != nil {
		t.Fatalf("Decode err: %v", err)
	}
	if env.Payload["agent"] != "teo" || env.Payload["action"] != "hug" || env.Payload["intent"] != emotion.IntentAffection.String() {
		t.Fatalf("reaction payload = %#v", env.Payload)
	}

	d := utility.Decision{ID: "eat", Score: 0.8, Candidates: []utility.Candidate{{ID: "eat", Raw: 0.8, Bias: 1, Final: 0.8}, {ID: "sleep"}}}
	data, err = EncodeDecision("w", 3, 0, "teo", d, JSON)
	if err != nil {
		t.Fatalf("EncodeDecision err: %v", err)
	}
	env, err = Decode(data, JSON)
	if err != nil {
		t.Fatalf("Decode err: %v", err)
	}
	if env.Type != TypeDecision || env.Payload["action"] != "eat" || len(env.Payload["candidates"].([]any)) != 2 {
		t.Fatalf("decision payload = %#v", env.Payload)
	}
}

func TestToJSON(t *testing.T) {
	data, err := EncodeError("w", 9, 0, "unknown_agent", "no such agent", Binary)
	if err != nil {
		t.Fatalf("EncodeError err: %v", err)
	}
	js, err := ToJSON(data)
	if err != nil {
		t.Fatalf("ToJSON err: %v", err)
	}
	env, err := Decode(js, JSON)
	if err != nil {
		t.Fatalf("Decode err: %v", err)
	}
	if env.Type != TypeError || env.Payload["code"] != "unknown_agent" {
		t.Fatalf("error envelope = %+v", env)
	}
	if _, err := ToJSON([]byte{0xff, 0x01}); !errors.Is(err, ErrBadEnvelope) {
		t.Fatalf("ToJSON garbage err = %v", err)
	}
}

func TestCommandRoundTrip(t *testing.T) {
	cases := []Command{
		{Type: CmdJoin, Seq: 1, WorldID: "world_2"},
		{Type: CmdStimulus, Seq: 2, Agent: "mara", Action: emotion.PlayerActionKeepPromise, Intensity: 0.75},
		{Type: CmdStimulus, Seq: 3, Action: emotion.PlayerActionHug},
		{Type: CmdEngage, Seq: 4, Agent: "teo"},
		{Type: CmdSpawn, Seq: 5, Persona: "rook", Agent: "rook-2"},
		{Type: CmdDespawn, Seq: 6, Agent: "rook-2"},
	}
	for _, f := range []Format{Binary, JSON} {
		for _, want := range cases {
			data, err := EncodeCommand(want, f)
			if err != nil {
				t.Fatalf("EncodeCommand(%s) err: %v", want.Type, err)
			}
			got, err := DecodeCommand(data, f)
			if err != nil {
				t.Fatalf("DecodeCommand(%s) err: %v", want.Type, err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("%s round trip (-want +got):\n%s", want.Type, diff)
			}
		}
	}
}

func TestDecodeCommand_Errors(t *testing.T) {
	cases := []struct {
		name string
		json string
		want error
	}{
		{"garbage", `not json`, ErrBadEnvelope},
		{"no type", `{"seq": 1}`, ErrBadEnvelope},
		{"unknown", `{"type": "dance"}`, ErrUnknownCommand},
		{"bad action", `{"type": "stimulus", "payload": {"action": "moonwalk"}}`, ErrBadEnvelope},
		{"bad intensity", `{"type": "stimulus", "payload": {"action": "hug", "intensity": 3}}`, ErrBadEnvelope},
		{"engage no agent", `{"type": "engage"}`, ErrBadEnvelope},
		{"spawn no persona", `{"type": "spawn", "payload": {}}`, ErrBadEnvelope},
	}
	for _, c := range cases {
		if _, err := DecodeCommand([]byte(c.json), JSON); !errors.Is(err, c.want) {
			t.Fatalf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}
