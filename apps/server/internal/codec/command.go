package codec

import (
	"fmt"

	"npcsim/emotion"
)

type CommandType string

// Client to server commands.
const (
	CmdJoin     CommandType = "join"
	CmdLeave    CommandType = "leave"
	CmdStimulus CommandType = "stimulus"
	CmdEngage   CommandType = "engage"
	CmdSpawn    CommandType = "spawn"
	CmdDespawn  CommandType = "despawn"
)

// Command is a decoded client request. Fields not used by Type are zero.
type Command struct {
	Type      CommandType
	Seq       uint64
	WorldID   string
	Agent     string // empty on a stimulus addresses every agent
	Action    emotion.PlayerAction
	Intensity float64
	Persona   string
}

// DecodeCommand parses and validates one client envelope.
func DecodeCommand(data []byte, f Format) (Command, error) {
	env, err := Decode(data, f)
	if err != nil {
		return Command{}, err
	}
	p := env.Payload
	if p == nil {
		p = map[string]any{}
	}
	cmd := Command{
		Type:    CommandType(env.Type),
		Seq:     env.Seq,
		WorldID: env.WorldID,
		Agent:   stringField(p, "agent"),
	}
	switch cmd.Type {
	case CmdJoin, CmdLeave:
	case CmdStimulus:
		name := stringField(p, "action")
		a, err := emotion.ParsePlayerAction(name)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
		}
		cmd.Action = a
		cmd.Intensity = numberField(p, "intensity")
		if cmd.Intensity < 0 || cmd.Intensity > 1 {
			return Command{}, fmt.Errorf("%w: intensity %v outside [0,1]", ErrBadEnvelope, cmd.Intensity)
		}
	case CmdEngage, CmdDespawn:
		if cmd.Agent == "" {
			return Command{}, fmt.Errorf("%w: %s needs an agent", ErrBadEnvelope, cmd.Type)
		}
	case CmdSpawn:
		cmd.Persona = stringField(p, "persona")
		if cmd.Persona == "" {
			return Command{}, fmt.Errorf("%w: spawn needs a persona", ErrBadEnvelope)
		}
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Type)
	}
	return cmd, nil
}

// EncodeCommand is the client side of DecodeCommand.
func EncodeCommand(cmd Command, f Format) ([]byte, error) {
	payload := map[string]any{}
	if cmd.Agent != "" {
		payload["agent"] = cmd.Agent
	}
	if cmd.Action != emotion.PlayerActionNone {
		payload["action"] = cmd.Action.String()
	}
	if cmd.Intensity != 0 {
		payload["intensity"] = cmd.Intensity
	}
	if cmd.Persona != "" {
		payload["persona"] = cmd.Persona
	}
	return encode(string(cmd.Type), cmd.WorldID, cmd.Seq, 0, payload, f)
}
