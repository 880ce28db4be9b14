package emotion

import (
	"fmt"
	"strings"
)

// Intent is the coarse category a stimulus maps to.
type Intent byte

const (
	IntentAffection    Intent = 0
	IntentDesire       Intent = 1
	IntentBonding      Intent = 2
	IntentTrust        Intent = 3
	IntentRespect      Intent = 4
	IntentPlayfulness  Intent = 5
	IntentSecurity     Intent = 6
	IntentConflict     Intent = 7
	IntentManipulation Intent = 8
)

var IntentDictionary = map[Intent]string{
	IntentAffection:    "affection",
	IntentDesire:       "desire",
	IntentBonding:      "bonding",
	IntentTrust:        "trust",
	IntentRespect:      "respect",
	IntentPlayfulness:  "playfulness",
	IntentSecurity:     "security",
	IntentConflict:     "conflict",
	IntentManipulation: "manipulation",
}

// Intents lists every intent in declaration order.
var Intents = []Intent{
	IntentAffection, IntentDesire, IntentBonding, IntentTrust, IntentRespect,
	IntentPlayfulness, IntentSecurity, IntentConflict, IntentManipulation,
}

func (i Intent) String() string {
	if s, ok := IntentDictionary[i]; ok {
		return s
	}
	return fmt.Sprintf("intent(%d)", i)
}

// ParseIntent accepts the lower-case intent name.
func ParseIntent(s string) (Intent, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range IntentDictionary {
		if name == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown intent %q", s)
}

// PlayerAction is the discrete stimulus vocabulary raised by input sources.
type PlayerAction byte

const (
	PlayerActionNone PlayerAction = iota

	// Affection
	PlayerActionComplimentLooks
	PlayerActionHug
	PlayerActionHoldHands
	PlayerActionComfort
	PlayerActionEncourage
	PlayerActionGiftSmall

	// Desire
	PlayerActionKissQuick
	PlayerActionKissDeep
	PlayerActionFlirt
	PlayerActionSeduce
	PlayerActionLongFor

	// Bonding
	PlayerActionInviteActivity
	PlayerActionShareStory
	PlayerActionReminisce
	PlayerActionCelebrate
	PlayerActionSupport

	// Trust
	PlayerActionApology
	PlayerActionConfide
	PlayerActionForgive
	PlayerActionAskHelp
	PlayerActionPromise

	// Respect
	PlayerActionComplimentSkill
	PlayerActionAcknowledge
	PlayerActionAdmire
	PlayerActionDefend
	PlayerActionPraise

	// Playfulness
	PlayerActionTeasePlayful
	PlayerActionJoke
	PlayerActionChallenge
	PlayerActionSurprise
	PlayerActionTrick

	// Security
	PlayerActionKeepPromise
	PlayerActionReassure
	PlayerActionProtect
	PlayerActionShelter
	PlayerActionSteady

	// Conflict
	PlayerActionTeaseHarsh
	PlayerActionConfront
	PlayerActionCriticize
	PlayerActionWithdraw
	PlayerActionDemand

	// Manipulation
	PlayerActionGiftLarge
	PlayerActionGuiltTrip
	PlayerActionFlatter
	PlayerActionPressure
	PlayerActionWithhold
)

var PlayerActionDictionary = map[PlayerAction]string{
	PlayerActionNone:            "none",
	PlayerActionComplimentLooks: "compliment_looks",
	PlayerActionHug:             "hug",
	PlayerActionHoldHands:       "hold_hands",
	PlayerActionComfort:         "comfort",
	PlayerActionEncourage:       "encourage",
	PlayerActionGiftSmall:       "gift_small",
	PlayerActionKissQuick:       "kiss_quick",
	PlayerActionKissDeep:        "kiss_deep",
	PlayerActionFlirt:           "flirt",
	PlayerActionSeduce:          "seduce",
	PlayerActionLongFor:         "long_for",
	PlayerActionInviteActivity:  "invite_activity",
	PlayerActionShareStory:      "share_story",
	PlayerActionReminisce:       "reminisce",
	PlayerActionCelebrate:       "celebrate",
	PlayerActionSupport:         "support",
	PlayerActionApology:         "apology",
	PlayerActionConfide:         "confide",
	PlayerActionForgive:         "forgive",
	PlayerActionAskHelp:         "ask_help",
	PlayerActionPromise:         "promise",
	PlayerActionComplimentSkill: "compliment_skill",
	PlayerActionAcknowledge:     "acknowledge",
	PlayerActionAdmire:          "admire",
	PlayerActionDefend:          "defend",
	PlayerActionPraise:          "praise",
	PlayerActionTeasePlayful:    "tease_playful",
	PlayerActionJoke:            "joke",
	PlayerActionChallenge:       "challenge",
	PlayerActionSurprise:        "surprise",
	PlayerActionTrick:           "trick",
	PlayerActionKeepPromise:     "keep_promise",
	PlayerActionReassure:        "reassure",
	PlayerActionProtect:         "protect",
	PlayerActionShelter:         "shelter",
	PlayerActionSteady:          "steady",
	PlayerActionTeaseHarsh:      "tease_harsh",
	PlayerActionConfront:        "confront",
	PlayerActionCriticize:       "criticize",
	PlayerActionWithdraw:        "withdraw",
	PlayerActionDemand:          "demand",
	PlayerActionGiftLarge:       "gift_large",
	PlayerActionGuiltTrip:       "guilt_trip",
	PlayerActionFlatter:         "flatter",
	PlayerActionPressure:        "pressure",
	PlayerActionWithhold:        "withhold",
}

var intentByAction = map[PlayerAction]Intent{
	PlayerActionComplimentLooks: IntentAffection,
	PlayerActionHug:             IntentAffection,
	PlayerActionHoldHands:       IntentAffection,
	PlayerActionComfort:         IntentAffection,
	PlayerActionEncourage:       IntentAffection,
	PlayerActionGiftSmall:       IntentAffection,
	PlayerActionKissQuick:       IntentDesire,
	PlayerActionKissDeep:        IntentDesire,
	PlayerActionFlirt:           IntentDesire,
	PlayerActionSeduce:          IntentDesire,
	PlayerActionLongFor:         IntentDesire,
	PlayerActionInviteActivity:  IntentBonding,
	PlayerActionShareStory:      IntentBonding,
	PlayerActionReminisce:       IntentBonding,
	PlayerActionCelebrate:       IntentBonding,
	PlayerActionSupport:         IntentBonding,
	PlayerActionApology:         IntentTrust,
	PlayerActionConfide:         IntentTrust,
	PlayerActionForgive:         IntentTrust,
	PlayerActionAskHelp:         IntentTrust,
	PlayerActionPromise:         IntentTrust,
	PlayerActionComplimentSkill: IntentRespect,
	PlayerActionAcknowledge:     IntentRespect,
	PlayerActionAdmire:          IntentRespect,
	PlayerActionDefend:          IntentRespect,
	PlayerActionPraise:          IntentRespect,
	PlayerActionTeasePlayful:    IntentPlayfulness,
	PlayerActionJoke:            IntentPlayfulness,
	PlayerActionChallenge:       IntentPlayfulness,
	PlayerActionSurprise:        IntentPlayfulness,
	PlayerActionTrick:           IntentPlayfulness,
	PlayerActionKeepPromise:     IntentSecurity,
	PlayerActionReassure:        IntentSecurity,
	PlayerActionProtect:         IntentSecurity,
	PlayerActionShelter:         IntentSecurity,
	PlayerActionSteady:          IntentSecurity,
	PlayerActionTeaseHarsh:      IntentConflict,
	PlayerActionConfront:        IntentConflict,
	PlayerActionCriticize:       IntentConflict,
	PlayerActionWithdraw:        IntentConflict,
	PlayerActionDemand:          IntentConflict,
	PlayerActionGiftLarge:       IntentManipulation,
	PlayerActionGuiltTrip:       IntentManipulation,
	PlayerActionFlatter:         IntentManipulation,
	PlayerActionPressure:        IntentManipulation,
	PlayerActionWithhold:        IntentManipulation,
}

// PlayerActions lists every action except PlayerActionNone.
func PlayerActions() []PlayerAction {
	out := make([]PlayerAction, 0, len(intentByAction))
	for a := PlayerActionNone + 1; int(a) <= len(intentByAction); a++ {
		out = append(out, a)
	}
	return out
}

func (a PlayerAction) String() string {
	if s, ok := PlayerActionDictionary[a]; ok {
		return s
	}
	return fmt.Sprintf("action(%d)", a)
}

// ParsePlayerAction accepts snake_case ("kiss_quick") or CamelCase
// ("KissQuick") names.
func ParsePlayerAction(s string) (PlayerAction, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	for a, name := range PlayerActionDictionary {
		if a != PlayerActionNone && strings.ReplaceAll(name, "_", "") == key {
			return a, nil
		}
	}
	return PlayerActionNone, fmt.Errorf("unknown player action %q", s)
}

// IntentFor maps every action to its intent. Unmapped values fall back to
// Bonding, the neutral social intent.
func IntentFor(a PlayerAction) Intent {
	if i, ok := intentByAction[a]; ok {
		return i
	}
	return IntentBonding
}

func (i Intent) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *Intent) UnmarshalText(b []byte) error {
	v, err := ParseIntent(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

func (a PlayerAction) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *PlayerAction) UnmarshalText(b []byte) error {
	v, err := ParsePlayerAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
