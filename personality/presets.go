package personality

import (
	"fmt"
	"strings"
)

// Preset names a ready-made bias table for an action archetype.
type Preset byte

const (
	PresetNone Preset = iota

	// Affection
	PresetHugWarm
	PresetCuddleLeanIn
	PresetHoldHands
	PresetGentleTouch
	PresetWordsOfComfort

	// Desire
	PresetFlirtPlayful
	PresetKissQuick
	PresetKissDeep
	PresetComplimentAppearance
	PresetPlayfulTease

	// Bonding
	PresetSharePersonalStory
	PresetAskAboutDayDeep
	PresetPlanFutureLight
	PresetReminisceMemory
	PresetInsideJoke

	// Trust
	PresetKeepPromise
	PresetConfideVulnerability
	PresetAskConsent
	PresetAdmitFault
	PresetShieldFromOverwhelm

	// Respect
	PresetRespectBoundary
	PresetGiveSpace
	PresetApologizeDirect
	PresetInviteChoice
	PresetCreditContribution

	// Playfulness
	PresetLightJoke
	PresetMiniGame
	PresetShareFunnyThing
	PresetMockSeriousCompliment
	PresetSpontaneousDetour

	// Security
	PresetReassureCommitment
	PresetSafetyCheck
	PresetCreateCalmEnv
	PresetQuietPresence
	PresetProtectiveGesture

	// Conflict repair
	PresetNameTheTension
	PresetOfferRepairPlan
	PresetTimeOutMutual
	PresetReflectBack
	PresetLightenAfterRepair
)

var PresetDictionary = map[Preset]string{
	PresetNone:                  "none",
	PresetHugWarm:               "hug_warm",
	PresetCuddleLeanIn:          "cuddle_lean_in",
	PresetHoldHands:             "hold_hands",
	PresetGentleTouch:           "gentle_touch",
	PresetWordsOfComfort:        "words_of_comfort",
	PresetFlirtPlayful:          "flirt_playful",
	PresetKissQuick:             "kiss_quick",
	PresetKissDeep:              "kiss_deep",
	PresetComplimentAppearance:  "compliment_appearance",
	PresetPlayfulTease:          "playful_tease",
	PresetSharePersonalStory:    "share_personal_story",
	PresetAskAboutDayDeep:       "ask_about_day_deep",
	PresetPlanFutureLight:       "plan_future_light",
	PresetReminisceMemory:       "reminisce_memory",
	PresetInsideJoke:            "inside_joke",
	PresetKeepPromise:           "keep_promise",
	PresetConfideVulnerability:  "confide_vulnerability",
	PresetAskConsent:            "ask_consent",
	PresetAdmitFault:            "admit_fault",
	PresetShieldFromOverwhelm:   "shield_from_overwhelm",
	PresetRespectBoundary:       "respect_boundary",
	PresetGiveSpace:             "give_space",
	PresetApologizeDirect:       "apologize_direct",
	PresetInviteChoice:          "invite_choice",
	PresetCreditContribution:    "credit_contribution",
	PresetLightJoke:             "light_joke",
	PresetMiniGame:              "mini_game",
	PresetShareFunnyThing:       "share_funny_thing",
	PresetMockSeriousCompliment: "mock_serious_compliment",
	PresetSpontaneousDetour:     "spontaneous_detour",
	PresetReassureCommitment:    "reassure_commitment",
	PresetSafetyCheck:           "safety_check",
	PresetCreateCalmEnv:         "create_calm_env",
	PresetQuietPresence:         "quiet_presence",
	PresetProtectiveGesture:     "protective_gesture",
	PresetNameTheTension:        "name_the_tension",
	PresetOfferRepairPlan:       "offer_repair_plan",
	PresetTimeOutMutual:         "time_out_mutual",
	PresetReflectBack:           "reflect_back",
	PresetLightenAfterRepair:    "lighten_after_repair",
}

var presetFamilies = map[Preset]string{
	PresetHugWarm:               "affection",
	PresetCuddleLeanIn:          "affection",
	PresetHoldHands:             "affection",
	PresetGentleTouch:           "affection",
	PresetWordsOfComfort:        "affection",
	PresetFlirtPlayful:          "desire",
	PresetKissQuick:             "desire",
	PresetKissDeep:              "desire",
	PresetComplimentAppearance:  "desire",
	PresetPlayfulTease:          "desire",
	PresetSharePersonalStory:    "bonding",
	PresetAskAboutDayDeep:       "bonding",
	PresetPlanFutureLight:       "bonding",
	PresetReminisceMemory:       "bonding",
	PresetInsideJoke:            "bonding",
	PresetKeepPromise:           "trust",
	PresetConfideVulnerability:  "trust",
	PresetAskConsent:            "trust",
	PresetAdmitFault:            "trust",
	PresetShieldFromOverwhelm:   "trust",
	PresetRespectBoundary:       "respect",
	PresetGiveSpace:             "respect",
	PresetApologizeDirect:       "respect",
	PresetInviteChoice:          "respect",
	PresetCreditContribution:    "respect",
	PresetLightJoke:             "playfulness",
	PresetMiniGame:              "playfulness",
	PresetShareFunnyThing:       "playfulness",
	PresetMockSeriousCompliment: "playfulness",
	PresetSpontaneousDetour:     "playfulness",
	PresetReassureCommitment:    "security",
	PresetSafetyCheck:           "security",
	PresetCreateCalmEnv:         "security",
	PresetQuietPresence:         "security",
	PresetProtectiveGesture:     "security",
	PresetNameTheTension:        "conflict repair",
	PresetOfferRepairPlan:       "conflict repair",
	PresetTimeOutMutual:         "conflict repair",
	PresetReflectBack:           "conflict repair",
	PresetLightenAfterRepair:    "conflict repair",
}

var presetTables = map[Preset]BiasTable{
	PresetHugWarm:               {Bias(AxisEnergy, 1.10, 0.95), Bias(AxisNature, 1.10, 0.95)},
	PresetCuddleLeanIn:          {Bias(AxisEnergy, 1.05, 1.00), Bias(AxisNature, 1.10, 0.95)},
	PresetHoldHands:             {Bias(AxisEnergy, 1.10, 0.95)},
	PresetGentleTouch:           {Bias(AxisNature, 1.10, 0.95)},
	PresetWordsOfComfort:        {Bias(AxisNature, 1.12, 0.98)},
	PresetFlirtPlayful:          {Bias(AxisEnergy, 1.10, 0.95), Bias(AxisIdentity, 1.08, 0.98)},
	PresetKissQuick:             {Bias(AxisEnergy, 1.10, 0.95)},
	PresetKissDeep:              {Bias(AxisIdentity, 1.10, 0.95)},
	PresetComplimentAppearance:  {Bias(AxisEnergy, 1.08, 1.00), Bias(AxisNature, 1.08, 0.98)},
	PresetPlayfulTease:          {Bias(AxisEnergy, 1.08, 0.98), Bias(AxisTactics, 0.98, 1.10)},
	PresetSharePersonalStory:    {Bias(AxisMind, 1.10, 1.00), Bias(AxisNature, 1.08, 0.98)},
	PresetAskAboutDayDeep:       {Bias(AxisMind, 0.98, 1.10), Bias(AxisNature, 1.08, 0.98)},
	PresetPlanFutureLight:       {Bias(AxisMind, 1.10, 0.98), Bias(AxisTactics, 1.10, 0.95)},
	PresetReminisceMemory:       {Bias(AxisMind, 0.98, 1.10), Bias(AxisNature, 1.08, 0.98)},
	PresetInsideJoke:            {Bias(AxisTactics, 0.98, 1.10)},
	PresetKeepPromise:           {Bias(AxisTactics, 1.10, 0.95)},
	PresetConfideVulnerability:  {Bias(AxisNature, 1.10, 0.98), Bias(AxisIdentity, 0.98, 1.10)},
	PresetAskConsent:            {Bias(AxisNature, 1.00, 1.10)},
	PresetAdmitFault:            {Bias(AxisIdentity, 0.98, 1.10)},
	PresetShieldFromOverwhelm:   {Bias(AxisNature, 1.10, 0.98)},
	PresetRespectBoundary:       {Bias(AxisNature, 0.98, 1.10), Bias(AxisTactics, 1.08, 0.98)},
	PresetGiveSpace:             {Bias(AxisNature, 0.98, 1.10), Bias(AxisTactics, 1.08, 0.98)},
	PresetApologizeDirect:       {Bias(AxisNature, 1.08, 1.00), Bias(AxisIdentity, 0.98, 1.10)},
	PresetInviteChoice:          {Bias(AxisNature, 0.98, 1.10), Bias(AxisTactics, 0.98, 1.10)},
	PresetCreditContribution:    {Bias(AxisNature, 1.10, 0.98)},
	PresetLightJoke:             {Bias(AxisEnergy, 1.12, 0.95)},
	PresetMiniGame:              {Bias(AxisEnergy, 1.10, 0.95), Bias(AxisTactics, 0.98, 1.10)},
	PresetShareFunnyThing:       {Bias(AxisEnergy, 1.08, 0.98), Bias(AxisMind, 1.08, 1.00)},
	PresetMockSeriousCompliment: {Bias(AxisTactics, 0.98, 1.10)},
	PresetSpontaneousDetour:     {Bias(AxisEnergy, 1.10, 0.95), Bias(AxisTactics, 0.98, 1.10)},
	PresetReassureCommitment:    {Bias(AxisIdentity, 0.95, 1.12), Bias(AxisNature, 1.08, 1.00)},
	PresetSafetyCheck:           {Bias(AxisIdentity, 0.98, 1.10)},
	PresetCreateCalmEnv:         {Bias(AxisNature, 0.98, 1.10)},
	PresetQuietPresence:         {Bias(AxisNature, 1.10, 0.98)},
	PresetProtectiveGesture:     {Bias(AxisIdentity, 1.10, 0.95)},
	PresetNameTheTension:        {Bias(AxisNature, 0.98, 1.10)},
	PresetOfferRepairPlan:       {Bias(AxisNature, 1.00, 1.10), Bias(AxisTactics, 1.10, 0.95)},
	PresetTimeOutMutual:         {Bias(AxisIdentity, 1.06, 1.06)},
	PresetReflectBack:           {Bias(AxisNature, 1.12, 0.98)},
	PresetLightenAfterRepair:    {Bias(AxisEnergy, 1.08, 0.98), Bias(AxisTactics, 0.98, 1.10)},
}

// Presets lists every preset except PresetNone in declaration order.
func Presets() []Preset {
	out := make([]Preset, 0, len(presetTables))
	for p := PresetNone + 1; int(p) <= len(presetTables); p++ {
		out = append(out, p)
	}
	return out
}

func (p Preset) String() string {
	if s, ok := PresetDictionary[p]; ok {
		return s
	}
	return fmt.Sprintf("preset(%d)", p)
}

// Family is the intent family the preset was tuned for, or "" for none.
func (p Preset) Family() string { return presetFamilies[p] }

// ParsePreset accepts snake_case ("hug_warm") or CamelCase ("HugWarm") names.
func ParsePreset(s string) (Preset, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	if key == "" {
		return PresetNone, nil
	}
	for p, name := range PresetDictionary {
		if strings.ReplaceAll(name, "_", "") == key {
			return p, nil
		}
	}
	return PresetNone, fmt.Errorf("unknown bias preset %q", s)
}

// PresetEntries returns a copy of the preset's table; PresetNone and unknown
// presets yield an empty table.
func PresetEntries(p Preset) BiasTable {
	t := presetTables[p]
	if len(t) == 0 {
		return nil
	}
	return append(BiasTable(nil), t...)
}
