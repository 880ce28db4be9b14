package emotion

// Intensity modifiers distinguish a light gesture from an intense one within
// the same intent. Conflict and manipulation weigh heaviest.
var intensityByAction = map[PlayerAction]float64{
	PlayerActionComplimentLooks: 1.2,
	PlayerActionHug:             1.5,
	PlayerActionHoldHands:       1.0,
	PlayerActionComfort:         1.3,
	PlayerActionEncourage:       1.2,
	PlayerActionGiftSmall:       0.9,
	PlayerActionKissQuick:       1.8,
	PlayerActionKissDeep:        2.2,
	PlayerActionFlirt:           1.4,
	PlayerActionSeduce:          2.0,
	PlayerActionLongFor:         1.2,
	PlayerActionInviteActivity:  1.5,
	PlayerActionShareStory:      1.2,
	PlayerActionReminisce:       1.0,
	PlayerActionCelebrate:       1.6,
	PlayerActionSupport:         1.3,
	PlayerActionApology:         1.5,
	PlayerActionConfide:         1.3,
	PlayerActionForgive:         1.6,
	PlayerActionAskHelp:         1.0,
	PlayerActionPromise:         1.2,
	PlayerActionComplimentSkill: 1.2,
	PlayerActionAcknowledge:     1.0,
	PlayerActionAdmire:          1.3,
	PlayerActionDefend:          1.8,
	PlayerActionPraise:          1.2,
	PlayerActionTeasePlayful:    0.9,
	PlayerActionJoke:            0.8,
	PlayerActionChallenge:       1.2,
	PlayerActionSurprise:        1.3,
	PlayerActionTrick:           1.0,
	PlayerActionKeepPromise:     1.5,
	PlayerActionReassure:        1.3,
	PlayerActionProtect:         1.8,
	PlayerActionShelter:         1.2,
	PlayerActionSteady:          1.0,
	PlayerActionTeaseHarsh:      2.5,
	PlayerActionConfront:        3.0,
	PlayerActionCriticize:       2.8,
	PlayerActionWithdraw:        2.2,
	PlayerActionDemand:          2.5,
	PlayerActionGiftLarge:       3.2,
	PlayerActionGuiltTrip:       3.5,
	PlayerActionFlatter:         2.0,
	PlayerActionPressure:        3.0,
	PlayerActionWithhold:        2.8,
}

// IntensityModifier returns the per-action multiplier, 1.0 when unlisted.
func IntensityModifier(a PlayerAction) float64 {
	if m, ok := intensityByAction[a]; ok {
		return m
	}
	return 1
}
