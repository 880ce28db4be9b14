package emotion

import "npcsim/relationship"

// Base PAD delta per intent, before intensity and amplification.
var basePADByIntent = map[Intent]PAD{
	IntentAffection:    {P: 0.20, A: 0.05, D: -0.05},
	IntentDesire:       {P: 0.18, A: 0.18, D: 0.06},
	IntentBonding:      {P: 0.15, A: 0.10, D: 0},
	IntentTrust:        {P: 0.10, A: -0.05, D: -0.10},
	IntentRespect:      {P: 0.15, A: 0, D: 0.15},
	IntentPlayfulness:  {P: 0.15, A: 0.15, D: 0},
	IntentSecurity:     {P: 0.10, A: -0.05, D: 0.15},
	IntentConflict:     {P: -0.20, A: 0.15, D: 0.15},
	IntentManipulation: {P: -0.15, A: 0.05, D: -0.10},
}

// Base relationship delta per intent, before the action modifier.
var baseTriangleByIntent = map[Intent]relationship.Triangle{
	IntentAffection:    {Intimacy: 0.10, Passion: 0.02, Commitment: 0.05},
	IntentDesire:       {Intimacy: 0.05, Passion: 0.12, Commitment: 0.03},
	IntentBonding:      {Intimacy: 0.08, Passion: 0.04, Commitment: 0.08},
	IntentTrust:        {Intimacy: 0.12, Passion: 0.01, Commitment: 0.12},
	IntentRespect:      {Intimacy: 0.03, Passion: 0.01, Commitment: 0.07},
	IntentPlayfulness:  {Intimacy: 0.04, Passion: 0.07, Commitment: 0.02},
	IntentSecurity:     {Intimacy: 0.02, Passion: 0, Commitment: 0.12},
	IntentConflict:     {Intimacy: -0.10, Passion: 0.05, Commitment: -0.08},
	IntentManipulation: {Intimacy: -0.08, Passion: 0.03, Commitment: -0.10},
}

// BasePADDelta is total over intents; unknown values yield a zero delta.
func BasePADDelta(i Intent) PAD { return basePADByIntent[i] }

// BaseRelationshipDelta is total over intents; unknown values yield a zero
// delta.
func BaseRelationshipDelta(i Intent) relationship.Triangle { return baseTriangleByIntent[i] }
