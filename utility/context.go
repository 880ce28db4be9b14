// Package utility scores candidate actions from normalized considerations and
// picks the best one for an agent.
package utility

import (
	"npcsim/emotion"
	"npcsim/relationship"
)

// Context is the read-only view considerations score against. Stats use
// their natural units: energy and hunger in [0,100], money >= 0, carried
// resources as a count, the social needs in [0,1].
type Context interface {
	Energy() float64
	Hunger() float64
	Money() float64
	Resources() int
	Intimacy() float64
	Romantic() float64
	Belonging() float64

	PAD() emotion.PAD
	LastDelta() emotion.PAD
	LastIntent() emotion.Intent
	Triangle() relationship.Triangle
}
