package relationship

// Gains and the per-stimulus safety band of the amplifier.
const (
	GainPleasure  = 0.8 // driven by intimacy
	GainArousal   = 0.6 // driven by passion
	GainDominance = 0.6 // driven by commitment
	SafetyBand    = 0.35
)

// Amplify scales each axis of d by (1 + gain x triangle axis) and clamps the
// result to +-SafetyBand.
func Amplify(d Delta, t Triangle) Delta {
	t = t.clamped()
	return Delta{
		P: band(finite(d.P) * (1 + GainPleasure*t.Intimacy)),
		A: band(finite(d.A) * (1 + GainArousal*t.Passion)),
		D: band(finite(d.D) * (1 + GainDominance*t.Commitment)),
	}
}

func band(v float64) float64 {
	if v > SafetyBand {
		return SafetyBand
	}
	if v < -SafetyBand {
		return -SafetyBand
	}
	return v
}
