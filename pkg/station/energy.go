package station

// energyHint samples a presentational energy level around base with the
// given spread, clamped to [0,1]. rnd must return a value in [0,1).
func energyHint(base, variance float64, rnd func() float64) float64 {
	e := base + (rnd()-0.5)*2*variance
	if e < 0 {
		return 0
	}
	if e > 1 {
		return 1
	}
	return e
}
