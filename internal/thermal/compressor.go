package thermal

import "acsim/internal/models"

// CyclingPenalty scales the COP when the compressor runs below its modulation
// floor and has to cycle on and off.
const CyclingPenalty = 0.8

// Performance curves per equipment tier, outdoor °C -> COP.
var performanceCurves = map[models.Tier]Curve{
	models.TierEntry: mustCurve(
		Point{15, 3.0}, Point{25, 2.5}, Point{35, 1.8}, Point{45, 1.5},
	),
	models.TierStandard: mustCurve(
		Point{15, 4.2}, Point{25, 3.8}, Point{35, 2.8}, Point{45, 2.0},
	),
	models.TierHighEfficiency: mustCurve(
		Point{15, 6.5}, Point{25, 5.0}, Point{35, 4.3}, Point{45, 3.0},
	),
}

// CurveFor returns the performance curve of a tier.
func CurveFor(tier models.Tier) (Curve, error) {
	c, ok := performanceCurves[tier]
	if !ok {
		return Curve{}, &LookupError{Table: "performance_curves", Field: "tier", Value: tier}
	}
	return c, nil
}

// COP returns the coefficient of performance of tier at outdoor temperature t.
func COP(tier models.Tier, t float64) (float64, error) {
	c, err := CurveFor(tier)
	if err != nil {
		return 0, err
	}
	return c.At(t), nil
}

// operatingPoint is the compressor response to one hour of thermal load.
type operatingPoint struct {
	mode   models.Mode
	plr    float64 // ratio used for the power computation
	cop    float64 // effective COP after any cycling penalty
	powerW float64
}

// respond converts a net thermal load into electrical power. Saturation
// (ratio above 1) and cycling (ratio below the floor) cannot both apply.
func respond(loadW, capacityW, minFraction float64, curve Curve, outdoorC float64) operatingPoint {
	if loadW <= 0 {
		return operatingPoint{mode: models.ModeOff}
	}
	ratio := loadW / capacityW
	op := operatingPoint{mode: models.ModeModulating, plr: ratio, cop: curve.At(outdoorC)}
	switch {
	case ratio > 1:
		op.mode = models.ModeSaturated
		op.plr = 1
	case ratio < minFraction:
		op.mode = models.ModeCycling
		op.plr = minFraction
		op.cop *= CyclingPenalty
	}
	if op.cop > 0 {
		op.powerW = op.plr * capacityW / op.cop
	}
	return op
}
