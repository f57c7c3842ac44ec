package thermal

import "acsim/internal/models"

// Constant internal heat generation (occupants, lighting, equipment) in W.
var internalGains = map[models.Level]float64{
	models.LevelLow:    1500,
	models.LevelMedium: 3000,
	models.LevelHigh:   4500,
}

// InternalGain returns the constant internal heat gain in W.
func InternalGain(level models.Level) (float64, error) {
	q, ok := internalGains[level]
	if !ok {
		return 0, &LookupError{Table: "internal_gains", Field: "internal_load", Value: level}
	}
	return q, nil
}
