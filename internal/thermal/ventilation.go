package thermal

import "acsim/internal/models"

const (
	// ZoneVolumeM3 is the conditioned air volume.
	ZoneVolumeM3 = 250.0
	// airHeatFactor converts m³/h of air into W/K (volumetric heat capacity of air, Wh/m³K).
	airHeatFactor = 0.34
)

// Air changes per hour by infiltration level.
var airChanges = map[models.Level]float64{
	models.LevelLow:    0.2,
	models.LevelMedium: 0.5,
	models.LevelHigh:   1.0,
}

// VentilationCoefficient returns the air-exchange loss coefficient in W/K.
func VentilationCoefficient(level models.Level) (float64, error) {
	ach, ok := airChanges[level]
	if !ok {
		return 0, &LookupError{Table: "air_changes", Field: "ventilation", Value: level}
	}
	return airHeatFactor * ach * ZoneVolumeM3, nil
}
