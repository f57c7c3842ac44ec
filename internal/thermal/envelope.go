package thermal

import "acsim/internal/models"

// WindowAreaM2 is the fixed glazed area of the zone.
const WindowAreaM2 = 20.0

// Conductance of walls and roof by insulation level, W/K.
var wallUA = map[models.Level]float64{
	models.LevelLow:    300,
	models.LevelMedium: 120,
	models.LevelHigh:   100,
}

// Conductance of windows by glazing level, W/K.
var windowUA = map[models.Level]float64{
	models.LevelLow:    100,
	models.LevelMedium: 60,
	models.LevelHigh:   30,
}

// Solar transmission factor by glazing level.
var solarFactor = map[models.Level]float64{
	models.LevelLow:    0.8,
	models.LevelMedium: 0.6,
	models.LevelHigh:   0.4,
}

// EnvelopeCoefficient returns the conductive loss coefficient (W/K) of walls
// plus windows.
func EnvelopeCoefficient(insulation, glazing models.Level) (float64, error) {
	wall, ok := wallUA[insulation]
	if !ok {
		return 0, &LookupError{Table: "wall_ua", Field: "insulation", Value: insulation}
	}
	win, ok := windowUA[glazing]
	if !ok {
		return 0, &LookupError{Table: "window_ua", Field: "glazing", Value: glazing}
	}
	return wall + win, nil
}

// SolarGain returns the instantaneous heat gain (W) through the windows for a
// global horizontal irradiance in W/m².
func SolarGain(ghi float64, glazing models.Level) (float64, error) {
	g, ok := solarFactor[glazing]
	if !ok {
		return 0, &LookupError{Table: "solar_factor", Field: "glazing", Value: glazing}
	}
	return solarGain(g, ghi), nil
}

func solarGain(g, ghi float64) float64 { return WindowAreaM2 * g * ghi }
