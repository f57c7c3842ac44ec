package thermal

import (
	"acsim/internal/models"

	"gonum.org/v1/gonum/stat"
)

// ScenarioStats summarizes one simulation result.
type ScenarioStats struct {
	TotalEnergyKWh float64 `json:"total_energy_kwh"`
	PeakPowerKW    float64 `json:"peak_power_kw"`
	MeanPowerKW    float64 `json:"mean_power_kw"`
	StdDevPowerKW  float64 `json:"stddev_power_kw"`
	CoolingHours   int     `json:"cooling_hours"`
	CyclingHours   int     `json:"cycling_hours"`
	SaturatedHours int     `json:"saturated_hours"`
}

// Comparison contrasts a baseline and an optimized result.
type Comparison struct {
	Baseline   ScenarioStats `json:"baseline"`
	Optimized  ScenarioStats `json:"optimized"`
	SavedKWh   float64       `json:"saved_kwh"`
	SavingsPct float64       `json:"savings_pct"`
}

// Summarize computes the statistics of a single result.
func Summarize(r models.SimulationResult) ScenarioStats {
	st := ScenarioStats{
		TotalEnergyKWh: r.TotalEnergyKWh,
		PeakPowerKW:    r.PeakPowerKW,
	}
	if len(r.Hours) == 0 {
		return st
	}
	power := make([]float64, len(r.Hours))
	for i, h := range r.Hours {
		power[i] = h.PowerKW
		if h.PowerKW > 0 {
			st.CoolingHours++
		}
		switch h.Mode {
		case models.ModeCycling:
			st.CyclingHours++
		case models.ModeSaturated:
			st.SaturatedHours++
		}
	}
	st.MeanPowerKW = stat.Mean(power, nil)
	if len(power) > 1 {
		st.StdDevPowerKW = stat.StdDev(power, nil)
	}
	return st
}

// Compare builds the baseline/optimized comparison. Savings are 0 when the
// baseline consumed nothing.
func Compare(baseline, optimized models.SimulationResult) Comparison {
	return Comparison{
		Baseline:   Summarize(baseline),
		Optimized:  Summarize(optimized),
		SavedKWh:   baseline.TotalEnergyKWh - optimized.TotalEnergyKWh,
		SavingsPct: SavingsPct(baseline.TotalEnergyKWh, optimized.TotalEnergyKWh),
	}
}

// SavingsPct returns (1 - optimized/baseline) * 100, or 0 for a zero baseline.
func SavingsPct(baselineKWh, optimizedKWh float64) float64 {
	if baselineKWh == 0 {
		return 0
	}
	return (1 - optimizedKWh/baselineKWh) * 100
}
