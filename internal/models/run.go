package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrLengthMismatch means two results were not computed on the same weather.
var ErrLengthMismatch = errors.New("results have different hour counts")

// Run is a persisted baseline/optimized comparison.
type Run struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"` // weather origin, e.g. uploaded file name
	HourCount int       `json:"hour_count"`

	Baseline  Scenario `json:"baseline"`
	Optimized Scenario `json:"optimized"`

	BaselineEnergyKWh  float64 `json:"baseline_energy_kwh"`
	OptimizedEnergyKWh float64 `json:"optimized_energy_kwh"`
	BaselinePeakKW     float64 `json:"baseline_peak_kw"`
	OptimizedPeakKW    float64 `json:"optimized_peak_kw"`
	SavingsPct         float64 `json:"savings_pct"`

	Narrative string `json:"narrative,omitempty"`
}

// RunHour is one stored hourly row covering both scenarios.
type RunHour struct {
	Index        int       `json:"index"`
	Time         time.Time `json:"time"`
	OutdoorTempC float64   `json:"outdoor_temp_c"`
	BaselineKW   float64   `json:"baseline_kw"`
	BaselineKWh  float64   `json:"baseline_kwh"`
	OptimizedKW  float64   `json:"optimized_kw"`
	OptimizedKWh float64   `json:"optimized_kwh"`
}

// RunSummary is the compact form published to downstream consumers.
type RunSummary struct {
	RunID              string    `json:"run_id"`
	CreatedAt          time.Time `json:"created_at"`
	HourCount          int       `json:"hour_count"`
	BaselineEnergyKWh  float64   `json:"baseline_energy_kwh"`
	OptimizedEnergyKWh float64   `json:"optimized_energy_kwh"`
	BaselinePeakKW     float64   `json:"baseline_peak_kw"`
	OptimizedPeakKW    float64   `json:"optimized_peak_kw"`
	SavingsPct         float64   `json:"savings_pct"`
}

// Summary returns the publishable summary of r.
func (r Run) Summary() RunSummary {
	return RunSummary{
		RunID:              r.ID,
		CreatedAt:          r.CreatedAt,
		HourCount:          r.HourCount,
		BaselineEnergyKWh:  r.BaselineEnergyKWh,
		OptimizedEnergyKWh: r.OptimizedEnergyKWh,
		BaselinePeakKW:     r.BaselinePeakKW,
		OptimizedPeakKW:    r.OptimizedPeakKW,
		SavingsPct:         r.SavingsPct,
	}
}

// PairHours zips two results computed on the same weather into stored rows.
func PairHours(baseline, optimized SimulationResult) ([]RunHour, error) {
	if len(baseline.Hours) != len(optimized.Hours) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(baseline.Hours), len(optimized.Hours))
	}
	rows := make([]RunHour, len(baseline.Hours))
	for i, b := range baseline.Hours {
		o := optimized.Hours[i]
		rows[i] = RunHour{
			Index:        i,
			Time:         b.Time,
			OutdoorTempC: b.OutdoorTempC,
			BaselineKW:   b.PowerKW,
			BaselineKWh:  b.CumulativeKWh,
			OptimizedKW:  o.PowerKW,
			OptimizedKWh: o.CumulativeKWh,
		}
	}
	return rows, nil
}
