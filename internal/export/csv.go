// Package export serializes simulation results as CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"acsim/internal/models"
)

// TimeLayout is the timestamp format of the datetime column.
const TimeLayout = "2006-01-02 15:04:05"

// ErrLengthMismatch means the two results were not computed on the same weather.
var ErrLengthMismatch = models.ErrLengthMismatch

var comparisonHeader = []string{
	"datetime",
	"outdoor_temp_c",
	"baseline_power_kw",
	"optimized_power_kw",
	"baseline_cumulative_kwh",
	"optimized_cumulative_kwh",
}

var resultHeader = []string{
	"datetime",
	"outdoor_temp_c",
	"load_w",
	"mode",
	"part_load_ratio",
	"cop",
	"power_kw",
	"cumulative_kwh",
}

// WriteComparison writes one row per hour with both scenarios side by side.
func WriteComparison(w io.Writer, baseline, optimized models.SimulationResult) error {
	rows, err := models.PairHours(baseline, optimized)
	if err != nil {
		return err
	}
	return WriteRunHours(w, rows)
}

// WriteRunHours writes stored comparison rows in the WriteComparison layout.
func WriteRunHours(w io.Writer, hours []models.RunHour) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(comparisonHeader); err != nil {
		return err
	}
	for _, h := range hours {
		rec := []string{
			h.Time.UTC().Format(TimeLayout),
			formatFloat(h.OutdoorTempC),
			formatFloat(h.BaselineKW),
			formatFloat(h.OptimizedKW),
			formatFloat(h.BaselineKWh),
			formatFloat(h.OptimizedKWh),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResult writes the hourly detail of a single scenario.
func WriteResult(w io.Writer, r models.SimulationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return err
	}
	for _, h := range r.Hours {
		rec := []string{
			h.Time.UTC().Format(TimeLayout),
			formatFloat(h.OutdoorTempC),
			formatFloat(h.LoadW),
			string(h.Mode),
			formatFloat(h.PartLoadRatio),
			formatFloat(h.COP),
			formatFloat(h.PowerKW),
			formatFloat(h.CumulativeKWh),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
