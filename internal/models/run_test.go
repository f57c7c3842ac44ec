package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairHours(t *testing.T) {
	t0 := time.Date(2023, 7, 1, 13, 0, 0, 0, time.UTC)
	baseline := SimulationResult{Hours: []HourRecord{
		{Time: t0, OutdoorTempC: 32, PowerKW: 2, CumulativeKWh: 2},
		{Time: t0.Add(time.Hour), OutdoorTempC: 33, PowerKW: 2.5, CumulativeKWh: 4.5},
	}}
	optimized := SimulationResult{Hours: []HourRecord{
		{Time: t0, OutdoorTempC: 32, PowerKW: 1, CumulativeKWh: 1},
		{Time: t0.Add(time.Hour), OutdoorTempC: 33, PowerKW: 1.5, CumulativeKWh: 2.5},
	}}

	rows, err := PairHours(baseline, optimized)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, RunHour{
		Index: 1, Time: t0.Add(time.Hour), OutdoorTempC: 33,
		BaselineKW: 2.5, BaselineKWh: 4.5, OptimizedKW: 1.5, OptimizedKWh: 2.5,
	}, rows[1])
}

func TestPairHours_LengthMismatch(t *testing.T) {
	_, err := PairHours(SimulationResult{Hours: make([]HourRecord, 2)}, SimulationResult{})
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestRunSummary(t *testing.T) {
	r := Run{ID: "r1", HourCount: 8760, BaselineEnergyKWh: 100, OptimizedEnergyKWh: 60, SavingsPct: 40, Narrative: "x"}
	s := r.Summary()
	assert.Equal(t, "r1", s.RunID)
	assert.Equal(t, 8760, s.HourCount)
	assert.InDelta(t, 40, s.SavingsPct, 1e-9)
}

func TestIsEventType(t *testing.T) {
	for _, typ := range EventTypes() {
		assert.True(t, IsEventType(typ), typ)
	}
	assert.False(t, IsEventType("START"))
	assert.False(t, IsEventType("run_completed"), "types are upper case")
}
