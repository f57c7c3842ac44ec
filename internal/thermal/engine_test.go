package thermal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acsim/internal/models"
)

var yearStart = time.Date(2023, 1, 1, 1, 0, 0, 0, time.UTC)

func unitScenario(t *testing.T) models.Scenario {
	t.Helper()
	s, err := models.NewScenario(models.LevelHigh, models.LevelHigh, models.LevelLow, models.LevelMedium,
		25, models.TierStandard, 5, 30)
	require.NoError(t, err)
	return s
}

func hourly(samples ...[2]float64) []models.WeatherSample {
	out := make([]models.WeatherSample, len(samples))
	for i, s := range samples {
		out[i] = models.WeatherSample{
			Time:         yearStart.Add(time.Duration(i) * time.Hour),
			OutdoorTempC: s[0],
			GHI:          s[1],
		}
	}
	return out
}

// syntheticYear builds a deterministic year of hourly weather with daily and
// seasonal swings.
func syntheticYear() []models.WeatherSample {
	out := make([]models.WeatherSample, 8760)
	for i := range out {
		day := float64(i / 24)
		hour := float64(i % 24)
		seasonal := 18 - 12*math.Cos(2*math.Pi*day/365)
		daily := 6 * math.Sin(2*math.Pi*(hour-9)/24)
		ghi := 0.0
		if hour >= 6 && hour <= 18 {
			ghi = 850 * math.Sin(math.Pi*(hour-6)/12) * (0.6 + 0.4*math.Sin(math.Pi*day/365))
		}
		out[i] = models.WeatherSample{
			Time:         yearStart.Add(time.Duration(i) * time.Hour),
			OutdoorTempC: seasonal + daily,
			GHI:          ghi,
		}
	}
	return out
}

func TestSimulate_UnitScenarioSaturatedHour(t *testing.T) {
	res, err := Simulate(unitScenario(t), hourly([2]float64{35, 600}))
	require.NoError(t, err)
	require.Len(t, res.Hours, 1)

	h := res.Hours[0]
	assert.InDelta(t, 9270.0, h.LoadW, 1e-9)
	assert.Equal(t, models.ModeSaturated, h.Mode)
	assert.Equal(t, 1.0, h.PartLoadRatio)
	assert.Equal(t, 2.8, h.COP)

	capacityW, cop := 5000.0, 2.8
	want := capacityW / cop / 1000
	assert.Equal(t, want, h.PowerKW)
	assert.Equal(t, want, h.CumulativeKWh)
	assert.Equal(t, want, res.TotalEnergyKWh)
	assert.Equal(t, want, res.PeakPowerKW)
	assert.Equal(t, yearStart, h.Time)
}

func TestSimulate_CyclingPenalty(t *testing.T) {
	s, err := models.NewScenario(models.LevelHigh, models.LevelHigh, models.LevelLow, models.LevelLow,
		25, models.TierStandard, 10, 30)
	require.NoError(t, err)

	// dT = 0, no sun: only the 1500 W internal gain, ratio 0.15 < 0.30
	res, err := Simulate(s, hourly([2]float64{25, 0}))
	require.NoError(t, err)
	h := res.Hours[0]

	minFraction, capacityW := 30.0/100, 10.0*1000
	curveCOP, err := COP(models.TierStandard, 25)
	require.NoError(t, err)
	assert.Equal(t, 3.8, curveCOP)

	assert.Equal(t, models.ModeCycling, h.Mode)
	assert.Less(t, h.LoadW/capacityW, minFraction)
	assert.Equal(t, minFraction, h.PartLoadRatio)
	assert.Equal(t, curveCOP*CyclingPenalty, h.COP)
	assert.Equal(t, minFraction*capacityW/(curveCOP*CyclingPenalty)/1000, h.PowerKW)
}

func TestSimulate_Modulating(t *testing.T) {
	s, err := models.NewScenario(models.LevelHigh, models.LevelHigh, models.LevelLow, models.LevelLow,
		25, models.TierStandard, 5, 30)
	require.NoError(t, err)

	// 130*5 + 17*5 + 1500 = 2235 W, ratio 0.447
	res, err := Simulate(s, hourly([2]float64{30, 0}))
	require.NoError(t, err)
	h := res.Hours[0]

	assert.Equal(t, models.ModeModulating, h.Mode)
	assert.InDelta(t, 2235.0, h.LoadW, 1e-9)
	assert.InDelta(t, 0.447, h.PartLoadRatio, 1e-12)
	assert.InDelta(t, 3.3, h.COP, 1e-12)
	assert.InDelta(t, 2235.0/3.3/1000, h.PowerKW, 1e-12)
}

func TestSimulate_NoDemandIsOff(t *testing.T) {
	res, err := Simulate(unitScenario(t), hourly([2]float64{0, 0}, [2]float64{-10, 50}))
	require.NoError(t, err)
	for _, h := range res.Hours {
		assert.Less(t, h.LoadW, 0.0)
		assert.Equal(t, models.ModeOff, h.Mode)
		assert.Equal(t, 0.0, h.PowerKW)
		assert.Equal(t, 0.0, h.PartLoadRatio)
		assert.Equal(t, 0.0, h.COP)
	}
	assert.Equal(t, 0.0, res.TotalEnergyKWh)
	assert.Equal(t, 0.0, res.PeakPowerKW)
}

func TestSimulate_ExactZeroLoadIsOff(t *testing.T) {
	s, err := models.NewScenario(models.LevelHigh, models.LevelHigh, models.LevelLow, models.LevelLow,
		25, models.TierStandard, 5, 30)
	require.NoError(t, err)

	// 147 W/K * -20 K + 8 m² * 180 W/m² + 1500 W = 0
	res, err := Simulate(s, hourly([2]float64{5, 180}))
	require.NoError(t, err)
	h := res.Hours[0]
	assert.Equal(t, 0.0, h.LoadW)
	assert.Equal(t, models.ModeOff, h.Mode)
	assert.Equal(t, 0.0, h.PowerKW)
}

func TestSimulate_EmptyWeather(t *testing.T) {
	for _, in := range [][]models.WeatherSample{nil, {}} {
		res, err := Simulate(unitScenario(t), in)
		require.NoError(t, err)
		assert.NotNil(t, res.Hours)
		assert.Empty(t, res.Hours)
		assert.Equal(t, 0.0, res.TotalEnergyKWh)
		assert.Equal(t, 0.0, res.PeakPowerKW)
	}
}

func TestSimulate_LookupFailureAbortsRun(t *testing.T) {
	good := unitScenario(t)

	cases := map[string]func(*models.Scenario){
		"insulation":    func(s *models.Scenario) { s.Insulation = 0 },
		"glazing":       func(s *models.Scenario) { s.Glazing = 0 },
		"ventilation":   func(s *models.Scenario) { s.Ventilation = 0 },
		"internal_load": func(s *models.Scenario) { s.InternalLoad = 0 },
		"tier":          func(s *models.Scenario) { s.Tier = 0 },
	}
	for field, edit := range cases {
		s := good
		edit(&s)
		res, err := Simulate(s, syntheticYear()[:48])
		var le *LookupError
		require.ErrorAs(t, err, &le, field)
		assert.Equal(t, field, le.Field)
		assert.ErrorIs(t, err, ErrUnknownLevel)
		assert.Nil(t, res.Hours, "no partial result for %s", field)
	}
}

func TestSimulate_YearInvariants(t *testing.T) {
	weather := syntheticYear()
	for _, tier := range models.Tiers() {
		for _, level := range models.Levels() {
			s, err := models.NewScenario(level, level, level, level, 24, tier, 6, 25)
			require.NoError(t, err)
			res, err := Simulate(s, weather)
			require.NoError(t, err)
			require.Len(t, res.Hours, len(weather))

			prev, peak := 0.0, 0.0
			for i, h := range res.Hours {
				require.Equal(t, weather[i].Time, h.Time)
				require.GreaterOrEqual(t, h.PowerKW, 0.0)
				require.GreaterOrEqual(t, h.CumulativeKWh, prev)
				require.LessOrEqual(t, h.PartLoadRatio, 1.0)
				switch h.Mode {
				case models.ModeSaturated:
					require.Greater(t, h.LoadW/s.CapacityW(), 1.0)
					require.Equal(t, 1.0, h.PartLoadRatio)
				case models.ModeCycling:
					ratio := h.LoadW / s.CapacityW()
					require.Less(t, ratio, s.MinModulationFraction())
					require.LessOrEqual(t, ratio, 1.0, "cycling and saturation are exclusive")
				case models.ModeOff:
					require.LessOrEqual(t, h.LoadW, 0.0)
				}
				prev = h.CumulativeKWh
				peak = math.Max(peak, h.PowerKW)
			}
			assert.Equal(t, res.Hours[len(res.Hours)-1].CumulativeKWh, res.TotalEnergyKWh)
			assert.Equal(t, peak, res.PeakPowerKW)
		}
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	weather := syntheticYear()
	s := unitScenario(t)
	a, err := Simulate(s, weather)
	require.NoError(t, err)
	b, err := Simulate(s, weather)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSimulate_SaturatesWithTinyCapacity(t *testing.T) {
	s, err := models.NewScenario(models.LevelLow, models.LevelLow, models.LevelHigh, models.LevelHigh,
		22, models.TierEntry, 1e-9, 30)
	require.NoError(t, err)
	res, err := Simulate(s, syntheticYear())
	require.NoError(t, err)

	for _, h := range res.Hours {
		if h.LoadW <= 0 {
			continue
		}
		require.Equal(t, models.ModeSaturated, h.Mode)
		require.Equal(t, 1.0, h.PartLoadRatio)
		// never more than capacity divided by the worst COP of the curve
		require.LessOrEqual(t, h.PowerKW, s.CapacityKW/1.5+1e-15)
	}
}

func TestSimulate_ZeroModulationFloorNeverCycles(t *testing.T) {
	s, err := models.NewScenario(models.LevelMedium, models.LevelMedium, models.LevelMedium, models.LevelLow,
		26, models.TierHighEfficiency, 12, 0)
	require.NoError(t, err)
	res, err := Simulate(s, syntheticYear())
	require.NoError(t, err)
	for _, h := range res.Hours {
		require.NotEqual(t, models.ModeCycling, h.Mode)
	}
}

func TestSimulate_ConcurrentRunsShareWeather(t *testing.T) {
	weather := syntheticYear()
	base := unitScenario(t)
	opt := base
	opt.Tier = models.TierHighEfficiency

	want, err := Simulate(opt, weather)
	require.NoError(t, err)

	done := make(chan models.SimulationResult, 4)
	for i := 0; i < 4; i++ {
		go func() {
			r, _ := Simulate(opt, weather)
			done <- r
		}()
	}
	for i := 0; i < 4; i++ {
		assert.Equal(t, want, <-done)
	}
}
