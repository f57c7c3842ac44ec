package thermal

import "acsim/internal/models"

// zone holds the per-scenario coefficients resolved once before the hourly loop.
type zone struct {
	setpointC   float64
	hEnv        float64 // W/K
	hVent       float64 // W/K
	qInternal   float64 // W
	glazingG    float64
	capacityW   float64
	minFraction float64
	curve       Curve
}

func newZone(s models.Scenario) (zone, error) {
	hEnv, err := EnvelopeCoefficient(s.Insulation, s.Glazing)
	if err != nil {
		return zone{}, err
	}
	hVent, err := VentilationCoefficient(s.Ventilation)
	if err != nil {
		return zone{}, err
	}
	qInt, err := InternalGain(s.InternalLoad)
	if err != nil {
		return zone{}, err
	}
	g, ok := solarFactor[s.Glazing]
	if !ok {
		return zone{}, &LookupError{Table: "solar_factor", Field: "glazing", Value: s.Glazing}
	}
	curve, err := CurveFor(s.Tier)
	if err != nil {
		return zone{}, err
	}
	return zone{
		setpointC:   s.SetpointC,
		hEnv:        hEnv,
		hVent:       hVent,
		qInternal:   qInt,
		glazingG:    g,
		capacityW:   s.CapacityW(),
		minFraction: s.MinModulationFraction(),
		curve:       curve,
	}, nil
}

// load returns the net thermal load in W; positive means cooling demand.
func (z zone) load(w models.WeatherSample) float64 {
	dT := w.OutdoorTempC - z.setpointC
	qEnv := z.hEnv * dT
	qVent := z.hVent * dT
	qSolar := solarGain(z.glazingG, w.GHI)
	return qEnv + qVent + qSolar + z.qInternal
}

// accumulator is the only state carried from one hour to the next.
type accumulator struct {
	cumulativeKWh float64
	peakKW        float64
}

func (a accumulator) add(powerKW float64) accumulator {
	a.cumulativeKWh += powerKW // one-hour timestep
	if powerKW > a.peakKW {
		a.peakKW = powerKW
	}
	return a
}

func (z zone) step(acc accumulator, w models.WeatherSample) (accumulator, models.HourRecord) {
	q := z.load(w)
	op := respond(q, z.capacityW, z.minFraction, z.curve, w.OutdoorTempC)
	powerKW := op.powerW / 1000
	acc = acc.add(powerKW)
	return acc, models.HourRecord{
		Time:          w.Time,
		OutdoorTempC:  w.OutdoorTempC,
		LoadW:         q,
		PartLoadRatio: op.plr,
		COP:           op.cop,
		Mode:          op.mode,
		PowerKW:       powerKW,
		CumulativeKWh: acc.cumulativeKWh,
	}
}

// Simulate runs the hourly heat balance of s over weather. It is pure and
// safe to call concurrently; weather is only read. A lookup failure aborts the
// run and no partial result is returned.
func Simulate(s models.Scenario, weather []models.WeatherSample) (models.SimulationResult, error) {
	z, err := newZone(s)
	if err != nil {
		return models.SimulationResult{}, err
	}

	hours := make([]models.HourRecord, 0, len(weather))
	var acc accumulator
	for _, w := range weather {
		var rec models.HourRecord
		acc, rec = z.step(acc, w)
		hours = append(hours, rec)
	}

	return models.SimulationResult{
		Hours:          hours,
		TotalEnergyKWh: acc.cumulativeKWh,
		PeakPowerKW:    acc.peakKW,
	}, nil
}
