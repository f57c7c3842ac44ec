// Command compare runs a baseline/optimized comparison on an EPW file
// without the HTTP service.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"acsim/internal/export"
	"acsim/internal/logger"
	"acsim/internal/models"
	"acsim/internal/thermal"
	"acsim/internal/weather"
)

// scenarioFlags holds the raw flag values of one scenario.
type scenarioFlags struct {
	insulation   string
	glazing      string
	ventilation  string
	internalLoad string
	tier         string
	setpointC    float64
	capacityKW   float64
	minModPct    float64
}

func (f *scenarioFlags) register(fs *pflag.FlagSet, prefix string, def scenarioFlags) {
	fs.StringVar(&f.insulation, prefix+"-insulation", def.insulation, "insulation level (low|medium|high)")
	fs.StringVar(&f.glazing, prefix+"-glazing", def.glazing, "glazing level (low|medium|high)")
	fs.StringVar(&f.ventilation, prefix+"-ventilation", def.ventilation, "ventilation level (low|medium|high)")
	fs.StringVar(&f.internalLoad, prefix+"-internal-load", def.internalLoad, "internal load level (low|medium|high)")
	fs.StringVar(&f.tier, prefix+"-tier", def.tier, "compressor tier (entry|standard|high_efficiency)")
	fs.Float64Var(&f.setpointC, prefix+"-setpoint", def.setpointC, "cooling setpoint, °C")
	fs.Float64Var(&f.capacityKW, prefix+"-capacity", def.capacityKW, "nominal cooling capacity, kW")
	fs.Float64Var(&f.minModPct, prefix+"-min-mod", def.minModPct, "minimum modulation, % of capacity")
}

func (f scenarioFlags) scenario(name string) (models.Scenario, error) {
	levels := make([]models.Level, 4)
	for i, raw := range []string{f.insulation, f.glazing, f.ventilation, f.internalLoad} {
		l, err := models.ParseLevel(raw)
		if err != nil {
			return models.Scenario{}, fmt.Errorf("%s: %w", name, err)
		}
		levels[i] = l
	}
	tier, err := models.ParseTier(f.tier)
	if err != nil {
		return models.Scenario{}, fmt.Errorf("%s: %w", name, err)
	}
	s, err := models.NewScenario(levels[0], levels[1], levels[2], levels[3], f.setpointC, tier, f.capacityKW, f.minModPct)
	if err != nil {
		return models.Scenario{}, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

var (
	baselineDefaults = scenarioFlags{
		insulation: "low", glazing: "low", ventilation: "high", internalLoad: "medium",
		tier: "entry", setpointC: 24, capacityKW: 5, minModPct: 30,
	}
	optimizedDefaults = scenarioFlags{
		insulation: "high", glazing: "high", ventilation: "low", internalLoad: "medium",
		tier: "high_efficiency", setpointC: 26, capacityKW: 5, minModPct: 20,
	}
)

func main() {
	log := logger.Get(logger.WarnLevel)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalw("compare failed", "err", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("compare", pflag.ContinueOnError)
	epwPath := fs.StringP("weather", "w", "", "EPW weather file (required)")
	outPath := fs.StringP("out", "o", "", "write the hourly comparison CSV to this file")
	var baseline, optimized scenarioFlags
	baseline.register(fs, "baseline", baselineDefaults)
	optimized.register(fs, "optimized", optimizedDefaults)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *epwPath == "" {
		return fmt.Errorf("--weather is required")
	}

	samples, err := weather.LoadEPW(*epwPath)
	if err != nil {
		return err
	}
	bs, err := baseline.scenario("baseline")
	if err != nil {
		return err
	}
	ops, err := optimized.scenario("optimized")
	if err != nil {
		return err
	}

	baseRes, err := thermal.Simulate(bs, samples)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	optRes, err := thermal.Simulate(ops, samples)
	if err != nil {
		return fmt.Errorf("optimized: %w", err)
	}

	if *outPath != "" {
		if err := writeCSV(*outPath, baseRes, optRes); err != nil {
			return err
		}
	}
	printSummary(stdout, len(samples), thermal.Compare(baseRes, optRes))
	return nil
}

func writeCSV(path string, baseline, optimized models.SimulationResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteComparison(f, baseline, optimized)
}

func printSummary(w io.Writer, hours int, c thermal.Comparison) {
	fmt.Fprintf(w, "hours simulated: %d\n", hours)
	for _, row := range []struct {
		name string
		st   thermal.ScenarioStats
	}{{"baseline", c.Baseline}, {"optimized", c.Optimized}} {
		fmt.Fprintf(w, "%-9s  energy %10.1f kWh  peak %6.2f kW  mean %5.2f kW  cooling %4d h  cycling %4d h  saturated %4d h\n",
			row.name, row.st.TotalEnergyKWh, row.st.PeakPowerKW, row.st.MeanPowerKW,
			row.st.CoolingHours, row.st.CyclingHours, row.st.SaturatedHours)
	}
	fmt.Fprintf(w, "savings: %.1f kWh (%.1f %%)\n", c.SavedKWh, c.SavingsPct)
}
