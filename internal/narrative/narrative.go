// Package narrative produces a free-text commentary comparing two scenarios
// through an OpenAI-compatible chat completion API.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"acsim/internal/models"
)

var (
	ErrDisabled      = errors.New("narrative generation is not configured")
	ErrEmptyResponse = errors.New("narrative: empty completion")
)

// ComparisonInput is everything the prompt needs about a comparison.
type ComparisonInput struct {
	Baseline           models.Scenario
	Optimized          models.Scenario
	BaselineEnergyKWh  float64
	OptimizedEnergyKWh float64
	BaselinePeakKW     float64
	OptimizedPeakKW    float64
	SavingsPct         float64
}

// FromRun extracts the comparison input from a stored run.
func FromRun(r models.Run) ComparisonInput {
	return ComparisonInput{
		Baseline:           r.Baseline,
		Optimized:          r.Optimized,
		BaselineEnergyKWh:  r.BaselineEnergyKWh,
		OptimizedEnergyKWh: r.OptimizedEnergyKWh,
		BaselinePeakKW:     r.BaselinePeakKW,
		OptimizedPeakKW:    r.OptimizedPeakKW,
		SavingsPct:         r.SavingsPct,
	}
}

type Generator interface {
	Generate(ctx context.Context, in ComparisonInput) (string, error)
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Generate(context.Context, ComparisonInput) (string, error) {
	return "", ErrDisabled
}

func describe(s models.Scenario) string {
	return fmt.Sprintf("insulation %s, glazing %s, ventilation %s, internal loads %s, setpoint %.1f °C, %s unit of %.1f kW (min modulation %.0f %%)",
		s.Insulation, s.Glazing, s.Ventilation, s.InternalLoad, s.SetpointC, s.Tier, s.CapacityKW, s.MinModulationPct)
}

func buildPrompt(in ComparisonInput) string {
	var b strings.Builder
	b.WriteString("Analyse the energy difference between two air-conditioning scenarios for the same zone and weather year:\n")
	fmt.Fprintf(&b, "- Scenario 1 (baseline): %s. Annual consumption = %.1f kWh, peak power = %.2f kW.\n",
		describe(in.Baseline), in.BaselineEnergyKWh, in.BaselinePeakKW)
	fmt.Fprintf(&b, "- Scenario 2 (optimized): %s. Annual consumption = %.1f kWh, peak power = %.2f kW.\n",
		describe(in.Optimized), in.OptimizedEnergyKWh, in.OptimizedPeakKW)
	fmt.Fprintf(&b, "Savings: %.1f %%.\n", in.SavingsPct)
	b.WriteString("Explain the technical reasons for the gap and give two recommendations for improvement.")
	return b.String()
}
