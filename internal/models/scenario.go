package models

import (
	"fmt"
	"math"
)

// Scenario is one building/equipment configuration. Treat it as immutable:
// build it with NewScenario and pass it by value.
type Scenario struct {
	Insulation       Level   `json:"insulation"`
	Glazing          Level   `json:"glazing"`
	Ventilation      Level   `json:"ventilation"`
	InternalLoad     Level   `json:"internal_load"`
	SetpointC        float64 `json:"setpoint_c"`         // °C
	Tier             Tier    `json:"tier"`               // compressor curve
	CapacityKW       float64 `json:"capacity_kw"`        // nominal cooling capacity
	MinModulationPct float64 `json:"min_modulation_pct"` // 0..100
}

// FieldError names the scenario field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewScenario validates every field and returns the scenario value.
func NewScenario(insulation, glazing, ventilation, internalLoad Level, setpointC float64, tier Tier, capacityKW, minModulationPct float64) (Scenario, error) {
	s := Scenario{
		Insulation:       insulation,
		Glazing:          glazing,
		Ventilation:      ventilation,
		InternalLoad:     internalLoad,
		SetpointC:        setpointC,
		Tier:             tier,
		CapacityKW:       capacityKW,
		MinModulationPct: minModulationPct,
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Validate checks the scenario. Scenarios decoded from JSON should be
// validated before use.
func (s Scenario) Validate() error {
	levels := []struct {
		field string
		level Level
	}{
		{"insulation", s.Insulation},
		{"glazing", s.Glazing},
		{"ventilation", s.Ventilation},
		{"internal_load", s.InternalLoad},
	}
	for _, l := range levels {
		if !l.level.Valid() {
			return &FieldError{Field: l.field, Reason: fmt.Sprintf("unknown level %s", l.level)}
		}
	}
	if !s.Tier.Valid() {
		return &FieldError{Field: "tier", Reason: fmt.Sprintf("unknown tier %s", s.Tier)}
	}
	if math.IsNaN(s.SetpointC) || math.IsInf(s.SetpointC, 0) {
		return &FieldError{Field: "setpoint_c", Reason: "must be a finite temperature"}
	}
	if !(s.CapacityKW > 0) {
		return &FieldError{Field: "capacity_kw", Reason: "must be > 0"}
	}
	// the engine works in watts
	if math.IsInf(s.CapacityW(), 0) {
		return &FieldError{Field: "capacity_kw", Reason: "must be finite in watts"}
	}
	if !(s.MinModulationPct >= 0 && s.MinModulationPct <= 100) {
		return &FieldError{Field: "min_modulation_pct", Reason: "must be within [0, 100]"}
	}
	return nil
}

// MinModulationFraction returns the modulation floor as a fraction of capacity.
func (s Scenario) MinModulationFraction() float64 { return s.MinModulationPct / 100 }

// CapacityW returns the nominal cooling capacity in watts.
func (s Scenario) CapacityW() float64 { return s.CapacityKW * 1000 }
