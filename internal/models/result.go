package models

import "time"

// Mode describes how the unit ran during one hour.
type Mode string

const (
	ModeOff        Mode = "off"        // no cooling demand
	ModeModulating Mode = "modulating" // part load within the modulation range
	ModeCycling    Mode = "cycling"    // demand below the modulation floor
	ModeSaturated  Mode = "saturated"  // demand at or above nominal capacity
)

// HourRecord is the engine output for one weather sample.
type HourRecord struct {
	Time          time.Time `json:"time"`
	OutdoorTempC  float64   `json:"outdoor_temp_c"`
	LoadW         float64   `json:"load_w"`          // net thermal load
	PartLoadRatio float64   `json:"part_load_ratio"` // ratio used for power, 0 when off
	COP           float64   `json:"cop"`             // effective COP, 0 when off
	Mode          Mode      `json:"mode"`
	PowerKW       float64   `json:"power_kw"`
	CumulativeKWh float64   `json:"cumulative_kwh"`
}

// SimulationResult is the full output of one scenario run.
type SimulationResult struct {
	Hours          []HourRecord `json:"hours"`
	TotalEnergyKWh float64      `json:"total_energy_kwh"`
	PeakPowerKW    float64      `json:"peak_power_kw"`
}
