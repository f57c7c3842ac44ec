package models

import "time"

// WeatherSample is one hourly weather record.
type WeatherSample struct {
	Time         time.Time `json:"time"`
	OutdoorTempC float64   `json:"outdoor_temp_c"` // dry-bulb, °C
	GHI          float64   `json:"ghi"`            // global horizontal irradiance, W/m²
}
