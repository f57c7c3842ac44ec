package service

import (
	"time"

	"acsim/internal/models"
)

// CompareParams is one comparison request.
type CompareParams struct {
	UserID    int
	Baseline  models.Scenario
	Optimized models.Scenario
	Weather   []models.WeatherSample
	Source    string // weather origin, stored with the run
}

// RunFilter narrows run listings. Zero UserID lists every user's runs.
type RunFilter struct {
	UserID int
	Limit  int
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // "", "RUN_COMPLETED", "RUN_FAILED", "NARRATIVE_STORED", "NARRATIVE_FAILED"
	RunID string    // events of one run only; empty means all runs
}
