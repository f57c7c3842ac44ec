package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"acsim/internal/logger"
	"acsim/internal/metrics"
	"acsim/internal/models"
	"acsim/internal/publish"
	"acsim/internal/repository"
	"acsim/internal/thermal"
)

// Scenario names used in errors, logs and metrics.
const (
	ScenarioBaseline  = "baseline"
	ScenarioOptimized = "optimized"
)

// ErrNoWeather is returned for a comparison without any hourly sample.
var ErrNoWeather = errors.New("weather series is empty")

// ScenarioError ties a validation or lookup failure to the scenario it
// came from.
type ScenarioError struct {
	Scenario string
	Err      error
}

func (e *ScenarioError) Error() string { return e.Scenario + " scenario: " + e.Err.Error() }
func (e *ScenarioError) Unwrap() error { return e.Err }

type SimulationService struct {
	runRepo   repository.RunRepo
	eventRepo repository.EventRepo
	publisher publish.Publisher
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

func NewSimulationService(runRepo repository.RunRepo, eventRepo repository.EventRepo, pub publish.Publisher, m *metrics.Metrics, log *logger.Logger) *SimulationService {
	if pub == nil {
		pub = publish.Nop{}
	}
	return &SimulationService{
		runRepo:   runRepo,
		eventRepo: eventRepo,
		publisher: pub,
		metrics:   m,
		log:       log.Named("simulation"),
		now:       time.Now,
	}
}

// Compare simulates both scenarios over the same weather concurrently,
// stores the run with its hourly rows and publishes the summary. An empty
// weather series is rejected here with ErrNoWeather; thermal.Simulate itself
// accepts it and returns an empty result.
func (s *SimulationService) Compare(ctx context.Context, p CompareParams) (models.Run, error) {
	run, hours, err := s.simulate(ctx, p)
	if err != nil {
		s.fail(ctx, p, err)
		return models.Run{}, err
	}

	if err := s.runRepo.Save(ctx, run, hours); err != nil {
		err = fmt.Errorf("store run: %w", err)
		s.fail(ctx, p, err)
		return models.Run{}, err
	}

	appendEvent(ctx, s.eventRepo, s.log, models.RunEvent{
		RunID:       run.ID,
		OccurredAt:  run.CreatedAt,
		Type:        models.EventRunCompleted,
		Description: fmt.Sprintf("compared %d hours, savings %.1f %%", run.HourCount, run.SavingsPct),
		Metadata: map[string]any{
			"baseline_energy_kwh":  run.BaselineEnergyKWh,
			"optimized_energy_kwh": run.OptimizedEnergyKWh,
			"savings_pct":          run.SavingsPct,
			"source":               run.Source,
		},
	})

	if err := s.publisher.Publish(ctx, run.Summary()); err != nil {
		s.metrics.PublishFailed()
		s.log.Warnw("publish_failed", "run_id", run.ID, "error", err)
	}

	s.metrics.RunFinished(metrics.OutcomeOK)
	s.log.Infow("run_completed",
		"run_id", run.ID,
		"user_id", run.UserID,
		"hours", run.HourCount,
		"baseline_kwh", run.BaselineEnergyKWh,
		"optimized_kwh", run.OptimizedEnergyKWh,
		"savings_pct", run.SavingsPct,
	)
	return run, nil
}

func (s *SimulationService) simulate(ctx context.Context, p CompareParams) (models.Run, []models.RunHour, error) {
	if len(p.Weather) == 0 {
		return models.Run{}, nil, ErrNoWeather
	}
	if err := p.Baseline.Validate(); err != nil {
		return models.Run{}, nil, &ScenarioError{Scenario: ScenarioBaseline, Err: err}
	}
	if err := p.Optimized.Validate(); err != nil {
		return models.Run{}, nil, &ScenarioError{Scenario: ScenarioOptimized, Err: err}
	}

	var baseline, optimized models.SimulationResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		baseline, err = s.run(gctx, ScenarioBaseline, p.Baseline, p.Weather)
		return err
	})
	g.Go(func() (err error) {
		optimized, err = s.run(gctx, ScenarioOptimized, p.Optimized, p.Weather)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Run{}, nil, err
	}

	hours, err := models.PairHours(baseline, optimized)
	if err != nil {
		return models.Run{}, nil, err
	}

	cmp := thermal.Compare(baseline, optimized)
	run := models.Run{
		ID:                 uuid.NewString(),
		UserID:             p.UserID,
		CreatedAt:          s.now().UTC(),
		Source:             p.Source,
		HourCount:          len(hours),
		Baseline:           p.Baseline,
		Optimized:          p.Optimized,
		BaselineEnergyKWh:  baseline.TotalEnergyKWh,
		OptimizedEnergyKWh: optimized.TotalEnergyKWh,
		BaselinePeakKW:     baseline.PeakPowerKW,
		OptimizedPeakKW:    optimized.PeakPowerKW,
		SavingsPct:         cmp.SavingsPct,
	}
	return run, hours, nil
}

func (s *SimulationService) run(ctx context.Context, name string, sc models.Scenario, weather []models.WeatherSample) (models.SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return models.SimulationResult{}, err
	}
	start := time.Now()
	res, err := thermal.Simulate(sc, weather)
	if err != nil {
		return models.SimulationResult{}, &ScenarioError{Scenario: name, Err: err}
	}
	s.metrics.ObserveSimulation(name, len(res.Hours), time.Since(start))
	return res, nil
}

func (s *SimulationService) fail(ctx context.Context, p CompareParams, err error) {
	s.metrics.RunFinished(metrics.OutcomeError)
	s.log.Errorw("simulation_failed", "user_id", p.UserID, "source", p.Source, "error", err)
	appendEvent(ctx, s.eventRepo, s.log, models.RunEvent{
		Type:        models.EventRunFailed,
		Description: err.Error(),
		Metadata:    map[string]any{"user_id": p.UserID, "source": p.Source},
	})
}
