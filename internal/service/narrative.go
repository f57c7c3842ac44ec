package service

import (
	"context"
	"errors"
	"fmt"

	"acsim/internal/logger"
	"acsim/internal/metrics"
	"acsim/internal/models"
	"acsim/internal/narrative"
	"acsim/internal/repository"
)

// ErrNarrativeFailed wraps every generator failure.
var ErrNarrativeFailed = errors.New("narrative generation failed")

// NarrativeService asks the generator for a commentary on a stored run.
// A generator failure leaves the run untouched.
type NarrativeService struct {
	runRepo   repository.RunRepo
	eventRepo repository.EventRepo
	gen       narrative.Generator
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func NewNarrativeService(runRepo repository.RunRepo, eventRepo repository.EventRepo, gen narrative.Generator, m *metrics.Metrics, log *logger.Logger) *NarrativeService {
	if gen == nil {
		gen = narrative.Disabled{}
	}
	return &NarrativeService{
		runRepo:   runRepo,
		eventRepo: eventRepo,
		gen:       gen,
		metrics:   m,
		log:       log.Named("narrative"),
	}
}

func (s *NarrativeService) Generate(ctx context.Context, runID string) (models.Run, error) {
	run, err := s.runRepo.Get(ctx, runID)
	if err != nil {
		return models.Run{}, mapNotFound(err)
	}

	text, err := s.gen.Generate(ctx, narrative.FromRun(run))
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, narrative.ErrDisabled) {
			outcome = metrics.OutcomeDisabled
		}
		s.metrics.NarrativeFinished(outcome)
		s.log.Warnw("narrative_failed", "run_id", runID, "error", err)
		appendEvent(ctx, s.eventRepo, s.log, models.RunEvent{
			RunID:       runID,
			Type:        models.EventNarrativeFailed,
			Description: err.Error(),
		})
		return run, fmt.Errorf("%w: run %s: %w", ErrNarrativeFailed, runID, err)
	}

	if err := s.runRepo.SetNarrative(ctx, runID, text); err != nil {
		return run, fmt.Errorf("store narrative: %w", mapNotFound(err))
	}
	run.Narrative = text

	s.metrics.NarrativeFinished(metrics.OutcomeOK)
	appendEvent(ctx, s.eventRepo, s.log, models.RunEvent{
		RunID:       runID,
		Type:        models.EventNarrativeStored,
		Description: fmt.Sprintf("narrative of %d characters stored", len(text)),
	})
	return run, nil
}
