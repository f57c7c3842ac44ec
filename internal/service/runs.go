package service

import (
	"context"
	"errors"
	"fmt"

	"acsim/internal/models"
	"acsim/internal/repository"
)

var ErrRunNotFound = errors.New("run not found")

const (
	defaultRunLimit = 50
	maxRunLimit     = 500
)

type RunsService struct {
	runRepo repository.RunRepo
}

func NewRunsService(runRepo repository.RunRepo) *RunsService {
	return &RunsService{runRepo: runRepo}
}

func (s *RunsService) Get(ctx context.Context, id string) (models.Run, error) {
	run, err := s.runRepo.Get(ctx, id)
	if err != nil {
		return models.Run{}, mapNotFound(err)
	}
	return run, nil
}

// List clamps the limit to (0, maxRunLimit], defaulting to defaultRunLimit.
func (s *RunsService) List(ctx context.Context, f RunFilter) ([]models.Run, error) {
	limit := f.Limit
	switch {
	case limit <= 0:
		limit = defaultRunLimit
	case limit > maxRunLimit:
		limit = maxRunLimit
	}
	return s.runRepo.List(ctx, f.UserID, limit)
}

// Hours returns the stored hourly rows; an unknown run is ErrRunNotFound.
func (s *RunsService) Hours(ctx context.Context, id string) ([]models.RunHour, error) {
	if _, err := s.runRepo.Get(ctx, id); err != nil {
		return nil, mapNotFound(err)
	}
	hours, err := s.runRepo.Hours(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load hours: %w", err)
	}
	return hours, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRunNotFound
	}
	return err
}
