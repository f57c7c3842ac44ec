package service

import (
	"context"

	"acsim/internal/logger"
	"acsim/internal/metrics"
	"acsim/internal/models"
	"acsim/internal/narrative"
	"acsim/internal/publish"
	"acsim/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Simulation runs a baseline/optimized comparison and stores it.
type Simulation interface {
	Compare(ctx context.Context, p CompareParams) (models.Run, error)
}

// Runs exposes stored comparisons.
type Runs interface {
	Get(ctx context.Context, id string) (models.Run, error)
	List(ctx context.Context, f RunFilter) ([]models.Run, error)
	Hours(ctx context.Context, id string) ([]models.RunHour, error)
}

// Narrative attaches a generated commentary to a stored run.
type Narrative interface {
	Generate(ctx context.Context, runID string) (models.Run, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.RunEvent, error)
}

type Service struct {
	Simulation
	Runs
	Narrative
	EventLog
	Authorization
}

// Deps are the collaborators shared by the services. Nil fields fall back
// to no-op implementations.
type Deps struct {
	Log       *logger.Logger
	Metrics   *metrics.Metrics
	Generator narrative.Generator
	Publisher publish.Publisher
	Auth      AuthConfig
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Generator == nil {
		d.Generator = narrative.Disabled{}
	}
	if d.Publisher == nil {
		d.Publisher = publish.Nop{}
	}
	return d
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	deps = deps.withDefaults()
	return &Service{
		Simulation:    NewSimulationService(repos.RunRepo, repos.EventRepo, deps.Publisher, deps.Metrics, deps.Log),
		Runs:          NewRunsService(repos.RunRepo),
		Narrative:     NewNarrativeService(repos.RunRepo, repos.EventRepo, deps.Generator, deps.Metrics, deps.Log),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, deps.Auth),
	}
}
