package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"acsim/internal/models"
)

// ErrNotFound is returned when a run lookup matches no row.
var ErrNotFound = errors.New("not found")

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type RunRepo interface {
	// Save stores the run and its hourly rows atomically.
	Save(ctx context.Context, run models.Run, hours []models.RunHour) error
	Get(ctx context.Context, id string) (models.Run, error)
	// List returns the newest runs first; userID 0 means every user.
	List(ctx context.Context, userID, limit int) ([]models.Run, error)
	Hours(ctx context.Context, runID string) ([]models.RunHour, error)
	SetNarrative(ctx context.Context, runID, text string) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.RunEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.RunEvent, error)
}

type Repository struct {
	RunRepo   RunRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		RunRepo:   NewRunSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
