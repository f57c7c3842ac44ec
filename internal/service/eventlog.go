package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"acsim/internal/logger"
	"acsim/internal/models"
	"acsim/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// ErrInvalidTimeRange is returned when From is after To.
var ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", ErrInvalidTimeRange
	}

	eventType := normalizeEventType(f.Type)
	return from, to, eventType, nil
}

// List returns run events matching f in chronological order.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.RunEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx, from, to, typ)
	if err != nil || f.RunID == "" {
		return events, err
	}
	return filterByRun(events, f.RunID), nil
}

func filterByRun(events []models.RunEvent, runID string) []models.RunEvent {
	out := make([]models.RunEvent, 0, len(events))
	for _, e := range events {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out
}

// appendEvent records an event without failing the caller; a log write
// error is reported through log only.
func appendEvent(ctx context.Context, repo repository.EventRepo, log *logger.Logger, e models.RunEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := repo.Append(ctx, e); err != nil {
		if log == nil {
			log = logger.Nop()
		}
		log.Warnw("event_append_failed", "type", e.Type, "run_id", e.RunID, "error", err)
	}
}
