package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"acsim/internal/models"
	"acsim/internal/repository/db"
)

// Round trip against a real sqlite file to cover schema and type mapping.
func TestSQLite_RunLifecycle(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "acsim.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	repo := NewRepository(conn)
	c := context.Background()

	uid, err := repo.Auth.Create(c, "alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	run := testRun(t)
	run.UserID = uid
	if err := repo.RunRepo.Save(c, run, testHours()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.RunRepo.Get(c, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) || got.Baseline != run.Baseline || got.Optimized != run.Optimized {
		t.Fatalf("run mismatch: %+v", got)
	}
	if got.SavingsPct != run.SavingsPct || got.Narrative != "" {
		t.Fatalf("unexpected summary fields: %+v", got)
	}

	hours, err := repo.RunRepo.Hours(c, run.ID)
	if err != nil {
		t.Fatalf("Hours: %v", err)
	}
	want := testHours()
	if len(hours) != len(want) {
		t.Fatalf("want %d hours, got %d", len(want), len(hours))
	}
	for i := range want {
		if !hours[i].Time.Equal(want[i].Time) || hours[i].OptimizedKWh != want[i].OptimizedKWh {
			t.Fatalf("hour %d mismatch: %+v", i, hours[i])
		}
	}

	if err := repo.RunRepo.SetNarrative(c, run.ID, "better glazing"); err != nil {
		t.Fatalf("SetNarrative: %v", err)
	}
	if err := repo.RunRepo.SetNarrative(c, "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := repo.RunRepo.List(c, uid, 5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Narrative != "better glazing" {
		t.Fatalf("unexpected list: %+v", list)
	}

	at := time.Date(2025, 6, 1, 8, 0, 1, 0, time.UTC)
	if err := repo.EventRepo.Append(c, models.RunEvent{RunID: run.ID, OccurredAt: at, Type: models.EventRunCompleted, Description: "done"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	events, err := repo.EventRepo.List(c, at.Add(-time.Second), at, "run_completed")
	if err != nil {
		t.Fatalf("List events: %v", err)
	}
	if len(events) != 1 || events[0].RunID != run.ID || !events[0].OccurredAt.Equal(at) {
		t.Fatalf("unexpected events: %+v", events)
	}
}
