package service

import (
	"context"
	"errors"
	"testing"

	"acsim/internal/models"
)

func TestRunsService_Get(t *testing.T) {
	t.Parallel()
	repo := newFakeRunRepo()
	repo.runs["r1"] = models.Run{ID: "r1", UserID: 1}
	svc := NewRunsService(repo)

	run, err := svc.Get(context.Background(), "r1")
	if err != nil || run.ID != "r1" {
		t.Fatalf("Get: %+v, %v", run, err)
	}
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("want ErrRunNotFound, got %v", err)
	}
}

func TestRunsService_List_ClampsLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    int
		limit int
	}{
		{name: "default", in: 0, limit: defaultRunLimit},
		{name: "negative", in: -4, limit: defaultRunLimit},
		{name: "kept", in: 7, limit: 7},
		{name: "capped", in: 10_000, limit: maxRunLimit},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := newFakeRunRepo()
			svc := NewRunsService(repo)
			if _, err := svc.List(context.Background(), RunFilter{UserID: 9, Limit: tt.in}); err != nil {
				t.Fatalf("List: %v", err)
			}
			if repo.listLimit != tt.limit || repo.listUser != 9 {
				t.Fatalf("repo got user=%d limit=%d; want 9/%d", repo.listUser, repo.listLimit, tt.limit)
			}
		})
	}
}

func TestRunsService_Hours(t *testing.T) {
	t.Parallel()
	repo := newFakeRunRepo()
	repo.runs["r1"] = models.Run{ID: "r1"}
	repo.hours["r1"] = []models.RunHour{{Index: 0}, {Index: 1}}
	svc := NewRunsService(repo)

	hours, err := svc.Hours(context.Background(), "r1")
	if err != nil || len(hours) != 2 {
		t.Fatalf("Hours: %v, %v", hours, err)
	}
	if _, err := svc.Hours(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("want ErrRunNotFound, got %v", err)
	}
}
