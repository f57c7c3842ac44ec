package service

import (
	"context"
	"sync"
	"time"

	"acsim/internal/models"
	"acsim/internal/narrative"
	"acsim/internal/repository"
)

// fakeRunRepo is an in-memory repository.RunRepo.
type fakeRunRepo struct {
	mu    sync.Mutex
	runs  map[string]models.Run
	hours map[string][]models.RunHour

	saveErr      error
	narrativeErr error

	listUser, listLimit int
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: map[string]models.Run{}, hours: map[string][]models.RunHour{}}
}

func (f *fakeRunRepo) Save(_ context.Context, run models.Run, hours []models.RunHour) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.runs[run.ID] = run
	f.hours[run.ID] = hours
	return nil
}

func (f *fakeRunRepo) Get(_ context.Context, id string) (models.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return models.Run{}, repository.ErrNotFound
	}
	return run, nil
}

func (f *fakeRunRepo) List(_ context.Context, userID, limit int) ([]models.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listUser, f.listLimit = userID, limit
	out := make([]models.Run, 0, len(f.runs))
	for _, r := range f.runs {
		if userID == 0 || r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRunRepo) Hours(_ context.Context, runID string) ([]models.RunHour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hours[runID], nil
}

func (f *fakeRunRepo) SetNarrative(_ context.Context, runID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.narrativeErr != nil {
		return f.narrativeErr
	}
	run, ok := f.runs[runID]
	if !ok {
		return repository.ErrNotFound
	}
	run.Narrative = text
	f.runs[runID] = run
	return nil
}

type fakeGenerator struct {
	text  string
	err   error
	calls int
	got   narrative.ComparisonInput
}

func (g *fakeGenerator) Generate(_ context.Context, in narrative.ComparisonInput) (string, error) {
	g.calls++
	g.got = in
	return g.text, g.err
}

type fakePublisher struct {
	err  error
	sent []models.RunSummary
}

func (p *fakePublisher) Publish(_ context.Context, s models.RunSummary) error {
	p.sent = append(p.sent, s)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func hourlyWeather(temps ...float64) []models.WeatherSample {
	t0 := time.Date(2023, 1, 1, 1, 0, 0, 0, time.UTC)
	out := make([]models.WeatherSample, len(temps))
	for i, temp := range temps {
		out[i] = models.WeatherSample{Time: t0.Add(time.Duration(i) * time.Hour), OutdoorTempC: temp, GHI: 400}
	}
	return out
}
