package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"acsim/internal/models"
	"acsim/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockSimulation struct {
	run    models.Run
	err    error
	mu     sync.Mutex
	last   service.CompareParams
	called int
}

func (m *mockSimulation) Compare(ctx context.Context, p service.CompareParams) (models.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called++
	m.last = p
	if m.err != nil {
		return models.Run{}, m.err
	}
	run := m.run
	run.UserID = p.UserID
	return run, nil
}

type mockRuns struct {
	runs     map[string]models.Run
	hours    map[string][]models.RunHour
	listErr  error
	hoursErr error
	lastList service.RunFilter
}

func (m *mockRuns) Get(ctx context.Context, id string) (models.Run, error) {
	run, ok := m.runs[id]
	if !ok {
		return models.Run{}, service.ErrRunNotFound
	}
	return run, nil
}
func (m *mockRuns) List(ctx context.Context, f service.RunFilter) ([]models.Run, error) {
	m.lastList = f
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Run
	for _, r := range m.runs {
		if r.UserID == f.UserID {
			out = append(out, r)
		}
	}
	return out, nil
}
func (m *mockRuns) Hours(ctx context.Context, id string) ([]models.RunHour, error) {
	if m.hoursErr != nil {
		return nil, m.hoursErr
	}
	if _, ok := m.runs[id]; !ok {
		return nil, service.ErrRunNotFound
	}
	return m.hours[id], nil
}

type mockNarrative struct {
	text   string
	err    error
	runs   *mockRuns
	lastID string
}

func (m *mockNarrative) Generate(ctx context.Context, runID string) (models.Run, error) {
	m.lastID = runID
	run := m.runs.runs[runID]
	if m.err != nil {
		return run, m.err
	}
	run.Narrative = m.text
	return run, nil
}

type mockEventLog struct {
	resp      []models.RunEvent
	err       error
	lastFrom  time.Time
	lastTo    time.Time
	lastType  string
	lastRunID string
	calls     int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.RunEvent, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastRunID = f.RunID
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWithConfig(s, Config{})
}

func newTestRouterWithConfig(s *service.Service, cfg Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, cfg)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request, token string) *http.Request {
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
