package breaker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func fail(context.Context) error { return errBoom }
func ok(context.Context) error   { return nil }

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []State
	b := New("test", Config{MaxFailures: 2, ResetTimeout: time.Minute},
		withClock(clock.Now),
		WithStateHook(func(_ string, to State) { transitions = append(transitions, to) }))

	ctx := context.Background()
	assert.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, Closed, b.State())

	assert.ErrorIs(t, b.Execute(ctx, fail), ErrOpen)
	assert.Equal(t, Open, b.State())

	called := false
	err := b.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called, "op must not run while open")
	assert.Equal(t, []State{Open}, transitions)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b := New("test", Config{MaxFailures: 2, ResetTimeout: time.Minute})
	ctx := context.Background()

	require.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	require.NoError(t, b.Execute(ctx, ok))
	require.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []State
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Minute},
		withClock(clock.Now),
		WithStateHook(func(_ string, to State) { transitions = append(transitions, to) }))
	ctx := context.Background()

	require.ErrorIs(t, b.Execute(ctx, fail), ErrOpen)
	clock.Advance(59 * time.Second)
	require.ErrorIs(t, b.Execute(ctx, ok), ErrOpen)

	clock.Advance(time.Second)
	require.NoError(t, b.Execute(ctx, ok))
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, []State{Open, HalfOpen, Closed}, transitions)
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Minute}, withClock(clock.Now))
	ctx := context.Background()

	require.ErrorIs(t, b.Execute(ctx, fail), ErrOpen)
	clock.Advance(time.Minute)
	assert.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, Open, b.State())

	assert.ErrorIs(t, b.Execute(ctx, ok), ErrOpen, "reset timeout restarts on reopen")
}

func TestBreaker_ProbeFailureKeepsOpen(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var opCalls int
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Second},
		withClock(clock.Now),
		WithProbe(func(context.Context) error { return errBoom }))
	ctx := context.Background()

	require.ErrorIs(t, b.Execute(ctx, fail), ErrOpen)
	clock.Advance(time.Second)
	err := b.Execute(ctx, func(context.Context) error { opCalls++; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.Zero(t, opCalls)
	assert.Equal(t, Open, b.State())
}

func TestBreaker_TripKeepsCause(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Minute})

	err := b.Execute(context.Background(), fail)
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorIs(t, err, errBoom, "the failure that opened the breaker is kept")

	// fast fails carry no cause
	err = b.Execute(context.Background(), fail)
	assert.ErrorIs(t, err, ErrOpen)
	assert.NotErrorIs(t, err, errBoom)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half_open", HalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestHTTPClient_CountsServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b := New("upstream", Config{MaxFailures: 2, ResetTimeout: time.Hour})
	c := NewHTTPClient(b, srv.Client())

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err, "first 5xx is passed through")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()

	resp, err = c.Do(req)
	assert.ErrorIs(t, err, ErrOpen)
	var se *StatusError
	if assert.ErrorAs(t, err, &se) {
		assert.Equal(t, http.StatusBadGateway, se.Code)
	}
	assert.Nil(t, resp, "tripping response is closed, not returned")

	_, err = c.Do(req)
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the server")
}

func TestHTTPClient_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	b := New("upstream", Config{MaxFailures: 1, ResetTimeout: time.Hour})
	c := NewHTTPClient(b, srv.Client())
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		resp, err := c.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, Closed, b.State())
}

func TestProbeURL(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	probe := ProbeURL(srv.Client(), srv.URL)
	assert.NoError(t, probe(context.Background()))

	status.Store(http.StatusServiceUnavailable)
	var se *StatusError
	assert.ErrorAs(t, probe(context.Background()), &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}
