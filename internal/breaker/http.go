package breaker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusError marks a 5xx response as a breaker failure.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("upstream status %d", e.Code) }

// HTTPClient wraps an *http.Client so that transport errors and 5xx
// responses count against the breaker. It satisfies the Do(*http.Request)
// interface expected by API client libraries.
type HTTPClient struct {
	client *http.Client
	brk    *Breaker
}

func NewHTTPClient(brk *Breaker, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{client: client, brk: brk}
}

// ProbeURL returns a probe that issues a GET and accepts any non-5xx reply.
func ProbeURL(client *http.Client, url string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.CopyN(io.Discard, resp.Body, 64)
		if resp.StatusCode >= http.StatusInternalServerError {
			return &StatusError{Code: resp.StatusCode}
		}
		return nil
	}
}

func (h *HTTPClient) Breaker() *Breaker { return h.brk }

// Do sends req through the breaker. A 5xx response is still returned to the
// caller unless it tripped the breaker, in which case the body is closed and
// ErrOpen is returned.
func (h *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	err := h.brk.Execute(req.Context(), func(ctx context.Context) error {
		r, err := h.client.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		resp = r
		if r.StatusCode >= http.StatusInternalServerError {
			return &StatusError{Code: r.StatusCode}
		}
		return nil
	})

	var se *StatusError
	switch {
	case err == nil:
		return resp, nil
	case !errors.Is(err, ErrOpen) && errors.As(err, &se):
		return resp, nil
	default:
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
}
