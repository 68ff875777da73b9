package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"consolidation-route-service/internal/domain"
	"consolidation-route-service/internal/platform/metrics"

	"github.com/sony/gobreaker"
)

// Upper bound on response bodies read from the provider.
const maxBodyBytes = 8 << 20

func (g *GraphHopperClient) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do sends req once through the rate limiter and circuit breaker and returns
// the body of a 2xx response. Every failure is a *domain.ProviderError.
func (g *GraphHopperClient) do(kind string, req *http.Request) ([]byte, error) {
	op := "graphhopper." + kind

	if err := g.limiter.Wait(req.Context()); err != nil {
		metrics.ProviderRequests.WithLabelValues(kind, "throttled").Inc()
		return nil, &domain.ProviderError{Op: op, Message: "rate limit wait", Err: err}
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		resp, err := g.session.Do(req)
		if err != nil {
			return nil, &domain.ProviderError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &domain.ProviderError{
				Op:         op,
				StatusCode: resp.StatusCode,
				Message:    upstreamMessage(b),
			}
		}
		return b, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ProviderRequests.WithLabelValues(kind, "circuit_open").Inc()
			return nil, &domain.ProviderError{Op: op, Message: "circuit breaker open", Err: err}
		}
		metrics.ProviderRequests.WithLabelValues(kind, "error").Inc()
		return nil, err
	}

	metrics.ProviderRequests.WithLabelValues(kind, "ok").Inc()
	return out.([]byte), nil
}

// countsAsSuccess keeps deterministic client errors (4xx except 429) from
// tripping the breaker; the provider answered, the request was wrong.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) && pe.StatusCode >= 400 && pe.StatusCode < 500 {
		return pe.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// upstreamMessage extracts GraphHopper's {"message": "..."} error text,
// falling back to the trimmed body.
func upstreamMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}
