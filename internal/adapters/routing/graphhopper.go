package routing

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"consolidation-route-service/internal/adapters/cache"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://graphhopper.com/api/1"
	DefaultTimeout = 10 * time.Second

	// Upper bounds on points sent per request.
	maxMatrixPoints = 5
	maxRoutePoints  = 15

	vehicle = "car"
)

// Config holds the GraphHopper client settings.
// A zero RateLimit disables outbound throttling.
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// GraphHopperClient implements ports.RoutingProvider against the GraphHopper
// matrix and route APIs.
//
// Matrix responses are kept in a bounded FIFO cache keyed by the requested
// points; route geometries are always fetched. Calls are never retried.
//
// The client is safe for concurrent use.
type GraphHopperClient struct {
	session   *http.Client
	apiKey    string
	baseURL   string
	responses *cache.ResponseCache
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

// NewGraphHopperClient builds a client. A missing API key is not an error
// here; every call then fails with domain.ErrConfiguration.
func NewGraphHopperClient(cfg Config, responses *cache.ResponseCache, logger *slog.Logger) *GraphHopperClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if responses == nil {
		responses = cache.NewResponseCache(cache.DefaultCapacity)
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "graphhopper",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &GraphHopperClient{
		session:   &http.Client{Timeout: cfg.Timeout},
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		responses: responses,
		limiter:   rate.NewLimiter(limit, burst),
		breaker:   breaker,
		logger:    logger,
	}
}

func (g *GraphHopperClient) configured() bool { return g.apiKey != "" }
