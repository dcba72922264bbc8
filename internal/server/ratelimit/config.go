package ratelimit

import (
	"time"
)

// Rule limits requests to one endpoint.
type Rule struct {
	Path   string  // exact path, or a prefix when it ends with "/"
	Method string  // HTTP method
	Rate   float64 // tokens per second; 0 means unlimited
	Burst  int     // bucket capacity; defaults to 1 when Rate > 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// Rate and Burst apply to endpoints without a matching rule.
	Rate            float64
	Burst           int
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket is kept.
	IdleTTL time.Duration
	// Exempt clients are never limited.
	Exempt map[string]bool
	Rules  []Rule
}

// NewConfig returns a configuration with the given per-client default rate and
// burst and the built-in endpoint rules. A rate of zero or less disables limiting.
func NewConfig(rate float64, burst int) *Config {
	if rate <= 0 {
		return &Config{Enabled: false}
	}
	if burst < 1 {
		burst = int(rate) + 1
	}
	return &Config{
		Enabled:         true,
		Rate:            rate,
		Burst:           burst,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Exempt:          make(map[string]bool),
		Rules:           DefaultRules(),
	}
}

// DefaultRules returns the endpoint rules. Retraining is the most expensive call,
// then the full recommendation, which scores every peer and catalog job.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/train", Method: "POST", Rate: 10.0 / 3600, Burst: 2},
		{Path: "/recommendation", Method: "POST", Rate: 2, Burst: 5},
		{Path: "/recommend-jobs", Method: "POST", Rate: 2, Burst: 5},
		{Path: "/health", Method: "GET"},
		{Path: "/status", Method: "GET"},
	}
}
