package llm

import "time"

// Float64Ptr returns a pointer to the given float64 value.
// Useful for constructing ChatRequest with an explicit temperature.
func Float64Ptr(v float64) *float64 {
	return &v
}

// clientConfig holds configuration for an LLM client.
type clientConfig struct {
	baseURL    string
	apiKey     string
	retries    int
	retryDelay time.Duration
}

// Option is a functional option for configuring an LLM client.
type Option func(*clientConfig)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAPIKey sets the API key. Ollama ignores it.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithRetries allows n additional attempts after a transient failure.
// Negative values are treated as zero.
func WithRetries(n int) Option {
	return func(c *clientConfig) {
		c.retries = max(n, 0)
	}
}

// WithRetryDelay sets the base delay of the exponential backoff.
func WithRetryDelay(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}
