package lagoonclient

import "time"

// Defaults
const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetry     = 3
	DefaultBatchSize = 100
)

// Config is the configuration data used by the lagoonclient interface implementation
type Config struct {
	// Endpoint is the GraphQL endpoint, e.g. https://api.lagoon.sh/graphql
	Endpoint string
	Token    string
	// Headers are added to every request. They never override Content-Type
	// and Authorization.
	Headers map[string]string
	Timeout time.Duration
	// Retry is the number of retries on connection failures, DefaultRetry
	// when unset. NoRetry disables them.
	Retry                 int
	NoRetry               bool
	BatchSize             int
	InsecureSkipVerifyTLS bool
	Verbose               bool
	// ExitOnError makes accessors stop at the first batch returning errors.
	ExitOnError bool
}

func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	switch {
	case c.NoRetry || c.Retry < 0:
		c.Retry = 0
	case c.Retry == 0:
		c.Retry = DefaultRetry
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	return c
}
