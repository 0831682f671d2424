package apiclient

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the transport settings for the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns a Config pointing at a local backend with the
// standard 10 second request timeout.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8087/api",
		Timeout: 10 * time.Second,
	}
}

// Validate checks that the base URL is an absolute http(s) URL and the
// timeout is positive.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url %q must use http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base url %q has no host", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
