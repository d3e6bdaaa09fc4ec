// Package access asks the distribution endpoint whether this copy of the
// tool should show its interactive surface.
package access

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Veraticus/notecheck/internal/common"
)

// DefaultURL is the endpoint the check posts to.
const DefaultURL = "https://zkixgse8n3.execute-api.us-east-1.amazonaws.com/default/HTSNoteable"

// DefaultAppID identifies this application to the endpoint.
const DefaultAppID = "HTS"

// Result is the outcome of an access check.
type Result int

// Access check outcomes.
const (
	Hidden Result = iota
	Visible
)

func (r Result) String() string {
	if r == Visible {
		return "visible"
	}
	return "hidden"
}

// Config holds the configuration for the access checker.
type Config struct {
	URL     string
	AppID   string
	Timeout time.Duration
	Enabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		URL:     DefaultURL,
		AppID:   DefaultAppID,
		Timeout: 10 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" {
		return fmt.Errorf("%w: access URL is required", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: access URL %q is not an http(s) URL", common.ErrInvalidConfig, c.URL)
	}
	if c.AppID == "" {
		return fmt.Errorf("%w: access app id is required", common.ErrMissingConfig)
	}
	return nil
}

// Checker performs the access check.
type Checker struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     Config
}

// NewChecker creates a new access checker.
func NewChecker(config Config, logger *slog.Logger) (*Checker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Checker{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

type checkRequest struct {
	AppID string `json:"appId"`
}

// Check posts the app id and returns Visible only for an HTTP 200. Every
// other status and every transport failure yields Hidden. A disabled checker
// is always Visible.
func (c *Checker) Check(ctx context.Context) Result {
	if !c.config.Enabled {
		return Visible
	}

	status, err := c.post(ctx)
	if err != nil {
		c.logger.Warn("Access check failed", "error", err)
		return Hidden
	}
	if status != http.StatusOK {
		c.logger.Info("Access check denied", "status", status)
		return Hidden
	}

	c.logger.Debug("Access check passed")
	return Visible
}

func (c *Checker) post(ctx context.Context) (int, error) {
	payload, err := json.Marshal(checkRequest{AppID: c.config.AppID})
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("access request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
