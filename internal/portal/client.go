// Package portal provides a client for the Noteable clinical-records API.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/notecheck/internal/common"
	"github.com/Veraticus/notecheck/internal/model"
	"golang.org/x/net/publicsuffix"
)

// Endpoint paths relative to the API base URL.
const (
	PathLogin       = "/profile/login"
	PathMFAInitiate = "/profile/mfa/initiate"
	PathMFAComplete = "/profile/mfa/complete"
	PathSearch      = "/clinicalreport/search"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://www.mynoteable.com/Noteable.API/api"

// Config holds the configuration for the portal client.
type Config struct {
	BaseURL       string
	SessionHeader string
	UserAgent     string
	Timeout       time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		SessionHeader: "SessionToken",
		UserAgent:     "notecheck",
		Timeout:       30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: portal base URL is required", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: portal base URL %q is not an http(s) URL", common.ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: portal timeout cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

// Client talks to the portal over HTTP. Cookies set by the portal are kept
// for the lifetime of the client.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     Config
}

// NewClient creates a new portal client.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Jar:     jar,
		},
	}, nil
}

// Login posts credentials and the caller's timezone offset.
// A response carrying errors is returned as an *APIError.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.post(ctx, PathLogin, "", req, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if !resp.Errors.Empty() {
		return nil, &APIError{Op: "login", Messages: resp.Errors, StatusCode: http.StatusOK}
	}

	c.logger.Debug("login response received", "mfa_required", resp.HasChallenge())
	return &resp, nil
}

// InitiateMFA asks the portal to send the challenge code to the phone.
func (c *Client) InitiateMFA(ctx context.Context, challengeToken, phone string) error {
	body := mfaInitiateRequest{
		ChallengeToken: challengeToken,
		PhoneNumber:    phone,
	}

	data, err := c.send(ctx, PathMFAInitiate, "", body)
	if err != nil {
		return fmt.Errorf("MFA initiation failed: %w", err)
	}

	// Only an explicit errors payload counts; any other body is success.
	var resp errorEnvelope
	if json.Unmarshal(data, &resp) == nil && !resp.Errors.Empty() {
		return &APIError{Op: "mfa initiate", Messages: resp.Errors, StatusCode: http.StatusOK}
	}
	return nil
}

// CompleteMFA submits the user's code and returns the session payload.
func (c *Client) CompleteMFA(ctx context.Context, challengeToken, code string) (*SessionResponse, error) {
	body := mfaCompleteRequest{
		ChallengeToken: challengeToken,
		Code:           code,
	}

	var resp SessionResponse
	if err := c.post(ctx, PathMFAComplete, "", body, &resp); err != nil {
		return nil, fmt.Errorf("MFA completion failed: %w", err)
	}
	if !resp.Errors.Empty() {
		return nil, &APIError{Op: "mfa complete", Messages: resp.Errors, StatusCode: http.StatusOK}
	}
	return &resp, nil
}

// SearchReports runs a single clinical report search. The portal returns the
// whole result set in one page.
func (c *Client) SearchReports(ctx context.Context, sessionToken string, req SearchRequest) ([]model.DocumentRecord, error) {
	var raw json.RawMessage
	if err := c.post(ctx, PathSearch, sessionToken, req.normalize(), &raw); err != nil {
		return nil, fmt.Errorf("report search failed: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || string(raw) == "null":
		return []model.DocumentRecord{}, nil
	case raw[0] == '[':
		var records []model.DocumentRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("failed to decode report records: %w", err)
		}
		return records, nil
	case raw[0] == '{':
		var envelope errorEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode report response: %w", err)
		}
		if !envelope.Errors.Empty() {
			return nil, &APIError{Op: "report search", Messages: envelope.Errors, StatusCode: http.StatusOK}
		}
		return nil, fmt.Errorf("report search returned an object without records")
	default:
		return nil, fmt.Errorf("report search returned an unexpected payload")
	}
}

// post sends body and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path, sessionToken string, body, out any) error {
	data, err := c.send(ctx, path, sessionToken, body)
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send encodes body as JSON, posts it and returns the raw response body.
// Non-2xx statuses are returned as *APIError.
func (c *Client) send(ctx context.Context, path, sessionToken string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if sessionToken != "" && c.config.SessionHeader != "" {
		req.Header.Set(c.config.SessionHeader, sessionToken)
	}

	c.logger.Debug("portal request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", common.ErrPortalUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Op: strings.TrimPrefix(path, "/"), StatusCode: resp.StatusCode}
		var envelope errorEnvelope
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Messages = envelope.Errors
		}
		return nil, apiErr
	}

	return data, nil
}

// TimezoneOffset returns the offset the way a browser reports it: minutes
// between local time and UTC, positive west of Greenwich.
func TimezoneOffset(t time.Time) int {
	_, offset := t.Zone()
	return -offset / 60
}
