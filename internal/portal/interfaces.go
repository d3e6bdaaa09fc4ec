package portal

import (
	"context"

	"github.com/Veraticus/notecheck/internal/model"
)

// Authenticator defines the login and MFA endpoints.
type Authenticator interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	InitiateMFA(ctx context.Context, challengeToken, phone string) error
	CompleteMFA(ctx context.Context, challengeToken, code string) (*SessionResponse, error)
}

// ReportSearcher defines the report search endpoint.
type ReportSearcher interface {
	SearchReports(ctx context.Context, sessionToken string, req SearchRequest) ([]model.DocumentRecord, error)
}

// API is the full portal surface used by the application.
type API interface {
	Authenticator
	ReportSearcher
}

var _ API = (*Client)(nil)
