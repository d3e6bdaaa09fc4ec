package portal

import (
	"context"
	"sync"

	"github.com/Veraticus/notecheck/internal/model"
)

// MockClient is a mock implementation of API for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	LoginFn         func(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	InitiateMFAFn   func(ctx context.Context, challengeToken, phone string) error
	CompleteMFAFn   func(ctx context.Context, challengeToken, code string) (*SessionResponse, error)
	SearchReportsFn func(ctx context.Context, sessionToken string, req SearchRequest) ([]model.DocumentRecord, error)

	// Call tracking
	LoginCalls    []LoginRequest
	InitiateCalls []InitiateCall
	CompleteCalls []CompleteCall
	SearchCalls   []SearchCall
	mu            sync.Mutex
}

// InitiateCall records the parameters of an InitiateMFA call.
type InitiateCall struct {
	ChallengeToken string
	Phone          string
}

// CompleteCall records the parameters of a CompleteMFA call.
type CompleteCall struct {
	ChallengeToken string
	Code           string
}

// SearchCall records the parameters of a SearchReports call.
type SearchCall struct {
	SessionToken string
	Request      SearchRequest
}

// NewMockClient creates a new mock portal client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Login implements API.Login.
func (m *MockClient) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	m.mu.Lock()
	m.LoginCalls = append(m.LoginCalls, req)
	fn := m.LoginFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}

	// Default behavior: log straight in
	return &LoginResponse{SessionToken: "mock-session"}, nil
}

// InitiateMFA implements API.InitiateMFA.
func (m *MockClient) InitiateMFA(ctx context.Context, challengeToken, phone string) error {
	m.mu.Lock()
	m.InitiateCalls = append(m.InitiateCalls, InitiateCall{ChallengeToken: challengeToken, Phone: phone})
	fn := m.InitiateMFAFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, challengeToken, phone)
	}
	return nil
}

// CompleteMFA implements API.CompleteMFA.
func (m *MockClient) CompleteMFA(ctx context.Context, challengeToken, code string) (*SessionResponse, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, CompleteCall{ChallengeToken: challengeToken, Code: code})
	fn := m.CompleteMFAFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, challengeToken, code)
	}
	return &SessionResponse{SessionToken: "mock-session"}, nil
}

// SearchReports implements API.SearchReports.
func (m *MockClient) SearchReports(ctx context.Context, sessionToken string, req SearchRequest) ([]model.DocumentRecord, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, SearchCall{SessionToken: sessionToken, Request: req})
	fn := m.SearchReportsFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, sessionToken, req)
	}

	// Default behavior: return empty slice
	return []model.DocumentRecord{}, nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LoginCalls = nil
	m.InitiateCalls = nil
	m.CompleteCalls = nil
	m.SearchCalls = nil
}

// Ensure MockClient implements API interface.
var _ API = (*MockClient)(nil)
