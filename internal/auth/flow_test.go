package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/notecheck/internal/common"
	"github.com/Veraticus/notecheck/internal/model"
	"github.com/Veraticus/notecheck/internal/portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock whose sleeps advance time.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
	mu     sync.Mutex
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestFlow(api portal.Authenticator, clock *fakeClock, opts ...Option) *Flow {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(clock.Now),
		WithSleeper(clock.Sleep),
	}
	return NewFlow(api, append(base, opts...)...)
}

func challengeLogin(_ context.Context, _ portal.LoginRequest) (*portal.LoginResponse, error) {
	return &portal.LoginResponse{MfaChallengeToken: "chal-1", MfaChallengePhone: "5551234567"}, nil
}

var creds = Credentials{Email: "user@example.com", Password: "secret", TimezoneOffset: 300}

func TestFlow_LoginDirectSession(t *testing.T) {
	api := portal.NewMockClient()
	api.LoginFn = func(_ context.Context, req portal.LoginRequest) (*portal.LoginResponse, error) {
		assert.Equal(t, "user@example.com", req.Email)
		assert.Equal(t, "secret", req.Password)
		assert.Equal(t, 300, req.TimezoneOffset)
		return &portal.LoginResponse{SessionToken: "sess-1"}, nil
	}

	flow := newTestFlow(api, newFakeClock())

	var observed []State
	flow.OnStateChange(func(s State) { observed = append(observed, s) })

	outcome, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)
	assert.False(t, outcome.NeedsMFA())
	require.NotNil(t, outcome.Session)
	assert.Equal(t, "sess-1", outcome.Session.Token)

	assert.Equal(t, StateLoggedIn, flow.State())
	assert.Equal(t, PhaseNone, flow.Phase())
	assert.Equal(t, []State{StateLoggedIn}, observed)

	session, err := flow.Session()
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.Token)
	assert.Empty(t, api.InitiateCalls)
}

func TestFlow_LoginErrors(t *testing.T) {
	rejected := &portal.APIError{Op: "login", Messages: portal.APIErrors{"bad password"}}

	tests := []struct {
		loginFn func(context.Context, portal.LoginRequest) (*portal.LoginResponse, error)
		wantErr error
		name    string
		creds   Credentials
	}{
		{
			name:    "missing credentials",
			creds:   Credentials{Email: " "},
			wantErr: common.ErrMissingCredentials,
		},
		{
			name:  "rejected",
			creds: creds,
			loginFn: func(context.Context, portal.LoginRequest) (*portal.LoginResponse, error) {
				return nil, rejected
			},
			wantErr: common.ErrPortalRejected,
		},
		{
			name:  "empty response",
			creds: creds,
			loginFn: func(context.Context, portal.LoginRequest) (*portal.LoginResponse, error) {
				return &portal.LoginResponse{}, nil
			},
			wantErr: common.ErrPortalRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := portal.NewMockClient()
			api.LoginFn = tt.loginFn
			flow := newTestFlow(api, newFakeClock())

			_, err := flow.Login(context.Background(), tt.creds)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateLoggedOut, flow.State())

			_, err = flow.Session()
			assert.ErrorIs(t, err, common.ErrNotAuthenticated)
		})
	}
}

func TestFlow_ChallengeLifecycle(t *testing.T) {
	clock := newFakeClock()
	api := portal.NewMockClient()
	api.LoginFn = challengeLogin
	api.CompleteMFAFn = func(_ context.Context, token, code string) (*portal.SessionResponse, error) {
		assert.Equal(t, "chal-1", token)
		assert.Equal(t, "123456", code)
		return &portal.SessionResponse{SessionToken: "sess-mfa"}, nil
	}

	flow := newTestFlow(api, clock)

	var observed []State
	flow.OnStateChange(func(s State) { observed = append(observed, s) })

	outcome, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)
	require.True(t, outcome.NeedsMFA())
	assert.Equal(t, "chal-1", outcome.Challenge.Token)
	assert.Equal(t, "5551234567", outcome.Challenge.Phone)
	assert.Equal(t, StateAwaitingMFA, flow.State())
	assert.Equal(t, PhaseChallengeIssued, flow.Phase())

	_, err = flow.Session()
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	// Code cannot be submitted before the challenge is initiated.
	_, err = flow.CompleteMFA(context.Background(), "123456")
	assert.ErrorIs(t, err, common.ErrNoChallenge)

	require.NoError(t, flow.Initiate(context.Background()))
	assert.Equal(t, PhaseAwaitingCode, flow.Phase())
	require.Len(t, api.InitiateCalls, 1)
	assert.Equal(t, portal.InitiateCall{ChallengeToken: "chal-1", Phone: "5551234567"}, api.InitiateCalls[0])
	assert.Equal(t, []time.Duration{DefaultMinimumDwell}, clock.sleeps)

	deadline, ok := flow.CodeDeadline()
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(DefaultCodeTimeout), deadline)

	session, err := flow.CompleteMFA(context.Background(), " 123456 ")
	require.NoError(t, err)
	assert.Equal(t, "sess-mfa", session.Token)
	assert.Equal(t, StateLoggedIn, flow.State())
	assert.Equal(t, PhaseCompleted, flow.Phase())

	_, pending := flow.Challenge()
	assert.False(t, pending)
	assert.Equal(t, []State{StateAwaitingMFA, StateLoggedIn}, observed)
}

func TestFlow_InitiateHonorsElapsedDwell(t *testing.T) {
	clock := newFakeClock()
	api := portal.NewMockClient()
	api.LoginFn = challengeLogin

	flow := newTestFlow(api, clock, WithMinimumDwell(time.Second))

	_, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)

	clock.Advance(400 * time.Millisecond)
	require.NoError(t, flow.Initiate(context.Background()))
	assert.Equal(t, []time.Duration{600 * time.Millisecond}, clock.sleeps)

	// A second initiate is rejected: the challenge already moved on.
	assert.ErrorIs(t, flow.Initiate(context.Background()), common.ErrNoChallenge)
}

func TestFlow_InitiateNoWaitAfterDwell(t *testing.T) {
	clock := newFakeClock()
	api := portal.NewMockClient()
	api.LoginFn = challengeLogin

	flow := newTestFlow(api, clock)

	_, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)

	clock.Advance(5 * time.Second)
	require.NoError(t, flow.Initiate(context.Background()))
	assert.Empty(t, clock.sleeps)
}

func TestFlow_InitiateCanceled(t *testing.T) {
	api := portal.NewMockClient()
	api.LoginFn = challengeLogin

	flow := newTestFlow(api, newFakeClock())
	_, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = flow.Initiate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateLoggedOut, flow.State())
	assert.Empty(t, api.InitiateCalls)
}

func TestFlow_InitiateFailure(t *testing.T) {
	api := portal.NewMockClient()
	api.LoginFn = challengeLogin
	api.InitiateMFAFn = func(context.Context, string, string) error {
		return errors.New("sms gateway down")
	}

	flow := newTestFlow(api, newFakeClock())
	_, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)

	require.Error(t, flow.Initiate(context.Background()))
	assert.Equal(t, StateLoggedOut, flow.State())
	assert.Equal(t, PhaseNone, flow.Phase())
}

func TestFlow_CompleteMFARejected(t *testing.T) {
	api := portal.NewMockClient()
	api.LoginFn = challengeLogin
	api.CompleteMFAFn = func(context.Context, string, string) (*portal.SessionResponse, error) {
		return nil, &portal.APIError{Op: "mfa complete", Messages: portal.APIErrors{"Invalid code"}}
	}

	flow := newTestFlow(api, newFakeClock())
	_, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)
	require.NoError(t, flow.Initiate(context.Background()))

	_, err = flow.CompleteMFA(context.Background(), "000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPortalRejected)
	assert.Equal(t, StateLoggedOut, flow.State())

	// The challenge was consumed; resubmitting needs a fresh login.
	_, err = flow.CompleteMFA(context.Background(), "000000")
	assert.ErrorIs(t, err, common.ErrNoChallenge)
	assert.Len(t, api.CompleteCalls, 1)
}

func TestFlow_CompleteMFAEmptyCode(t *testing.T) {
	api := portal.NewMockClient()
	api.LoginFn = challengeLogin

	flow := newTestFlow(api, newFakeClock())
	_, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)
	require.NoError(t, flow.Initiate(context.Background()))

	_, err = flow.CompleteMFA(context.Background(), "   ")
	assert.ErrorIs(t, err, common.ErrEmptyCode)
	assert.Equal(t, StateAwaitingMFA, flow.State())
	assert.Empty(t, api.CompleteCalls)
}

func TestFlow_CodeTimeout(t *testing.T) {
	clock := newFakeClock()
	api := portal.NewMockClient()
	api.LoginFn = challengeLogin

	flow := newTestFlow(api, clock, WithCodeTimeout(time.Minute))
	_, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)
	require.NoError(t, flow.Initiate(context.Background()))

	clock.Advance(2 * time.Minute)

	_, err = flow.CompleteMFA(context.Background(), "123456")
	assert.ErrorIs(t, err, common.ErrChallengeExpired)
	assert.Equal(t, StateLoggedOut, flow.State())
	assert.Empty(t, api.CompleteCalls)
}

func TestFlow_NoCodeTimeoutWaitsForever(t *testing.T) {
	clock := newFakeClock()
	api := portal.NewMockClient()
	api.LoginFn = challengeLogin

	flow := newTestFlow(api, clock, WithCodeTimeout(0))
	_, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)
	require.NoError(t, flow.Initiate(context.Background()))

	_, ok := flow.CodeDeadline()
	assert.False(t, ok)

	clock.Advance(72 * time.Hour)

	session, err := flow.CompleteMFA(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "mock-session", session.Token)
}

func TestFlow_Authenticate(t *testing.T) {
	t.Run("with challenge", func(t *testing.T) {
		api := portal.NewMockClient()
		api.LoginFn = challengeLogin

		flow := newTestFlow(api, newFakeClock())

		var asked model.MFAChallenge
		source := CodeSourceFunc(func(ctx context.Context, challenge model.MFAChallenge) (string, error) {
			asked = challenge
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return "424242", nil
		})

		session, err := flow.Authenticate(context.Background(), creds, source)
		require.NoError(t, err)
		assert.Equal(t, "mock-session", session.Token)
		assert.Equal(t, "chal-1", asked.Token)
		require.Len(t, api.CompleteCalls, 1)
		assert.Equal(t, "424242", api.CompleteCalls[0].Code)
	})

	t.Run("without challenge never asks for a code", func(t *testing.T) {
		api := portal.NewMockClient()
		flow := newTestFlow(api, newFakeClock())

		source := CodeSourceFunc(func(context.Context, model.MFAChallenge) (string, error) {
			t.Fatal("code source should not be called")
			return "", nil
		})

		session, err := flow.Authenticate(context.Background(), creds, source)
		require.NoError(t, err)
		assert.Equal(t, "mock-session", session.Token)
	})

	t.Run("code entry deadline", func(t *testing.T) {
		api := portal.NewMockClient()
		api.LoginFn = challengeLogin

		flow := NewFlow(api,
			WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			WithMinimumDwell(0),
			WithCodeTimeout(10*time.Millisecond),
		)

		source := CodeSourceFunc(func(ctx context.Context, _ model.MFAChallenge) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

		_, err := flow.Authenticate(context.Background(), creds, source)
		assert.ErrorIs(t, err, common.ErrChallengeExpired)
		assert.Equal(t, StateLoggedOut, flow.State())
		assert.Empty(t, api.CompleteCalls)
	})

	t.Run("code deadline follows the flow clock", func(t *testing.T) {
		api := portal.NewMockClient()
		api.LoginFn = challengeLogin
		flow := newTestFlow(api, newFakeClock(), WithCodeTimeout(10*time.Minute))

		source := CodeSourceFunc(func(ctx context.Context, _ model.MFAChallenge) (string, error) {
			require.NoError(t, ctx.Err())
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.Greater(t, time.Until(deadline), 9*time.Minute)
			return "123456", nil
		})

		session, err := flow.Authenticate(context.Background(), creds, source)
		require.NoError(t, err)
		assert.Equal(t, "mock-session", session.Token)
	})

	t.Run("code typed after the flow clock passes the deadline", func(t *testing.T) {
		api := portal.NewMockClient()
		api.LoginFn = challengeLogin
		clock := newFakeClock()
		flow := newTestFlow(api, clock, WithCodeTimeout(time.Minute))

		source := CodeSourceFunc(func(context.Context, model.MFAChallenge) (string, error) {
			clock.Advance(2 * time.Minute)
			return "123456", nil
		})

		_, err := flow.Authenticate(context.Background(), creds, source)
		assert.ErrorIs(t, err, common.ErrChallengeExpired)
		assert.Empty(t, api.CompleteCalls)
	})

	t.Run("code source failure", func(t *testing.T) {
		api := portal.NewMockClient()
		api.LoginFn = challengeLogin
		flow := newTestFlow(api, newFakeClock())

		source := CodeSourceFunc(func(context.Context, model.MFAChallenge) (string, error) {
			return "", io.EOF
		})

		_, err := flow.Authenticate(context.Background(), creds, source)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, StateLoggedOut, flow.State())
	})
}

func TestFlow_Logout(t *testing.T) {
	flow := newTestFlow(portal.NewMockClient(), newFakeClock())
	_, err := flow.Login(context.Background(), creds)
	require.NoError(t, err)
	require.Equal(t, StateLoggedIn, flow.State())

	flow.Logout()
	assert.Equal(t, StateLoggedOut, flow.State())
	_, err = flow.Session()
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "logged_out", StateLoggedOut.String())
	assert.Equal(t, "awaiting_mfa", StateAwaitingMFA.String())
	assert.Equal(t, "logged_in", StateLoggedIn.String())
	assert.Equal(t, "awaiting_code", PhaseAwaitingCode.String())
	assert.Equal(t, "unknown", State(42).String())
}
