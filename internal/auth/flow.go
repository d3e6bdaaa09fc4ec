// Package auth drives the portal login and MFA challenge exchange.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/notecheck/internal/common"
	"github.com/Veraticus/notecheck/internal/model"
	"github.com/Veraticus/notecheck/internal/portal"
)

// Defaults for the MFA exchange.
const (
	DefaultMinimumDwell = time.Second
	DefaultCodeTimeout  = 10 * time.Minute
)

// Credentials are what the user supplies to log in.
type Credentials struct {
	Email          string
	Password       string
	TimezoneOffset int
}

// Outcome is the result of a login attempt: either a session or a challenge.
type Outcome struct {
	Session   *model.Session
	Challenge *model.MFAChallenge
}

// NeedsMFA reports whether the login stopped at an MFA challenge.
func (o Outcome) NeedsMFA() bool {
	return o.Challenge != nil
}

// CodeSource supplies the MFA code the user received.
type CodeSource interface {
	MFACode(ctx context.Context, challenge model.MFAChallenge) (string, error)
}

// CodeSourceFunc adapts a function to CodeSource.
type CodeSourceFunc func(ctx context.Context, challenge model.MFAChallenge) (string, error)

// MFACode implements CodeSource.
func (f CodeSourceFunc) MFACode(ctx context.Context, challenge model.MFAChallenge) (string, error) {
	return f(ctx, challenge)
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMinimumDwell sets how long after the challenge is issued the MFA
// initiation may be sent.
func WithMinimumDwell(d time.Duration) Option {
	return func(f *Flow) {
		f.dwell = d
	}
}

// WithCodeTimeout bounds how long a challenge waits for its code. Zero waits forever.
func WithCodeTimeout(d time.Duration) Option {
	return func(f *Flow) {
		f.codeTimeout = d
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

// WithSleeper replaces how the flow waits out the dwell.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Flow) {
		f.sleep = sleep
	}
}

// Flow owns the session and challenge state for one run.
type Flow struct {
	api           portal.Authenticator
	logger        *slog.Logger
	now           func() time.Time
	sleep         func(ctx context.Context, d time.Duration) error
	challenge     *model.MFAChallenge
	session       *model.Session
	awaitingSince time.Time
	observers     []func(State)
	dwell         time.Duration
	codeTimeout   time.Duration
	state         State
	phase         Phase
	mu            sync.Mutex
}

// NewFlow creates a logged-out flow against the given portal.
func NewFlow(api portal.Authenticator, opts ...Option) *Flow {
	f := &Flow{
		api:         api,
		logger:      slog.Default(),
		now:         time.Now,
		sleep:       sleepContext,
		dwell:       DefaultMinimumDwell,
		codeTimeout: DefaultCodeTimeout,
		state:       StateLoggedOut,
		phase:       PhaseNone,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OnStateChange registers an observer called after every state transition.
func (f *Flow) OnStateChange(fn func(State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, fn)
}

// State returns the current login state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Phase returns the current MFA phase.
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Challenge returns the pending challenge, if any.
func (f *Flow) Challenge() (model.MFAChallenge, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.challenge == nil {
		return model.MFAChallenge{}, false
	}
	return *f.challenge, true
}

// Session returns the authenticated session.
func (f *Flow) Session() (model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateLoggedIn || f.session == nil {
		return model.Session{}, common.ErrNotAuthenticated
	}
	return *f.session, nil
}

// CodeDeadline returns when the pending challenge stops accepting codes.
// The second value is false when there is no deadline.
func (f *Flow) CodeDeadline() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseAwaitingCode || f.codeTimeout <= 0 {
		return time.Time{}, false
	}
	return f.awaitingSince.Add(f.codeTimeout), true
}

// Login posts credentials. A challenge moves the flow to AwaitingMFA and is
// returned in the outcome; it is not an error.
func (f *Flow) Login(ctx context.Context, creds Credentials) (Outcome, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return Outcome{}, common.ErrMissingCredentials
	}

	f.reset()

	resp, err := f.api.Login(ctx, portal.LoginRequest{
		Email:          creds.Email,
		Password:       creds.Password,
		TimezoneOffset: creds.TimezoneOffset,
	})
	if err != nil {
		common.LogError(f.logger, err, "Login error", common.Fields{"email": creds.Email})
		return Outcome{}, err
	}

	if resp.HasChallenge() {
		challenge := model.MFAChallenge{
			Token:    resp.MfaChallengeToken,
			Phone:    resp.MfaChallengePhone,
			IssuedAt: f.now(),
		}

		f.transition(StateAwaitingMFA, func() {
			f.challenge = &challenge
			f.phase = PhaseChallengeIssued
		})

		f.logger.Info("MFA challenge issued", "phone", challenge.MaskedPhone())
		return Outcome{Challenge: &challenge}, nil
	}

	if resp.SessionToken == "" {
		err := fmt.Errorf("%w: login response had neither a session token nor an MFA challenge", common.ErrPortalRejected)
		common.LogError(f.logger, err, "Login error", common.Fields{"email": creds.Email})
		return Outcome{}, err
	}

	session := f.establish(resp.SessionToken)
	return Outcome{Session: &session}, nil
}

// Initiate asks the portal to send the challenge code. It first waits until
// the minimum dwell since the challenge was issued has passed.
func (f *Flow) Initiate(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseChallengeIssued || f.challenge == nil {
		f.mu.Unlock()
		return common.ErrNoChallenge
	}
	challenge := *f.challenge
	f.mu.Unlock()

	if wait := f.dwell - f.now().Sub(challenge.IssuedAt); wait > 0 {
		if err := f.sleep(ctx, wait); err != nil {
			f.reset()
			return err
		}
	}

	f.logger.Debug("Initiating MFA", "phone", challenge.MaskedPhone())

	if err := f.api.InitiateMFA(ctx, challenge.Token, challenge.Phone); err != nil {
		common.LogError(f.logger, err, "MFA initiation error", nil)
		f.reset()
		return err
	}

	f.mu.Lock()
	f.phase = PhaseAwaitingCode
	f.awaitingSince = f.now()
	f.mu.Unlock()

	return nil
}

// CompleteMFA submits the code for the pending challenge. The challenge is
// consumed whether or not the portal accepts the code.
func (f *Flow) CompleteMFA(ctx context.Context, code string) (model.Session, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Session{}, common.ErrEmptyCode
	}

	f.mu.Lock()
	if f.phase != PhaseAwaitingCode || f.challenge == nil {
		f.mu.Unlock()
		return model.Session{}, common.ErrNoChallenge
	}
	challenge := *f.challenge
	expired := f.codeTimeout > 0 && f.now().Sub(f.awaitingSince) > f.codeTimeout
	f.mu.Unlock()

	if expired {
		f.reset()
		return model.Session{}, common.ErrChallengeExpired
	}

	resp, err := f.api.CompleteMFA(ctx, challenge.Token, code)
	if err != nil {
		common.LogError(f.logger, err, "MFA completion error", nil)
		f.reset()
		return model.Session{}, err
	}
	if resp.SessionToken == "" {
		err := fmt.Errorf("%w: MFA completion returned no session token", common.ErrPortalRejected)
		common.LogError(f.logger, err, "MFA completion error", nil)
		f.reset()
		return model.Session{}, err
	}

	return f.establish(resp.SessionToken), nil
}

// Authenticate runs the whole exchange, asking source for the code when the
// portal issues a challenge.
func (f *Flow) Authenticate(ctx context.Context, creds Credentials, source CodeSource) (model.Session, error) {
	outcome, err := f.Login(ctx, creds)
	if err != nil {
		return model.Session{}, err
	}
	if !outcome.NeedsMFA() {
		return *outcome.Session, nil
	}

	if err := f.Initiate(ctx); err != nil {
		return model.Session{}, err
	}

	// The deadline is on the flow's clock; the context only needs what is left of it.
	codeCtx := ctx
	if deadline, ok := f.CodeDeadline(); ok {
		var cancel context.CancelFunc
		codeCtx, cancel = context.WithTimeout(ctx, deadline.Sub(f.now()))
		defer cancel()
	}

	code, err := source.MFACode(codeCtx, *outcome.Challenge)
	if err != nil {
		f.reset()
		if ctx.Err() == nil && errors.Is(codeCtx.Err(), context.DeadlineExceeded) {
			return model.Session{}, common.ErrChallengeExpired
		}
		return model.Session{}, fmt.Errorf("failed to read MFA code: %w", err)
	}

	return f.CompleteMFA(ctx, code)
}

// Logout drops the session and any pending challenge.
func (f *Flow) Logout() {
	f.reset()
}

func (f *Flow) establish(token string) model.Session {
	session := model.Session{Token: token, IssuedAt: f.now()}

	f.transition(StateLoggedIn, func() {
		f.session = &session
		f.challenge = nil
		if f.phase != PhaseNone {
			f.phase = PhaseCompleted
		}
	})

	f.logger.Info("Successful login")
	return session
}

func (f *Flow) reset() {
	f.transition(StateLoggedOut, func() {
		f.session = nil
		f.challenge = nil
		f.phase = PhaseNone
		f.awaitingSince = time.Time{}
	})
}

// transition applies mutate under the lock, then notifies observers if the
// state changed.
func (f *Flow) transition(next State, mutate func()) {
	f.mu.Lock()
	prev := f.state
	mutate()
	f.state = next
	observers := append([]func(State){}, f.observers...)
	f.mu.Unlock()

	if prev == next {
		return
	}

	f.logger.Debug("Auth state changed", "from", prev, "to", next)
	for _, fn := range observers {
		fn(next)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
