// Package tui is the interactive terminal front end: login, MFA code entry
// and the report period, driven by the authentication state.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Veraticus/notecheck/internal/access"
	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/engine"
	"github.com/Veraticus/notecheck/internal/model"
	"github.com/Veraticus/notecheck/internal/portal"
	"github.com/Veraticus/notecheck/internal/tui/themes"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Authenticator is the part of auth.Flow the UI drives step by step.
type Authenticator interface {
	Login(ctx context.Context, creds auth.Credentials) (auth.Outcome, error)
	Initiate(ctx context.Context) error
	CompleteMFA(ctx context.Context, code string) (model.Session, error)
	State() auth.State
	OnStateChange(fn func(auth.State))
	Logout()
}

// Reporter produces a report once a session exists.
type Reporter interface {
	Report(ctx context.Context, r model.DateRange) (*engine.Result, error)
}

// AccessChecker decides whether the forms are shown.
type AccessChecker interface {
	Check(ctx context.Context) access.Result
}

// Deps are the services the UI calls.
type Deps struct {
	Auth     Authenticator
	Reporter Reporter
	Access   AccessChecker
}

var (
	_ Authenticator = (*auth.Flow)(nil)
	_ Reporter      = (*engine.Pipeline)(nil)
	_ AccessChecker = (*access.Checker)(nil)
)

// screen is what the UI currently shows.
type screen int

const (
	screenChecking screen = iota
	screenHidden
	screenLogin
	screenMFA
	screenRange
	screenDone
)

// Model holds the TUI state.
type Model struct {
	ctx       context.Context
	deps      Deps
	err       error
	result    *engine.Result
	last      *engine.Result
	theme     themes.Theme
	challenge model.MFAChallenge
	busy      string
	keymap    KeyMap
	config    Config
	help      help.Model
	spinner   spinner.Model
	email     textinput.Model
	password  textinput.Model
	code      textinput.Model
	start     textinput.Model
	end       textinput.Model
	focus     int
	width     int
	height    int
	authState auth.State
	checked   bool
	hidden    bool
	quitting  bool
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, deps Deps, cfg Config) Model {
	m := Model{
		ctx:     ctx,
		deps:    deps,
		config:  cfg,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		width:   cfg.Width,
		height:  cfg.Height,

		email:    newInput("you@example.com", 254),
		password: newInput("password", 256),
		code:     newInput("123456", 12),
		start:    newInput(model.DateLayout, 10),
		end:      newInput(model.DateLayout, 10),
	}

	m.spinner.Style = m.theme.StatusInfo
	m.password.EchoMode = textinput.EchoPassword
	m.password.EchoCharacter = '•'

	m.email.SetValue(cfg.Credentials.Email)
	m.password.SetValue(cfg.Credentials.Password)
	m.start.SetValue(cfg.StartDate)
	m.end.SetValue(cfg.EndDate)

	if deps.Auth != nil {
		m.authState = deps.Auth.State()
	}
	if deps.Access == nil {
		m.checked = true
	}
	m.focusFirst()

	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if !m.checked {
		cmds = append(cmds, m.checkAccess())
	}
	return tea.Batch(cmds...)
}

func (m Model) screen() screen {
	switch {
	case !m.checked:
		return screenChecking
	case m.hidden:
		return screenHidden
	case m.result != nil:
		return screenDone
	}

	switch m.authState {
	case auth.StateAwaitingMFA:
		return screenMFA
	case auth.StateLoggedIn:
		return screenRange
	default:
		return screenLogin
	}
}

// inputs returns the fields of the current form.
func (m *Model) inputs() []*textinput.Model {
	switch m.screen() {
	case screenLogin:
		return []*textinput.Model{&m.email, &m.password}
	case screenMFA:
		return []*textinput.Model{&m.code}
	case screenRange:
		return []*textinput.Model{&m.start, &m.end}
	default:
		return nil
	}
}

func (m *Model) setFocus(i int) {
	for _, in := range []*textinput.Model{&m.email, &m.password, &m.code, &m.start, &m.end} {
		in.Blur()
	}
	inputs := m.inputs()
	if len(inputs) == 0 {
		m.focus = 0
		return
	}
	m.focus = (i + len(inputs)) % len(inputs)
	_ = inputs[m.focus].Focus()
}

// focusFirst focuses the first empty field of the current form.
func (m *Model) focusFirst() {
	for i, in := range m.inputs() {
		if in.Value() == "" {
			m.setFocus(i)
			return
		}
	}
	m.setFocus(0)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case accessCheckedMsg:
		m.checked = true
		m.hidden = msg.result != access.Visible
		m.focusFirst()
		return m, nil

	case stateChangedMsg:
		if msg.state != m.authState {
			m.authState = msg.state
			m.focusFirst()
		}
		return m, nil

	case loginDoneMsg:
		m.busy = ""
		m.refreshState()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.outcome.NeedsMFA() {
			m.challenge = *msg.outcome.Challenge
			m.busy = "Sending a code to " + m.phone()
			return m, m.initiate()
		}
		return m, nil

	case initiatedMsg:
		m.busy = ""
		m.refreshState()
		m.err = msg.err
		return m, nil

	case mfaDoneMsg:
		m.busy = ""
		m.code.Reset()
		m.refreshState()
		m.err = msg.err
		return m, nil

	case loggedOutMsg:
		m.refreshState()
		return m, nil

	case reportDoneMsg:
		m.busy = ""
		m.refreshState()
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.result
			m.last = msg.result
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) refreshState() {
	if m.deps.Auth == nil {
		return
	}
	if s := m.deps.Auth.State(); s != m.authState {
		m.authState = s
	}
	m.focusFirst()
}

func (m Model) phone() string {
	if p := m.challenge.MaskedPhone(); p != "" {
		return p
	}
	return "your phone"
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy != "" {
		return m, nil
	}

	switch m.screen() {
	case screenChecking:
		return m, nil
	case screenHidden:
		if (msg.Type == tea.KeyRunes && strings.EqualFold(string(msg.Runes), "q")) || key.Matches(msg, m.keymap.Back) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case screenDone:
		if key.Matches(msg, m.keymap.Submit) || key.Matches(msg, m.keymap.Back) {
			m.result = nil
			m.err = nil
			m.focusFirst()
		}
		return m, nil
	case screenRange:
		if key.Matches(msg, m.keymap.Back) {
			// Back from the period form signs out so another account can log in.
			m.password.Reset()
			m.err = nil
			return m, m.logout()
		}
	}

	inputs := m.inputs()
	switch {
	case key.Matches(msg, m.keymap.Next):
		m.setFocus(m.focus + 1)
		return m, nil
	case key.Matches(msg, m.keymap.Prev):
		m.setFocus(m.focus - 1)
		return m, nil
	case key.Matches(msg, m.keymap.Submit):
		if m.focus < len(inputs)-1 {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	*inputs[m.focus], cmd = inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.err = nil

	switch m.screen() {
	case screenLogin:
		creds := auth.Credentials{
			Email:          strings.TrimSpace(m.email.Value()),
			Password:       m.password.Value(),
			TimezoneOffset: portal.TimezoneOffset(time.Now()),
		}
		m.busy = "Signing in"
		return m, m.login(creds)

	case screenMFA:
		code := strings.TrimSpace(m.code.Value())
		m.busy = "Verifying code"
		return m, m.completeMFA(code)

	case screenRange:
		r, err := engine.ParseRange(strings.TrimSpace(m.start.Value()), strings.TrimSpace(m.end.Value()))
		if err != nil {
			m.err = err
			return m, nil
		}
		m.busy = "Building report"
		return m, m.report(r)
	}

	return m, nil
}

// Err returns the last error shown to the user.
func (m Model) Err() error {
	return m.err
}

// Result returns the last finished report, if any.
func (m Model) Result() *engine.Result {
	return m.last
}

// errorText renders err for display.
func errorText(err error) string {
	var apiErr *portal.APIError
	if errors.As(err, &apiErr) && len(apiErr.Messages) > 0 {
		return apiErr.Messages.String()
	}
	return err.Error()
}
