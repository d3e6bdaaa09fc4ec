package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/engine"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive UI and blocks until the user quits. It returns
// the last finished report, if any.
func Run(ctx context.Context, deps Deps, opts ...Option) (*engine.Result, error) {
	if deps.Auth == nil || deps.Reporter == nil {
		return nil, fmt.Errorf("authenticator and reporter are required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	p := tea.NewProgram(newModel(ctx, deps, cfg), programOpts...)

	deps.Auth.OnStateChange(func(s auth.State) {
		p.Send(stateChangedMsg{state: s})
	})

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, nil
	}
	return m.Result(), nil
}
