package tui

import (
	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) checkAccess() tea.Cmd {
	checker := m.deps.Access
	ctx := m.ctx
	return func() tea.Msg {
		return accessCheckedMsg{result: checker.Check(ctx)}
	}
}

func (m Model) login(creds auth.Credentials) tea.Cmd {
	a := m.deps.Auth
	ctx := m.ctx
	return func() tea.Msg {
		outcome, err := a.Login(ctx, creds)
		return loginDoneMsg{outcome: outcome, err: err}
	}
}

func (m Model) initiate() tea.Cmd {
	a := m.deps.Auth
	ctx := m.ctx
	return func() tea.Msg {
		return initiatedMsg{err: a.Initiate(ctx)}
	}
}

func (m Model) completeMFA(code string) tea.Cmd {
	a := m.deps.Auth
	ctx := m.ctx
	return func() tea.Msg {
		_, err := a.CompleteMFA(ctx, code)
		return mfaDoneMsg{err: err}
	}
}

// logout runs off the update loop; the flow's observers send to the program.
func (m Model) logout() tea.Cmd {
	a := m.deps.Auth
	return func() tea.Msg {
		a.Logout()
		return loggedOutMsg{}
	}
}

func (m Model) report(r model.DateRange) tea.Cmd {
	reporter := m.deps.Reporter
	ctx := m.ctx
	return func() tea.Msg {
		result, err := reporter.Report(ctx, r)
		return reportDoneMsg{result: result, err: err}
	}
}
