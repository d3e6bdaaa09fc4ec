package tui

import (
	"strings"

	"github.com/Veraticus/notecheck/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

const appTitle = "Noteable Compliance Report"

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.screen() {
	case screenChecking:
		body = m.spinner.View() + " " + m.theme.StatusPending.Render("Checking access…")
	case screenHidden:
		body = m.theme.StatusWarning.Render("This tool is not available right now.") + "\n" +
			m.theme.Subtitle.Render("Press q to quit.")
	case screenLogin:
		body = m.renderForm("Sign in to Noteable", []string{"Email", "Password"})
	case screenMFA:
		body = m.renderForm("Enter the code sent to "+m.phone(), []string{"Code"})
	case screenRange:
		body = m.renderForm("Report period", []string{"Start date", "End date"})
	case screenDone:
		body = cli.RenderSummary(m.result, m.config.Outputs) + "\n" +
			m.theme.Subtitle.Render("Press enter to run another report.")
	}

	sections := []string{m.theme.Title.Render(appTitle), body}

	if m.busy != "" {
		sections = append(sections, m.spinner.View()+" "+m.theme.StatusPending.Render(m.busy+"…"))
	}
	if m.err != nil {
		sections = append(sections, m.theme.StatusError.Render(cli.ErrorIcon+" "+errorText(m.err)))
	}
	if s := m.screen(); s == screenLogin || s == screenMFA || s == screenRange {
		sections = append(sections, m.help.View(m.keymap))
	}

	return lipgloss.NewStyle().
		MaxWidth(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderForm(heading string, labels []string) string {
	inputs := m.inputs()
	lines := make([]string, 0, len(inputs)+1)
	lines = append(lines, m.theme.Subtitle.Render(heading))

	for i, in := range inputs {
		label := m.theme.Label
		if i == m.focus {
			label = m.theme.FocusedLabel
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label.Render(labels[i]), in.View()))
	}

	return m.theme.RoundedBox.Render(strings.Join(lines, "\n"))
}
