package tui

import (
	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme       themes.Theme
	Credentials auth.Credentials
	StartDate   string
	EndDate     string
	Outputs     []string
	Width       int
	Height      int
	AltScreen   bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Width:     80,
		Height:    24,
		AltScreen: true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithCredentials prefills the login form.
func WithCredentials(creds auth.Credentials) Option {
	return func(c *Config) {
		c.Credentials = creds
	}
}

// WithDateRange prefills the report period.
func WithDateRange(start, end string) Option {
	return func(c *Config) {
		c.StartDate = start
		c.EndDate = end
	}
}

// WithOutputs lists where finished reports are written, for the summary.
func WithOutputs(outputs ...string) Option {
	return func(c *Config) {
		c.Outputs = outputs
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
