package sheets

import (
	"testing"

	"github.com/Veraticus/notecheck/internal/common"
	"github.com/stretchr/testify/assert"
)

func oauthTestConfig() Config {
	cfg := DefaultConfig()
	cfg.ClientID = "test-client"
	cfg.ClientSecret = "test-secret"
	cfg.RefreshToken = "test-token"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		wantErr error
		mutate  func(*Config)
		name    string
		errMsg  string
	}{
		{
			name:   "valid oauth config",
			mutate: func(*Config) {},
		},
		{
			name: "valid service account config",
			mutate: func(c *Config) {
				c.ClientID, c.ClientSecret, c.RefreshToken = "", "", ""
				c.ServiceAccountPath = "/path/to/key.json"
			},
		},
		{
			name:    "partial oauth credentials",
			mutate:  func(c *Config) { c.ClientSecret = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "no Google Sheets authentication method configured",
		},
		{
			name:    "multiple auth methods",
			mutate:  func(c *Config) { c.ServiceAccountPath = "/path/to/key.json" },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name: "no spreadsheet id or name",
			mutate: func(c *Config) {
				c.SpreadsheetName = ""
			},
			wantErr: common.ErrMissingConfig,
		},
		{
			name: "id without name is fine",
			mutate: func(c *Config) {
				c.SpreadsheetName = ""
				c.SpreadsheetID = "abc"
			},
		},
		{
			name:    "quote in sheet name",
			mutate:  func(c *Config) { c.SheetName = "Bob's" },
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "invalid batch size",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "batch size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := oauthTestConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}
