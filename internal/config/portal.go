package config

import (
	"github.com/Veraticus/notecheck/internal/access"
	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/engine"
	"github.com/Veraticus/notecheck/internal/excel"
	"github.com/Veraticus/notecheck/internal/portal"
	"github.com/spf13/viper"
)

// LoadPortalConfig reads the portal.* keys over the client defaults.
func LoadPortalConfig() (portal.Config, error) {
	config := portal.DefaultConfig()

	if v := viper.GetString("portal.base_url"); v != "" {
		config.BaseURL = v
	}
	if v := viper.GetString("portal.session_header"); v != "" {
		config.SessionHeader = v
	}
	if v := viper.GetString("portal.user_agent"); v != "" {
		config.UserAgent = v
	}
	if viper.IsSet("portal.timeout") {
		config.Timeout = viper.GetDuration("portal.timeout")
	}

	if err := config.Validate(); err != nil {
		return portal.Config{}, err
	}
	return config, nil
}

// LoadAccessConfig reads the access.* keys over the gate defaults.
func LoadAccessConfig() (access.Config, error) {
	config := access.DefaultConfig()

	if viper.IsSet("access.enabled") {
		config.Enabled = viper.GetBool("access.enabled")
	}
	if v := viper.GetString("access.url"); v != "" {
		config.URL = v
	}
	if v := viper.GetString("access.app_id"); v != "" {
		config.AppID = v
	}
	if viper.IsSet("access.timeout") {
		config.Timeout = viper.GetDuration("access.timeout")
	}

	if err := config.Validate(); err != nil {
		return access.Config{}, err
	}
	return config, nil
}

// LoadAuthOptions turns the auth.* keys into flow options. Unset keys keep
// the flow defaults.
func LoadAuthOptions() []auth.Option {
	var opts []auth.Option
	if viper.IsSet("auth.minimum_dwell") {
		opts = append(opts, auth.WithMinimumDwell(viper.GetDuration("auth.minimum_dwell")))
	}
	if viper.IsSet("auth.code_timeout") {
		opts = append(opts, auth.WithCodeTimeout(viper.GetDuration("auth.code_timeout")))
	}
	return opts
}

// LoadExcelConfig reads the excel.* keys. A non-empty path overrides the
// configured output path.
func LoadExcelConfig(path string) (excel.Config, error) {
	config := excel.DefaultConfig()

	if v := viper.GetString("excel.path"); v != "" {
		config.Path = ExpandPath(v)
	}
	if path != "" {
		config.Path = ExpandPath(path)
	}
	if v := viper.GetString("excel.sheet_name"); v != "" {
		config.SheetName = v
	}
	if viper.IsSet("excel.client_column_width") {
		config.ClientColumnWidth = viper.GetFloat64("excel.client_column_width")
	}
	if viper.IsSet("excel.status_column_width") {
		config.StatusColumnWidth = viper.GetFloat64("excel.status_column_width")
	}
	if viper.IsSet("excel.author_column_width") {
		config.AuthorColumnWidth = viper.GetFloat64("excel.author_column_width")
	}
	if viper.IsSet("excel.freeze_header") {
		config.FreezeHeader = viper.GetBool("excel.freeze_header")
	}

	if err := config.Validate(); err != nil {
		return excel.Config{}, err
	}
	return config, nil
}

// LoadEngineConfig reads the report.* keys.
func LoadEngineConfig() engine.Config {
	config := engine.DefaultConfig()
	config.FailOnEmpty = viper.GetBool("report.fail_on_empty")
	return config
}
