// Package excel renders the compliance matrix as an .xlsx workbook.
package excel

import (
	"fmt"
	"strings"

	"github.com/Veraticus/notecheck/internal/common"
)

// Config holds the configuration for the workbook writer.
type Config struct {
	Path              string
	SheetName         string
	ClientColumnWidth float64
	StatusColumnWidth float64
	AuthorColumnWidth float64
	FreezeHeader      bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Path:              "report.xlsx",
		SheetName:         "Reports",
		ClientColumnWidth: 32,
		StatusColumnWidth: 14,
		AuthorColumnWidth: 40,
		FreezeHeader:      true,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("%w: output path is required", common.ErrMissingConfig)
	}
	if !strings.EqualFold(pathExt(c.Path), ".xlsx") {
		return fmt.Errorf("%w: output path %q must end in .xlsx", common.ErrInvalidConfig, c.Path)
	}
	if c.SheetName == "" || len(c.SheetName) > 31 || strings.ContainsAny(c.SheetName, `:\/?*[]`) {
		return fmt.Errorf("%w: sheet name %q is not valid", common.ErrInvalidConfig, c.SheetName)
	}
	if c.ClientColumnWidth < 0 || c.StatusColumnWidth < 0 || c.AuthorColumnWidth < 0 {
		return fmt.Errorf("%w: column widths cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

func pathExt(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 || strings.ContainsAny(path[i:], `/\`) {
		return ""
	}
	return path[i:]
}
