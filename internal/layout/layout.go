// Package layout describes the report's columns and colors, shared by every
// spreadsheet sink.
package layout

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/notecheck/internal/model"
)

// Fixed column titles around the catalogue columns.
const (
	ClientNameHeader = "Client Name"
	StartDateHeader  = "Start Date"
	AuthorsHeader    = "Authors"
)

// Colors as RRGGBB hex.
const (
	HeaderFill           = "004561" // dark teal
	HeaderFont           = "FFFFFF"
	ClientNameHeaderFill = "FF6F31" // orange
	PresentFill          = "B7E1CD" // light green
	MissingFill          = "F4C7C3" // light red
	NotApplicableFill    = "808080" // gray
)

// Column indexes (zero-based) of the fixed columns.
const (
	ClientNameColumn  = 0
	StartDateColumn   = 1
	FirstStatusColumn = 2
)

// Headers returns the header row for the catalogue.
func Headers(catalogue model.Catalogue) []string {
	headers := make([]string, 0, len(catalogue)+3)
	headers = append(headers, ClientNameHeader, StartDateHeader)
	headers = append(headers, catalogue.Names()...)
	headers = append(headers, AuthorsHeader)
	return headers
}

// AuthorsColumn returns the zero-based index of the Authors column.
func AuthorsColumn(catalogue model.Catalogue) int {
	return FirstStatusColumn + len(catalogue)
}

// StatusFill returns the fill color for a status cell, or "" for none.
func StatusFill(status model.DocumentStatus) string {
	switch status {
	case model.StatusPresent:
		return PresentFill
	case model.StatusMissing:
		return MissingFill
	case model.StatusNotApplicable:
		return NotApplicableFill
	default:
		return ""
	}
}

// RGB splits an RRGGBB hex color into 0-1 components.
func RGB(hex string) (r, g, b float64, err error) {
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("color %q is not RRGGBB", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("color %q is not hex: %w", hex, err)
	}
	return float64(v>>16&0xFF) / 255, float64(v>>8&0xFF) / 255, float64(v&0xFF) / 255, nil
}
