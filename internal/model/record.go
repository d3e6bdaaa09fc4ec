// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DocumentRecord is a single clinical document as returned by the report search.
type DocumentRecord struct {
	CreatedDate PortalTime `json:"CreatedDate"`
	ClientName  string     `json:"ClientName"` // e.g. "Jane Doe (MCR)"
	Name        string     `json:"Name"`       // document type
	Author      string     `json:"Author"`
}

// CaseType returns the case type encoded in the record's client name.
func (r DocumentRecord) CaseType() CaseType {
	return ParseCaseType(r.ClientName)
}

// portalTimeLayouts are tried in order. Layouts without a zone are read in local time.
var portalTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// PortalTime decodes the date-time strings the portal emits.
type PortalTime struct {
	time.Time
}

// ParsePortalTime parses a date-time string in any of the formats the portal uses.
func ParsePortalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range portalTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date-time %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *PortalTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("CreatedDate must be a string: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := ParsePortalTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t PortalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}
