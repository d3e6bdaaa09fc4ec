package model

import (
	"strings"
	"time"
)

// ClientReportRow is one client's line in the compliance report.
type ClientReportRow struct {
	EarliestDate time.Time
	ClientName   string
	CaseType     CaseType
	Statuses     []DocumentStatus // parallel to the catalogue
	Authors      []string         // distinct, first-seen order
}

// AuthorList renders the authors as a comma-and-space joined string.
func (r ClientReportRow) AuthorList() string {
	return strings.Join(r.Authors, ", ")
}

// Status returns the status for the catalogue entry at index i.
func (r ClientReportRow) Status(i int) DocumentStatus {
	if i < 0 || i >= len(r.Statuses) {
		return ""
	}
	return r.Statuses[i]
}

// Matrix is the full per-client status grid.
type Matrix struct {
	Catalogue Catalogue
	Rows      []ClientReportRow
}

// Row looks up a client's row by its full display name.
func (m Matrix) Row(clientName string) (ClientReportRow, bool) {
	for _, row := range m.Rows {
		if row.ClientName == clientName {
			return row, true
		}
	}
	return ClientReportRow{}, false
}

// StatusOf returns a single cell by client and document type name.
func (m Matrix) StatusOf(clientName, docType string) (DocumentStatus, bool) {
	row, ok := m.Row(clientName)
	if !ok {
		return "", false
	}
	i := m.Catalogue.Index(docType)
	if i < 0 {
		return "", false
	}
	return row.Status(i), true
}

// DateRange is the inclusive period a report covers.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DateLayout is the wire and flag format for report dates.
const DateLayout = "2006-01-02"
