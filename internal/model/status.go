package model

import "strings"

// CaseType classifies a client by the suffix embedded in its display name.
type CaseType string

// Recognized case types.
const (
	CaseTypeMCR CaseType = "MCR"
	CaseTypeCS  CaseType = "CS"
)

// ParseCaseType extracts the text between the last "(" and the last ")" of a
// client name. Names without that shape yield an empty case type.
func ParseCaseType(clientName string) CaseType {
	open := strings.LastIndex(clientName, "(")
	closing := strings.LastIndex(clientName, ")")
	if open < 0 || closing < 0 || closing <= open {
		return ""
	}
	return CaseType(clientName[open+1 : closing])
}

// IsTracked reports whether records of this case type belong in the report.
func (c CaseType) IsTracked() bool {
	return c == CaseTypeMCR || c == CaseTypeCS
}

// DocumentStatus is the value of one (client, document type) cell.
type DocumentStatus string

// Document statuses.
const (
	StatusPresent       DocumentStatus = "IN"
	StatusMissing       DocumentStatus = "NO"
	StatusNotApplicable DocumentStatus = "N/A"
)

// AllStatuses returns every valid status value.
func AllStatuses() []DocumentStatus {
	return []DocumentStatus{StatusPresent, StatusMissing, StatusNotApplicable}
}

// String returns the cell text for the status.
func (s DocumentStatus) String() string {
	return string(s)
}

// Promote returns the status after a matching document has been seen.
// Only NO moves to IN; IN and N/A are unchanged.
func (s DocumentStatus) Promote() DocumentStatus {
	if s == StatusMissing {
		return StatusPresent
	}
	return s
}
