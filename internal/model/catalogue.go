package model

import "slices"

// DocumentType is one entry of the document catalogue.
type DocumentType struct {
	Name             string
	NotApplicableFor []CaseType
}

// AppliesTo reports whether the document type is tracked for the case type.
func (d DocumentType) AppliesTo(c CaseType) bool {
	return !slices.Contains(d.NotApplicableFor, c)
}

// DefaultStatus is the status a new client row starts with for this type.
func (d DocumentType) DefaultStatus(c CaseType) DocumentStatus {
	if d.AppliesTo(c) {
		return StatusMissing
	}
	return StatusNotApplicable
}

// Catalogue is the ordered list of document types every report row covers.
type Catalogue []DocumentType

// Document type names used by the default catalogue.
const (
	DocServiceRegistrationForm = "Service Registration Form"
	DocInitialSAR              = "Initial SAR"
	DocComprehensiveNeeds      = "Comprehensive Needs Assessment"
	DocCrisisEducationPlan     = "Crisis Education and Prevention Plan"
	DocFallRiskAssessment      = "Fall Risk Assessment"
	DocSafetyPlan              = "Safety Plan"
	DocHealthHistory           = "Health History"
	DocComprehensiveLegals     = "Comprehensive Legals"
	DocReleaseOfInformation    = "Authorization for Release of Information"
	DocDischargeSummary        = "Discharge Summary"
	DocFreedomOfChoiceForm     = "Freedom of Choice Form"
	DocCareCoordinationForm    = "Care Coordination Form"
	DocMedicationVerification  = "Medication Verification"
	DocISP                     = "ISP"
	DocRiskAssessment          = "Risk Assessment"
	DocTreatmentPlan           = "Treatment Plan"
)

// DefaultCatalogue returns the sixteen document types in report column order.
func DefaultCatalogue() Catalogue {
	mcrOnly := []CaseType{CaseTypeMCR}
	csOnly := []CaseType{CaseTypeCS}

	return Catalogue{
		{Name: DocServiceRegistrationForm, NotApplicableFor: csOnly},
		{Name: DocInitialSAR, NotApplicableFor: mcrOnly},
		{Name: DocComprehensiveNeeds},
		{Name: DocCrisisEducationPlan},
		{Name: DocFallRiskAssessment},
		{Name: DocSafetyPlan},
		{Name: DocHealthHistory},
		{Name: DocComprehensiveLegals},
		{Name: DocReleaseOfInformation},
		{Name: DocDischargeSummary},
		{Name: DocFreedomOfChoiceForm},
		{Name: DocCareCoordinationForm},
		{Name: DocMedicationVerification},
		{Name: DocISP, NotApplicableFor: mcrOnly},
		{Name: DocRiskAssessment, NotApplicableFor: mcrOnly},
		{Name: DocTreatmentPlan, NotApplicableFor: mcrOnly},
	}
}

// Names returns the document type names in order.
func (c Catalogue) Names() []string {
	names := make([]string, len(c))
	for i, d := range c {
		names[i] = d.Name
	}
	return names
}

// Index returns the position of the named type, or -1.
func (c Catalogue) Index(name string) int {
	for i, d := range c {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// Defaults returns the initial statuses for a new row of the given case type.
func (c Catalogue) Defaults(caseType CaseType) []DocumentStatus {
	statuses := make([]DocumentStatus, len(c))
	for i, d := range c {
		statuses[i] = d.DefaultStatus(caseType)
	}
	return statuses
}
