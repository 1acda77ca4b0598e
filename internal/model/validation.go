package model

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding with a stable rule code and a
// human-readable discrepancy description.
type Issue struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult is the outcome of running all applicable rules against an
// extracted document. Invariant: IsValid == len(Errors) == 0.
type ValidationResult struct {
	IsValid    bool    `json:"is_valid"`
	Errors     []Issue `json:"errors"`
	Warnings   []Issue `json:"warnings"`
	Confidence float64 `json:"confidence"`
}

// AddError appends an error finding and clears IsValid.
func (r *ValidationResult) AddError(code, message string) {
	r.Errors = append(r.Errors, Issue{Code: code, Message: message, Severity: SeverityError})
	r.IsValid = false
}

// AddWarning appends a warning finding.
func (r *ValidationResult) AddWarning(code, message string) {
	r.Warnings = append(r.Warnings, Issue{Code: code, Message: message, Severity: SeverityWarning})
}
