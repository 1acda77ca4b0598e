package model

import "time"

// ExtractionMethod identifies which strategy produced a value.
type ExtractionMethod string

const (
	MethodTable      ExtractionMethod = "table"
	MethodRegex      ExtractionMethod = "regex"
	MethodComposite  ExtractionMethod = "composite"
	MethodLLM        ExtractionMethod = "llm"
	MethodPositional ExtractionMethod = "positional"
	MethodManual     ExtractionMethod = "manual"
)

// Alternative records a rejected candidate value during reconciliation.
type Alternative struct {
	Value   string             `json:"value"`
	Count   int                `json:"count"`
	Methods []ExtractionMethod `json:"methods"`
}

// Position marks where in the source text a value was matched.
type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ExtractionResult is one extraction attempt's output for one field.
// Results are immutable once created; reconciliation builds new ones.
type ExtractionResult struct {
	FieldName    string           `json:"field_name"`
	Value        Value            `json:"value"`
	Method       ExtractionMethod `json:"method"`
	Confidence   float64          `json:"confidence"`
	RawText      string           `json:"raw_text,omitempty"`
	Position     *Position        `json:"position,omitempty"`
	Alternatives []Alternative    `json:"alternatives,omitempty"`
}

// AuditEntry is one row of the per-document extraction audit trail.
type AuditEntry struct {
	FieldName     string           `json:"field"`
	Value         string           `json:"value"`
	Method        ExtractionMethod `json:"method"`
	Confidence    float64          `json:"confidence"`
	Alternatives  []Alternative    `json:"alternatives,omitempty"`
	CorrectedFrom string           `json:"corrected_from,omitempty"`
}

// ExtractedDocument aggregates the reconciled field values for one document,
// shaped into the tagged record variant for its type. Exactly one of the
// record pointers is non-nil, matching DocType.
type ExtractedDocument struct {
	DocID             string     `json:"doc_id"`
	DocType           DocType    `json:"doc_type"`
	FundID            string     `json:"fund_id,omitempty"`
	InvestorID        string     `json:"investor_id,omitempty"`
	AsOfDate          *time.Time `json:"as_of_date,omitempty"`
	ReportingCurrency string     `json:"reporting_currency,omitempty"`

	CapitalAccount *CapitalAccountPeriod `json:"capital_account,omitempty"`
	Report         *ReportFacts          `json:"report,omitempty"`
	Notice         *NoticeFacts          `json:"notice,omitempty"`
	Subscription   *SubscriptionFacts    `json:"subscription,omitempty"`
	Agreement      *AgreementTerms       `json:"agreement,omitempty"`

	// Fields holds every reconciled value keyed by canonical field name,
	// regardless of which record variant consumed it.
	Fields map[string]ExtractionResult `json:"fields"`

	Audit             []AuditEntry `json:"extraction_audit"`
	ManualCorrections bool         `json:"manual_corrections,omitempty"`
	ExtractedAt       time.Time    `json:"extracted_at"`
}

// Field returns the reconciled result for a canonical field name.
func (d *ExtractedDocument) Field(name string) (ExtractionResult, bool) {
	r, ok := d.Fields[name]
	return r, ok
}

// Decimal returns the decimal value of a field, or (0, false) when the field
// is absent or not a decimal. Absence is expected, not an error.
func (d *ExtractedDocument) Decimal(name string) (float64, bool) {
	r, ok := d.Fields[name]
	if !ok {
		return 0, false
	}
	return r.Value.Decimal()
}
