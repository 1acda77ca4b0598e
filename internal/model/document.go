package model

import "time"

// DocType identifies the kind of PE document being processed.
type DocType string

const (
	DocTypeCapitalAccount     DocType = "capital_account_statement"
	DocTypeQuarterlyReport    DocType = "quarterly_report"
	DocTypeAnnualReport       DocType = "annual_report"
	DocTypeCapitalCallNotice  DocType = "capital_call_notice"
	DocTypeDistributionNotice DocType = "distribution_notice"
	DocTypeSubscription       DocType = "subscription_agreement"
	DocTypeLPA                DocType = "limited_partnership_agreement"
	DocTypePPM                DocType = "private_placement_memorandum"
	DocTypeFinancialStatement DocType = "financial_statement"
	DocTypeOther              DocType = "other"
)

// Table is one extracted table from a document: a header row plus data rows.
// It is produced by the parsing collaborator; cells are raw strings.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ParsedDocument is the parser's output for one input file. The pipeline
// never touches file bytes; it only sees text and tables.
type ParsedDocument struct {
	Text   string  `json:"text"`
	Tables []Table `json:"tables"`
}

// DocumentMeta carries identifying metadata for a document through the pipeline.
// DocType may be empty on entry, in which case the classifier assigns it.
type DocumentMeta struct {
	DocID              string     `json:"doc_id"`
	Filename           string     `json:"filename"`
	Path               string     `json:"path,omitempty"`
	FileHash           string     `json:"file_hash,omitempty"`
	DocType            DocType    `json:"doc_type,omitempty"`
	ClassifyConfidence float64    `json:"classification_confidence,omitempty"`
	FundID             string     `json:"fund_id,omitempty"`
	InvestorID         string     `json:"investor_id,omitempty"`
	AsOfDate           *time.Time `json:"as_of_date,omitempty"`
	ReportingCurrency  string     `json:"reporting_currency,omitempty"`
}
