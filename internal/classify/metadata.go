package classify

import (
	"regexp"
	"strings"
	"time"

	"github.com/fundsight/pedocs/internal/normalize"
)

// Metadata is document-level context sniffed from text during classification.
// All fields are optional; extraction proper runs later with the full catalog.
type Metadata struct {
	AsOfDate *time.Time
	FundName string
	Currency string
}

var (
	asOfRe     = regexp.MustCompile(`(?i)as\s+of\s+(\w+\s+\d{1,2},?\s+\d{4}|\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{1,2}-\d{1,2})`)
	fundNameRe = regexp.MustCompile(`(?i)(?:fund|partnership|fund\s+name)\s*:\s*([^\n]+)`)
	currencyRe = regexp.MustCompile(`\b(USD|EUR|GBP|CHF|JPY)\b|[$€£]`)
)

var currencySymbols = map[string]string{"$": "USD", "€": "EUR", "£": "GBP"}

// ExtractMetadata sniffs as-of date, fund name and reporting currency from a
// content sample.
func ExtractMetadata(content string) Metadata {
	var md Metadata

	if m := asOfRe.FindStringSubmatch(content); m != nil {
		if t, ok := normalize.Date(m[1]); ok {
			md.AsOfDate = &t
		}
	}
	if m := fundNameRe.FindStringSubmatch(content); m != nil {
		md.FundName = strings.TrimSpace(m[1])
	}
	if m := currencyRe.FindString(content); m != "" {
		if iso, ok := currencySymbols[m]; ok {
			md.Currency = iso
		} else {
			md.Currency = m
		}
	}
	return md
}
