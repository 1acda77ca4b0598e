// Package normalize converts raw matched text into typed values. Unparsable
// input yields (zero, false) — absence, never a partial value. Callers treat
// absence as "field not found", not as zero.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fundsight/pedocs/internal/model"
)

// Normalize converts raw text to a typed Value according to the field type.
func Normalize(raw string, ft model.FieldType) (model.Value, bool) {
	switch ft {
	case model.TypeDecimal:
		f, ok := Decimal(raw)
		if !ok {
			return model.Value{}, false
		}
		return model.DecimalValue(f), true
	case model.TypePercentage:
		f, ok := Percentage(raw)
		if !ok {
			return model.Value{}, false
		}
		return model.PercentValue(f), true
	case model.TypeInteger:
		f, ok := Decimal(raw)
		if !ok {
			return model.Value{}, false
		}
		return model.IntegerValue(int64(f)), true
	case model.TypeDate:
		t, ok := Date(raw)
		if !ok {
			return model.Value{}, false
		}
		return model.DateValue(t), true
	case model.TypeString:
		s := strings.TrimSpace(raw)
		if s == "" {
			return model.Value{}, false
		}
		return model.StringValue(s), true
	default:
		return model.Value{}, false
	}
}

// Decimal parses a currency-formatted number. It strips currency symbols,
// whitespace and grouping separators, treats parenthesized amounts as
// negative, disambiguates US vs European decimal separators, and divides
// percentage-suffixed values by 100.
func Decimal(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	pct := strings.HasSuffix(s, "%")
	if pct {
		s = strings.TrimSuffix(s, "%")
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	for _, sym := range []string{"$", "€", "£"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	s = resolveSeparators(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	if pct {
		f /= 100
	}
	return f, true
}

// resolveSeparators rewrites a digit string with ',' and '.' separators into
// canonical form with '.' as the decimal point.
//
// Rules: when both separators appear, the rightmost one is the decimal point
// (1.234,56 is European, 1,234.56 is US). A lone ',' within three characters
// of the end is a decimal separator, otherwise thousands grouping. Multiple
// occurrences of the same separator are always grouping.
func resolveSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// European: dots group, final comma is the decimal point.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma <= 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		// 1.234.567 — European grouping with no decimal part.
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

// Percentage parses a percentage into a fraction: "2.5%" → 0.025. Bare
// numbers are still divided by 100, matching how statements quote rates.
func Percentage(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if strings.HasSuffix(s, "%") {
		// Decimal already divides for the % suffix.
		return Decimal(s)
	}
	f, ok := Decimal(s)
	if !ok {
		return 0, false
	}
	return f / 100, true
}

// dateLayouts is tried in order. Slash dates are handled separately so that
// DD/MM can be recovered when the first component exceeds 12.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"02.01.2006",
	"2.1.2006",
}

var quarterRe = regexp.MustCompile(`(?i)^q([1-4])\s+(\d{4})$`)

// quarterEnds maps quarter number to month/day of the quarter-end date.
var quarterEnds = [...][2]int{{3, 31}, {6, 30}, {9, 30}, {12, 31}}

// Date parses a date from the supported formats. A bare "Q<n> YYYY" token
// maps to the quarter-end date.
func Date(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := quarterRe.FindStringSubmatch(s); m != nil {
		q, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		end := quarterEnds[q-1]
		return time.Date(year, time.Month(end[0]), end[1], 0, 0, 0, 0, time.UTC), true
	}

	if t, ok := parseSlashDate(s); ok {
		return t, true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)

// parseSlashDate handles MM/DD/YYYY, falling back to DD/MM/YYYY when the
// first component cannot be a month.
func parseSlashDate(s string) (time.Time, bool) {
	m := slashDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}

	month, day := a, b
	if a > 12 && b <= 12 {
		month, day = b, a
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
