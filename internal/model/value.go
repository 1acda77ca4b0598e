package model

import (
	"fmt"
	"time"
)

// FieldType is the declared value type of a canonical field.
type FieldType string

const (
	TypeDecimal    FieldType = "decimal"
	TypeInteger    FieldType = "integer"
	TypePercentage FieldType = "percentage"
	TypeDate       FieldType = "date"
	TypeString     FieldType = "string"
)

// Value is a typed extracted value. The zero Value is "absent".
// Percentages are stored as fractions (5% → 0.05) under TypePercentage.
type Value struct {
	Kind FieldType `json:"kind"`
	Dec  float64   `json:"dec,omitempty"`
	Int  int64     `json:"int,omitempty"`
	Date time.Time `json:"date,omitempty"`
	Str  string    `json:"str,omitempty"`
}

// DecimalValue builds a decimal Value.
func DecimalValue(f float64) Value { return Value{Kind: TypeDecimal, Dec: f} }

// IntegerValue builds an integer Value.
func IntegerValue(n int64) Value { return Value{Kind: TypeInteger, Int: n} }

// PercentValue builds a percentage Value from a fraction.
func PercentValue(f float64) Value { return Value{Kind: TypePercentage, Dec: f} }

// DateValue builds a date Value.
func DateValue(t time.Time) Value { return Value{Kind: TypeDate, Date: t} }

// StringValue builds a string Value.
func StringValue(s string) Value { return Value{Kind: TypeString, Str: s} }

// IsZero reports whether the value is absent.
func (v Value) IsZero() bool { return v.Kind == "" }

// Decimal returns the numeric value for decimal, integer and percentage kinds.
func (v Value) Decimal() (float64, bool) {
	switch v.Kind {
	case TypeDecimal, TypePercentage:
		return v.Dec, true
	case TypeInteger:
		return float64(v.Int), true
	default:
		return 0, false
	}
}

// Time returns the date for date-kind values.
func (v Value) Time() (time.Time, bool) {
	if v.Kind != TypeDate {
		return time.Time{}, false
	}
	return v.Date, true
}

// Key returns a stable string form used to group equal values during
// reconciliation and to persist audit rows.
func (v Value) Key() string {
	switch v.Kind {
	case TypeDecimal, TypePercentage:
		return fmt.Sprintf("%.6f", v.Dec)
	case TypeInteger:
		return fmt.Sprintf("%d", v.Int)
	case TypeDate:
		return v.Date.Format("2006-01-02")
	case TypeString:
		return v.Str
	default:
		return ""
	}
}
