package validate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/model"
)

func testLib(t *testing.T) *fieldlib.Library {
	t.Helper()
	lib, err := fieldlib.Default()
	require.NoError(t, err)
	return lib
}

func ptr(f float64) *float64 { return &f }

// newDoc builds an extracted document with one resolved field per name so the
// required-field rule passes for the given type.
func newDoc(dt model.DocType, fieldNames ...string) *model.ExtractedDocument {
	doc := &model.ExtractedDocument{
		DocID:   "doc-1",
		DocType: dt,
		Fields:  map[string]model.ExtractionResult{},
	}
	for _, name := range fieldNames {
		doc.Fields[name] = model.ExtractionResult{
			FieldName:  name,
			Value:      model.DecimalValue(1),
			Method:     model.MethodRegex,
			Confidence: 0.8,
		}
	}
	return doc
}

func casDoc() *model.ExtractedDocument {
	doc := newDoc(model.DocTypeCapitalAccount, "beginning_balance", "ending_balance", "as_of_date")
	doc.CapitalAccount = &model.CapitalAccountPeriod{
		BeginningBalance: ptr(100000),
		Contributions:    ptr(50000),
		Distributions:    ptr(20000),
		ManagementFees:   ptr(5000),
		RealizedGainLoss: ptr(5000),
		EndingBalance:    ptr(130000),
	}
	return doc
}

func TestValidate_BalanceEquationPasses(t *testing.T) {
	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), casDoc())
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	// No findings and all required present: full confidence.
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
}

func TestValidate_BalanceEquationFails(t *testing.T) {
	doc := casDoc()
	doc.CapitalAccount.EndingBalance = ptr(150000)

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "balance_equation", res.Errors[0].Code)
	// One error penalty, all required present bonus: 1 - 0.15 + 0.1 = 0.95.
	assert.InDelta(t, 0.95, res.Confidence, 1e-9)
}

func TestValidate_BalanceEquationWithinTolerance(t *testing.T) {
	doc := casDoc()
	// 0.4% off, inside the 0.5% relative tolerance.
	doc.CapitalAccount.EndingBalance = ptr(130000 * 1.004)

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.True(t, res.IsValid)
}

func TestValidate_BalanceEquationSkippedWithoutFlowLines(t *testing.T) {
	doc := newDoc(model.DocTypeCapitalAccount, "beginning_balance", "ending_balance", "as_of_date")
	// Only the balances were extracted: the roll-forward cannot be checked,
	// and a 20% gain must not be mistaken for unreported flows.
	doc.CapitalAccount = &model.CapitalAccountPeriod{
		BeginningBalance: ptr(1000000),
		EndingBalance:    ptr(1200000),
	}

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
}

func TestValidate_RequiredFieldMissing(t *testing.T) {
	doc := newDoc(model.DocTypeCapitalAccount, "beginning_balance", "as_of_date")

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.False(t, res.IsValid)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "required_field_missing", res.Errors[0].Code)
	// One error, no bonus: 1 - 0.15 = 0.85.
	assert.InDelta(t, 0.85, res.Confidence, 1e-9)
}

func TestValidate_CommitmentArithmetic(t *testing.T) {
	doc := casDoc()
	doc.Fields["total_commitment"] = model.ExtractionResult{Value: model.DecimalValue(5000000)}
	doc.Fields["drawn_commitment"] = model.ExtractionResult{Value: model.DecimalValue(3000000)}
	doc.Fields["unfunded_commitment"] = model.ExtractionResult{Value: model.DecimalValue(1500000)}

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "commitment_arithmetic", res.Errors[0].Code)
	// One error penalty, all required present bonus: 1 - 0.15 + 0.1 = 0.95.
	assert.InDelta(t, 0.95, res.Confidence, 1e-9)
}

func TestValidate_UnfundedExceedsTotal(t *testing.T) {
	doc := casDoc()
	doc.Fields["total_commitment"] = model.ExtractionResult{Value: model.DecimalValue(5000000)}
	doc.Fields["drawn_commitment"] = model.ExtractionResult{Value: model.DecimalValue(3000000)}
	doc.Fields["unfunded_commitment"] = model.ExtractionResult{Value: model.DecimalValue(6000000)}

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.False(t, res.IsValid)

	var codes []string
	for _, e := range res.Errors {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, "unfunded_exceeds_total")
	// The same figures also fail unfunded = total - drawn.
	assert.Contains(t, codes, "commitment_arithmetic")
}

func TestValidate_UnfundedExceedsTotalWithoutDrawn(t *testing.T) {
	doc := casDoc()
	doc.Fields["total_commitment"] = model.ExtractionResult{Value: model.DecimalValue(5000000)}
	doc.Fields["unfunded_commitment"] = model.ExtractionResult{Value: model.DecimalValue(6000000)}

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "unfunded_exceeds_total", res.Errors[0].Code)
}

func TestValidate_CommitmentArithmeticWithinTolerance(t *testing.T) {
	doc := casDoc()
	doc.Fields["total_commitment"] = model.ExtractionResult{Value: model.DecimalValue(5000000)}
	doc.Fields["drawn_commitment"] = model.ExtractionResult{Value: model.DecimalValue(3000000)}
	// 40k off on a 5M commitment: inside the 1% band.
	doc.Fields["unfunded_commitment"] = model.ExtractionResult{Value: model.DecimalValue(2040000)}

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.Empty(t, res.Warnings)
}

func TestValidate_OwnershipPctRange(t *testing.T) {
	doc := casDoc()
	doc.Fields["ownership_pct"] = model.ExtractionResult{Value: model.PercentValue(1.5)}

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "ownership_pct_range", res.Warnings[0].Code)
}

func TestValidate_FeePlausibility(t *testing.T) {
	doc := casDoc()
	doc.CapitalAccount.ManagementFees = ptr(20000)
	// Keep the roll-forward consistent with the raised fees.
	doc.CapitalAccount.EndingBalance = ptr(115000)

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	var codes []string
	for _, w := range res.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, "fee_plausibility")
}

func reportDoc() *model.ExtractedDocument {
	doc := newDoc(model.DocTypeQuarterlyReport, "nav", "as_of_date")
	doc.Report = &model.ReportFacts{NAV: ptr(50000000)}
	return doc
}

func TestValidate_MultipleIdentity(t *testing.T) {
	doc := reportDoc()
	doc.Report.TVPI = ptr(1.8)
	doc.Report.DPI = ptr(0.6)
	doc.Report.RVPI = ptr(1.0)

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "multiple_identity", res.Errors[0].Code)
}

func TestValidate_MultipleIdentityHolds(t *testing.T) {
	doc := reportDoc()
	doc.Report.TVPI = ptr(1.6)
	doc.Report.DPI = ptr(0.6)
	doc.Report.RVPI = ptr(1.0)

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.True(t, res.IsValid)
}

func TestValidate_MetricRanges(t *testing.T) {
	doc := reportDoc()
	doc.Report.NAV = ptr(-100.0)
	doc.Report.IRR = ptr(3.5)
	doc.Report.MOIC = ptr(25.0)

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.False(t, res.IsValid)

	var errCodes, warnCodes []string
	for _, e := range res.Errors {
		errCodes = append(errCodes, e.Code)
	}
	for _, w := range res.Warnings {
		warnCodes = append(warnCodes, w.Code)
	}
	assert.Contains(t, errCodes, "nav_negative")
	assert.Contains(t, warnCodes, "irr_range")
	assert.Contains(t, warnCodes, "moic_range")
}

func TestValidate_CallNotice(t *testing.T) {
	doc := newDoc(model.DocTypeCapitalCallNotice, "call_amount", "due_date")
	asOf := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	doc.AsOfDate = &asOf
	doc.Notice = &model.NoticeFacts{Amount: ptr(250000), DueDate: &due}

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "due_date_past", res.Warnings[0].Code)
}

func TestValidate_NoticeAmountNotPositive(t *testing.T) {
	doc := newDoc(model.DocTypeDistributionNotice, "distribution_amount", "payment_date")
	doc.Notice = &model.NoticeFacts{Amount: ptr(0)}

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.False(t, res.IsValid)
	assert.Equal(t, "notice_amount", res.Errors[0].Code)
}

func TestValidate_DistributionBreakdown(t *testing.T) {
	doc := newDoc(model.DocTypeDistributionNotice, "distribution_amount", "payment_date")
	doc.Notice = &model.NoticeFacts{
		Amount:          ptr(100000),
		ReturnOfCapital: ptr(60000),
		RealizedGains:   ptr(30000),
		// 10k income missing from the breakdown.
	}

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "distribution_breakdown", res.Warnings[0].Code)
}

func TestValidate_AgreementTerms(t *testing.T) {
	doc := newDoc(model.DocTypeLPA)
	term := int64(150)
	doc.Agreement = &model.AgreementTerms{
		ManagementFeePct:   ptr(0.12),
		CarriedInterestPct: ptr(0.30),
		FundTermYears:      &term,
	}

	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.True(t, res.IsValid, "term findings are warnings")
	assert.Len(t, res.Warnings, 3)
}

func TestValidate_ConfidenceClampedAtZero(t *testing.T) {
	doc := newDoc(model.DocTypeCapitalAccount) // every required field missing
	v := New(testLib(t), nil)
	res := v.Validate(context.Background(), doc)
	assert.GreaterOrEqual(t, res.Confidence, 0.0)
	assert.False(t, res.IsValid)
}
