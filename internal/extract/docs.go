package extract

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/fundsight/pedocs/internal/model"
)

// ShapeRecord rebuilds the typed record variant from the document's
// reconciled fields. It is idempotent; the correction path calls it again
// after a field changes.
func ShapeRecord(doc *model.ExtractedDocument) {
	doc.CapitalAccount = nil
	doc.Report = nil
	doc.Notice = nil
	doc.Subscription = nil
	doc.Agreement = nil

	switch doc.DocType {
	case model.DocTypeCapitalAccount:
		doc.CapitalAccount = &model.CapitalAccountPeriod{
			BeginningBalance:    decField(doc, "beginning_balance"),
			EndingBalance:       decField(doc, "ending_balance"),
			Contributions:       decField(doc, "contributions_period"),
			Distributions:       decField(doc, "distributions_period"),
			DistributionsROC:    decField(doc, "distributions_roc_period"),
			DistributionsGain:   decField(doc, "distributions_gain_period"),
			DistributionsIncome: decField(doc, "distributions_income_period"),
			DistributionsTax:    decField(doc, "distributions_tax_period"),
			ManagementFees:      decField(doc, "management_fees_period"),
			PartnershipExpenses: decField(doc, "partnership_expenses_period"),
			RealizedGainLoss:    decField(doc, "realized_gain_loss_period"),
			UnrealizedGainLoss:  decField(doc, "unrealized_gain_loss_period"),
			TotalCommitment:     decField(doc, "total_commitment"),
			DrawnCommitment:     decField(doc, "drawn_commitment"),
			UnfundedCommitment:  decField(doc, "unfunded_commitment"),
			OwnershipPct:        decField(doc, "ownership_pct"),
		}
	case model.DocTypeQuarterlyReport, model.DocTypeAnnualReport:
		doc.Report = &model.ReportFacts{
			NAV:                decField(doc, "nav"),
			IRR:                decField(doc, "irr"),
			MOIC:               decField(doc, "moic"),
			TVPI:               decField(doc, "tvpi"),
			DPI:                decField(doc, "dpi"),
			RVPI:               decField(doc, "rvpi"),
			TotalCommitment:    decField(doc, "total_commitment"),
			UnfundedCommitment: decField(doc, "unfunded_commitment"),
		}
	case model.DocTypeCapitalCallNotice:
		doc.Notice = &model.NoticeFacts{
			Amount:  decField(doc, "call_amount"),
			DueDate: dateField(doc, "due_date"),
		}
	case model.DocTypeDistributionNotice:
		doc.Notice = &model.NoticeFacts{
			Amount:          decField(doc, "distribution_amount"),
			PaymentDate:     dateField(doc, "payment_date"),
			ReturnOfCapital: decField(doc, "return_of_capital"),
			RealizedGains:   decField(doc, "realized_gains"),
			Income:          decField(doc, "income"),
			TaxWithholding:  decField(doc, "tax_withholding"),
		}
	case model.DocTypeSubscription:
		doc.Subscription = &model.SubscriptionFacts{
			CommitmentAmount: decField(doc, "commitment_amount"),
			InvestorName:     strField(doc, "investor_name"),
			FundName:         strField(doc, "fund_name"),
		}
	case model.DocTypeLPA, model.DocTypePPM:
		doc.Agreement = &model.AgreementTerms{
			FundName:           strField(doc, "fund_name"),
			ManagementFeePct:   decField(doc, "management_fee_pct"),
			CarriedInterestPct: decField(doc, "carried_interest_pct"),
			HurdleRatePct:      decField(doc, "hurdle_rate_pct"),
			FundTermYears:      intField(doc, "fund_term_years"),
			MinimumCommitment:  decField(doc, "minimum_commitment"),
		}
	}
}

// typedExtractor is the shared implementation behind every registered
// document type: run the engine, fill the envelope, shape the record.
type typedExtractor struct {
	engine  *Engine
	docType model.DocType
}

func (x *typedExtractor) DocType() model.DocType { return x.docType }

func (x *typedExtractor) Extract(ctx context.Context, doc model.ParsedDocument, meta model.DocumentMeta) (*model.ExtractedDocument, error) {
	fields, audit, err := x.engine.ExtractFields(ctx, doc, x.docType)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: %s fields", x.docType)
	}
	out := &model.ExtractedDocument{
		DocID:             meta.DocID,
		DocType:           x.docType,
		FundID:            meta.FundID,
		InvestorID:        meta.InvestorID,
		AsOfDate:          meta.AsOfDate,
		ReportingCurrency: meta.ReportingCurrency,
		Fields:            fields,
		Audit:             audit,
		ExtractedAt:       time.Now().UTC(),
	}
	// The extracted as_of_date, when present, takes precedence over the one
	// pulled from the document header.
	if d := dateField(out, "as_of_date"); d != nil {
		out.AsOfDate = d
	}
	ShapeRecord(out)
	return out, nil
}

func decField(d *model.ExtractedDocument, name string) *float64 {
	if v, ok := d.Decimal(name); ok {
		return &v
	}
	return nil
}

func dateField(d *model.ExtractedDocument, name string) *time.Time {
	r, ok := d.Field(name)
	if !ok {
		return nil
	}
	if t, ok := r.Value.Time(); ok {
		return &t
	}
	return nil
}

func strField(d *model.ExtractedDocument, name string) string {
	r, ok := d.Field(name)
	if !ok || r.Value.Kind != model.TypeString {
		return ""
	}
	return r.Value.Str
}

func intField(d *model.ExtractedDocument, name string) *int64 {
	r, ok := d.Field(name)
	if !ok || r.Value.Kind != model.TypeInteger {
		return nil
	}
	v := r.Value.Int
	return &v
}
