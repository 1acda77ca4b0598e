package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fundsight/pedocs/internal/model"
	"github.com/fundsight/pedocs/internal/store"
)

// persist writes the document record and audit trail always, and the derived
// facts (NAV observations, cashflows, capital account rows) only when the
// decision allows it.
func (p *Processor) persist(ctx context.Context, meta model.DocumentMeta, doc *model.ExtractedDocument, val *model.ValidationResult, d decision) error {
	status := store.DocStatusFlagged
	if d.storeFacts {
		status = store.DocStatusStored
	}
	rec := &store.DocumentRecord{
		Meta:              meta,
		Extraction:        doc,
		Validation:        val,
		OverallConfidence: d.overall,
		RequiresReview:    d.requiresReview,
		Status:            status,
	}
	if err := p.store.SaveDocument(ctx, rec); err != nil {
		return eris.Wrap(err, "pipeline: save document")
	}

	if !d.storeFacts {
		return nil
	}
	return p.persistFacts(ctx, meta, doc)
}

// persistFacts stores the typed facts a document carries. Facts need a fund
// identity; documents without one keep their record but contribute nothing to
// the fact tables.
func (p *Processor) persistFacts(ctx context.Context, meta model.DocumentMeta, doc *model.ExtractedDocument) error {
	if meta.FundID == "" {
		zap.L().Debug("pipeline: no fund id, skipping fact storage",
			zap.String("doc_id", meta.DocID))
		return nil
	}

	switch doc.DocType {
	case model.DocTypeCapitalAccount:
		return p.persistCapitalAccount(ctx, meta, doc)
	case model.DocTypeQuarterlyReport, model.DocTypeAnnualReport:
		return p.persistReport(ctx, meta, doc)
	case model.DocTypeCapitalCallNotice, model.DocTypeDistributionNotice:
		return p.persistNotice(ctx, meta, doc)
	}
	return nil
}

func (p *Processor) persistCapitalAccount(ctx context.Context, meta model.DocumentMeta, doc *model.ExtractedDocument) error {
	ca := doc.CapitalAccount
	if ca == nil || doc.AsOfDate == nil {
		return nil
	}
	asOf := *doc.AsOfDate

	if err := p.store.UpsertCapitalAccount(ctx, meta.FundID, meta.InvestorID, asOf, meta.DocID, ca); err != nil {
		return err
	}

	if ca.EndingBalance != nil {
		scope := model.ScopeFund
		if meta.InvestorID != "" {
			scope = model.ScopeInvestor
		}
		obs := model.NAVObservation{
			FundID:     meta.FundID,
			InvestorID: meta.InvestorID,
			Scope:      scope,
			NAV:        *ca.EndingBalance,
			AsOfDate:   asOf,
			DocID:      meta.DocID,
		}
		if err := p.store.UpsertNAVObservation(ctx, obs); err != nil {
			return err
		}
	}

	var flows []model.Cashflow
	add := func(ft model.FlowType, amount *float64) {
		if amount == nil || *amount == 0 || meta.InvestorID == "" {
			return
		}
		flows = append(flows, model.Cashflow{
			FundID:     meta.FundID,
			InvestorID: meta.InvestorID,
			FlowType:   ft,
			Amount:     *amount,
			FlowDate:   asOf,
			DocID:      meta.DocID,
		})
	}
	add(model.FlowCall, ca.Contributions)
	add(model.FlowDist, ca.Distributions)
	add(model.FlowFee, ca.ManagementFees)

	return p.store.InsertCashflows(ctx, flows)
}

func (p *Processor) persistReport(ctx context.Context, meta model.DocumentMeta, doc *model.ExtractedDocument) error {
	r := doc.Report
	if r == nil || r.NAV == nil || doc.AsOfDate == nil {
		return nil
	}
	return p.store.UpsertNAVObservation(ctx, model.NAVObservation{
		FundID:   meta.FundID,
		Scope:    model.ScopeFund,
		NAV:      *r.NAV,
		AsOfDate: *doc.AsOfDate,
		DocID:    meta.DocID,
	})
}

func (p *Processor) persistNotice(ctx context.Context, meta model.DocumentMeta, doc *model.ExtractedDocument) error {
	n := doc.Notice
	if n == nil || n.Amount == nil || meta.InvestorID == "" {
		return nil
	}

	flow := model.Cashflow{
		FundID:     meta.FundID,
		InvestorID: meta.InvestorID,
		Amount:     *n.Amount,
		DocID:      meta.DocID,
	}
	switch doc.DocType {
	case model.DocTypeCapitalCallNotice:
		flow.FlowType = model.FlowCall
		if n.DueDate == nil {
			return nil
		}
		flow.FlowDate = *n.DueDate
	case model.DocTypeDistributionNotice:
		flow.FlowType = model.FlowDist
		if n.PaymentDate == nil {
			return nil
		}
		flow.FlowDate = *n.PaymentDate
	}
	return p.store.InsertCashflows(ctx, []model.Cashflow{flow})
}
