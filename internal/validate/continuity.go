package validate

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/fundsight/pedocs/internal/model"
)

// checkNAVContinuity compares the document's NAV with the latest stored
// observation: a jump past +500% or a drop past -90% is an error, and a gap
// of more than one quarter between observations is a warning. No history, no
// finding.
func (v *Validator) checkNAVContinuity(ctx context.Context, doc *model.ExtractedDocument, nav *float64, res *model.ValidationResult) {
	if v.history == nil || nav == nil || doc.AsOfDate == nil || doc.FundID == "" {
		return
	}

	prior, err := v.history.LatestNAVBefore(ctx, doc.FundID, doc.InvestorID, *doc.AsOfDate)
	if err != nil {
		zap.L().Warn("validate: nav history lookup failed",
			zap.String("doc_id", doc.DocID), zap.Error(err))
		res.AddWarning("nav_history_unavailable", "prior NAV could not be retrieved")
		return
	}
	if prior == nil || prior.NAV <= 0 {
		return
	}

	ratio := *nav / prior.NAV
	if ratio > navJumpUpper || ratio < navJumpLower {
		res.AddError("nav_continuity",
			fmt.Sprintf("NAV %.2f vs prior %.2f on %s is a %+.0f%% move",
				*nav, prior.NAV, prior.AsOfDate.Format("2006-01-02"), (ratio-1)*100))
	}

	// More than ~one quarter between observations suggests a missing
	// statement in between.
	if doc.AsOfDate.Sub(prior.AsOfDate).Hours() > 24*100 {
		res.AddWarning("period_gap",
			fmt.Sprintf("prior observation %s is more than one quarter before %s",
				prior.AsOfDate.Format("2006-01-02"), doc.AsOfDate.Format("2006-01-02")))
	}
}

// checkPeriodContinuity warns when the statement's beginning balance does not
// pick up where the prior observation left off. A mismatch usually means a
// missing statement or a restated period, so it never blocks the document.
func (v *Validator) checkPeriodContinuity(ctx context.Context, doc *model.ExtractedDocument, res *model.ValidationResult) {
	if v.history == nil || doc.AsOfDate == nil || doc.FundID == "" || doc.CapitalAccount == nil {
		return
	}
	beginning := doc.CapitalAccount.BeginningBalance
	if beginning == nil {
		return
	}
	prior, err := v.history.LatestNAVBefore(ctx, doc.FundID, doc.InvestorID, *doc.AsOfDate)
	if err != nil || prior == nil {
		return
	}

	diff := math.Abs(*beginning - prior.NAV)
	if diff/math.Max(math.Abs(prior.NAV), 1) > periodContinuityTolerance {
		res.AddWarning("period_continuity",
			fmt.Sprintf("beginning balance %.2f does not match prior period value %.2f on %s",
				*beginning, prior.NAV, prior.AsOfDate.Format("2006-01-02")))
	}
}

// checkCashflowConsistency verifies the NAV moved at least half of the net
// recorded flows since the prior observation. Only material net flows
// (>= 10,000) trigger the rule.
func (v *Validator) checkCashflowConsistency(ctx context.Context, doc *model.ExtractedDocument, res *model.ValidationResult) {
	if v.history == nil || doc.AsOfDate == nil || doc.FundID == "" || doc.InvestorID == "" {
		return
	}
	nav := accountNAV(doc)
	if nav == nil {
		return
	}
	prior, err := v.history.LatestNAVBefore(ctx, doc.FundID, doc.InvestorID, *doc.AsOfDate)
	if err != nil || prior == nil {
		return
	}

	flows, err := v.history.CashflowsBetween(ctx, doc.FundID, doc.InvestorID, prior.AsOfDate, *doc.AsOfDate)
	if err != nil {
		zap.L().Warn("validate: cashflow history lookup failed",
			zap.String("doc_id", doc.DocID), zap.Error(err))
		return
	}

	var net float64
	for _, f := range flows {
		switch f.FlowType {
		case model.FlowCall:
			net += f.Amount
		case model.FlowDist, model.FlowFee:
			net -= f.Amount
		}
	}
	if math.Abs(net) < flowMaterialityFloor {
		return
	}

	movement := *nav - prior.NAV
	// Flows should move the NAV in their own direction by at least half
	// their size; gains and losses explain the rest.
	if net > 0 && movement < flowMovementShare*net {
		res.AddWarning("cashflow_nav_consistency",
			fmt.Sprintf("NAV moved %.2f against net contributions of %.2f", movement, net))
	}
	if net < 0 && movement > flowMovementShare*net {
		res.AddWarning("cashflow_nav_consistency",
			fmt.Sprintf("NAV moved %.2f against net distributions of %.2f", movement, -net))
	}
}
