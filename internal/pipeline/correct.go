package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fundsight/pedocs/internal/extract"
	"github.com/fundsight/pedocs/internal/model"
	"github.com/fundsight/pedocs/internal/normalize"
)

// Correct applies a manual field correction to a stored document and re-runs
// it from validation onward. The corrected value enters at full confidence
// and the previous value is preserved in the audit trail.
func (p *Processor) Correct(ctx context.Context, docID, fieldName, rawValue string) (Outcome, error) {
	rec, err := p.store.GetDocument(ctx, docID)
	if err != nil {
		return Outcome{}, eris.Wrap(err, "pipeline: load document")
	}
	if rec == nil || rec.Extraction == nil {
		return Outcome{}, eris.Errorf("pipeline: document not found: %s", docID)
	}
	doc := rec.Extraction
	meta := rec.Meta

	def, ok := p.lib.Field(doc.DocType, fieldName)
	if !ok {
		return Outcome{}, eris.Errorf("pipeline: unknown field %s for %s", fieldName, doc.DocType)
	}
	value, ok := normalize.Normalize(rawValue, def.Type)
	if !ok {
		return Outcome{}, eris.Errorf("pipeline: cannot parse %q as %s", rawValue, def.Type)
	}

	var correctedFrom string
	if prev, ok := doc.Field(fieldName); ok {
		correctedFrom = prev.Value.Key()
	}
	doc.Fields[fieldName] = model.ExtractionResult{
		FieldName:  fieldName,
		Value:      value,
		Method:     model.MethodManual,
		Confidence: 1.0,
	}
	entry := model.AuditEntry{
		FieldName:     fieldName,
		Value:         value.Key(),
		Method:        model.MethodManual,
		Confidence:    1.0,
		CorrectedFrom: correctedFrom,
	}
	doc.Audit = append(doc.Audit, entry)
	doc.ManualCorrections = true

	extract.ShapeRecord(doc)
	if fieldName == "as_of_date" {
		if t, ok := value.Time(); ok {
			doc.AsOfDate = &t
			meta.AsOfDate = &t
		}
	}

	out := Outcome{DocID: docID, DocType: doc.DocType, State: StateValidating}
	validation := p.validator.Validate(ctx, doc)

	out.State = StateDeciding
	d := p.decide(doc, validation)
	out.ExtractionConfidence = d.extraction
	out.ValidationConfidence = validation.Confidence
	out.OverallConfidence = d.overall
	out.RequiresReview = d.requiresReview
	out.Issues = append(out.Issues, validation.Errors...)
	out.Issues = append(out.Issues, validation.Warnings...)

	out.State = StateStoring
	if err := p.persist(ctx, meta, doc, validation, d); err != nil {
		out.State = StateFailed
		out.Err = err.Error()
		return out, eris.Wrap(err, "pipeline: persist corrected document")
	}
	if err := p.store.AppendAudit(ctx, docID, []model.AuditEntry{entry}); err != nil {
		zap.L().Warn("pipeline: append correction audit failed",
			zap.String("doc_id", docID), zap.Error(err))
	}
	out.Stored = d.storeFacts

	if d.requiresReview {
		out.State = StateFlagged
	} else {
		out.State = StateDone
	}

	zap.L().Info("pipeline: correction applied",
		zap.String("doc_id", docID),
		zap.String("field", fieldName),
		zap.String("corrected_from", correctedFrom),
		zap.Float64("overall_confidence", out.OverallConfidence))
	return out, nil
}
