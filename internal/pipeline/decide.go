package pipeline

import (
	"github.com/fundsight/pedocs/internal/model"
)

// Blend weights for the overall score.
const (
	extractionWeight = 0.6
	validationWeight = 0.4
)

// Field importance weights for the extraction confidence average. Required
// fields count double, and a required field that never resolved drags the
// average down instead of silently vanishing from it.
const (
	requiredFieldWeight = 2.0
	optionalFieldWeight = 1.0
)

type decision struct {
	extraction     float64
	overall        float64
	requiresReview bool
	storeFacts     bool
}

// decide computes the blended confidence and the store/flag outcome:
// facts are stored when the document validates cleanly or clears the store
// threshold; review is required below the review threshold or on any
// validation error.
func (p *Processor) decide(doc *model.ExtractedDocument, val *model.ValidationResult) decision {
	var d decision
	d.extraction = p.extractionConfidence(doc)
	d.overall = extractionWeight*d.extraction + validationWeight*val.Confidence
	d.requiresReview = d.overall < p.opts.ReviewThreshold || !val.IsValid
	d.storeFacts = val.IsValid || d.overall >= p.opts.StoreThreshold
	return d
}

// extractionConfidence is the importance-weighted mean of per-field
// reconciled confidences over the document type's catalog.
func (p *Processor) extractionConfidence(doc *model.ExtractedDocument) float64 {
	defs := p.lib.ForDocType(doc.DocType)
	if len(defs) == 0 {
		return 0
	}

	var sum, weights float64
	for i := range defs {
		w := optionalFieldWeight
		if defs[i].Required {
			w = requiredFieldWeight
		}
		weights += w
		if r, ok := doc.Field(defs[i].Canonical); ok {
			sum += w * r.Confidence
		}
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}
