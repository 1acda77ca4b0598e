package extract

import (
	"context"

	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/model"
)

// compositeConfidence applies to values computed as a sum of components.
const compositeConfidence = 0.85

// CompositeStrategy extracts fields defined as sums of components (e.g.
// total distributions = ROC + gains + income + tax). Each component is
// extracted independently with the table and regex strategies; found
// components are summed. At least one component must be found.
type CompositeStrategy struct {
	lib     *fieldlib.Library
	docType model.DocType
}

// NewCompositeStrategy builds a composite strategy resolving component
// definitions from the library for one document type.
func NewCompositeStrategy(lib *fieldlib.Library, docType model.DocType) *CompositeStrategy {
	return &CompositeStrategy{lib: lib, docType: docType}
}

func (*CompositeStrategy) Method() model.ExtractionMethod { return model.MethodComposite }

func (s *CompositeStrategy) Extract(ctx context.Context, doc model.ParsedDocument, def *fieldlib.FieldDef) (*model.ExtractionResult, error) {
	if len(def.Components) == 0 {
		return nil, nil
	}

	var (
		table TableStrategy
		regex RegexStrategy
		sum   float64
		found int
	)
	for _, name := range def.Components {
		compDef, ok := s.lib.Field(s.docType, name)
		if !ok {
			continue
		}
		r, _ := table.Extract(ctx, doc, compDef)
		if r == nil {
			r, _ = regex.Extract(ctx, doc, compDef)
		}
		if r == nil {
			continue
		}
		if v, ok := r.Value.Decimal(); ok {
			sum += v
			found++
		}
	}
	if found == 0 {
		return nil, nil
	}

	return &model.ExtractionResult{
		FieldName:  def.Canonical,
		Value:      model.DecimalValue(sum),
		Method:     model.MethodComposite,
		Confidence: compositeConfidence,
	}, nil
}
