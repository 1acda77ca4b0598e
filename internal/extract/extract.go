// Package extract implements the per-field extraction strategies (table,
// regex, composite, LLM) and the per-document-type extractors that shape
// reconciled values into domain records.
//
// Strategies are pure functions of (document, field definition); several may
// run for the same field and all their results feed reconciliation. Every
// document type goes through the same engine — there are no type-specific
// extraction shortcuts.
package extract

import (
	"context"

	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/model"
)

// Strategy is one extraction method. Implementations are side-effect-free;
// a nil result with nil error means "field not found", which is a normal
// outcome, not an error.
type Strategy interface {
	Method() model.ExtractionMethod
	Extract(ctx context.Context, doc model.ParsedDocument, def *fieldlib.FieldDef) (*model.ExtractionResult, error)
}

// DocExtractor turns a parsed document into the tagged record for its type.
type DocExtractor interface {
	DocType() model.DocType
	Extract(ctx context.Context, doc model.ParsedDocument, meta model.DocumentMeta) (*model.ExtractedDocument, error)
}

// Registry dispatches documents to the extractor registered for their type.
// Absence of a handler is expected for out-of-scope types.
type Registry struct {
	byType map[model.DocType]DocExtractor
}

// NewRegistry builds a registry with the standard extractor set wired to the
// given engine. financial_statement and other have no handler; the pipeline
// skips them.
func NewRegistry(engine *Engine) *Registry {
	r := &Registry{byType: make(map[model.DocType]DocExtractor)}
	for _, dt := range []model.DocType{
		model.DocTypeCapitalAccount,
		model.DocTypeQuarterlyReport,
		model.DocTypeAnnualReport,
		model.DocTypeCapitalCallNotice,
		model.DocTypeDistributionNotice,
		model.DocTypeSubscription,
		model.DocTypeLPA,
		model.DocTypePPM,
	} {
		r.Register(&typedExtractor{engine: engine, docType: dt})
	}
	return r
}

// Register adds an extractor, replacing any previous handler for its type.
func (r *Registry) Register(e DocExtractor) {
	r.byType[e.DocType()] = e
}

// For returns the extractor for a document type, or (nil, false) when the
// type has no handler.
func (r *Registry) For(dt model.DocType) (DocExtractor, bool) {
	e, ok := r.byType[dt]
	return e, ok
}
