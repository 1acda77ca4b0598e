package extract

import (
	"context"

	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/model"
	"github.com/fundsight/pedocs/internal/normalize"
)

// regexConfidence applies to values matched by a field pattern in free text.
const regexConfidence = 0.8

// RegexStrategy tries each of the field's patterns against the full text in
// priority order; the first parsable match wins.
type RegexStrategy struct{}

func (RegexStrategy) Method() model.ExtractionMethod { return model.MethodRegex }

func (RegexStrategy) Extract(_ context.Context, doc model.ParsedDocument, def *fieldlib.FieldDef) (*model.ExtractionResult, error) {
	for _, re := range def.CompiledPatterns() {
		loc := re.FindStringSubmatchIndex(doc.Text)
		if loc == nil {
			continue
		}
		// Capture group 1 when present, whole match otherwise.
		start, end := loc[0], loc[1]
		if len(loc) >= 4 && loc[2] >= 0 {
			start, end = loc[2], loc[3]
		}
		raw := doc.Text[start:end]
		value, ok := normalize.Normalize(raw, def.Type)
		if !ok {
			continue
		}
		return &model.ExtractionResult{
			FieldName:  def.Canonical,
			Value:      value,
			Method:     model.MethodRegex,
			Confidence: regexConfidence,
			RawText:    doc.Text[loc[0]:loc[1]],
			Position:   &model.Position{Start: loc[0], End: loc[1]},
		}, nil
	}
	return nil, nil
}
