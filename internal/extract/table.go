package extract

import (
	"context"
	"strings"

	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/model"
	"github.com/fundsight/pedocs/internal/normalize"
)

// tableConfidence applies to values read from a matched table column.
const tableConfidence = 0.9

// TableStrategy scans document tables for a header matching one of the
// field's synonyms and takes the first non-empty cell in that column.
type TableStrategy struct{}

func (TableStrategy) Method() model.ExtractionMethod { return model.MethodTable }

func (TableStrategy) Extract(_ context.Context, doc model.ParsedDocument, def *fieldlib.FieldDef) (*model.ExtractionResult, error) {
	for _, table := range doc.Tables {
		for _, synonym := range def.TableHeaders {
			col := matchColumn(table.Headers, synonym)
			if col < 0 {
				continue
			}
			for _, row := range table.Rows {
				if col >= len(row) {
					continue
				}
				cell := strings.TrimSpace(row[col])
				if cell == "" {
					continue
				}
				value, ok := normalize.Normalize(cell, def.Type)
				if !ok {
					// Unparsable cell: keep scanning rows rather than
					// reporting a garbage value.
					continue
				}
				return &model.ExtractionResult{
					FieldName:  def.Canonical,
					Value:      value,
					Method:     model.MethodTable,
					Confidence: tableConfidence,
					RawText:    cell,
				}, nil
			}
		}
	}
	return nil, nil
}

// matchColumn returns the index of the first header containing the synonym,
// case-insensitively, or -1.
func matchColumn(headers []string, synonym string) int {
	needle := strings.ToLower(synonym)
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), needle) {
			return i
		}
	}
	return -1
}
