package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/model"
)

func testLibrary(t *testing.T) *fieldlib.Library {
	t.Helper()
	lib, err := fieldlib.Default()
	require.NoError(t, err)
	return lib
}

func mustField(t *testing.T, lib *fieldlib.Library, dt model.DocType, name string) *fieldlib.FieldDef {
	t.Helper()
	def, ok := lib.Field(dt, name)
	require.True(t, ok, "%s.%s not in catalog", dt, name)
	return def
}

func TestTableStrategy_MatchesHeaderSynonym(t *testing.T) {
	lib := testLibrary(t)
	def := mustField(t, lib, model.DocTypeCapitalAccount, "ending_balance")

	doc := model.ParsedDocument{
		Tables: []model.Table{{
			Headers: []string{"Line Item", "Ending Balance"},
			Rows: [][]string{
				{"Partner capital", "$1,200,000.00"},
			},
		}},
	}

	r, err := TableStrategy{}.Extract(context.Background(), doc, def)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, model.MethodTable, r.Method)
	assert.Equal(t, 0.9, r.Confidence)
	v, ok := r.Value.Decimal()
	require.True(t, ok)
	assert.InDelta(t, 1200000, v, 1e-9)
	assert.Equal(t, "$1,200,000.00", r.RawText)
}

func TestTableStrategy_SkipsUnparsableCells(t *testing.T) {
	lib := testLibrary(t)
	def := mustField(t, lib, model.DocTypeCapitalAccount, "ending_balance")

	doc := model.ParsedDocument{
		Tables: []model.Table{{
			Headers: []string{"Ending Balance"},
			Rows:    [][]string{{"see note 4"}, {"1,500,000"}},
		}},
	}

	r, err := TableStrategy{}.Extract(context.Background(), doc, def)
	require.NoError(t, err)
	require.NotNil(t, r)
	v, _ := r.Value.Decimal()
	assert.InDelta(t, 1500000, v, 1e-9)
}

func TestTableStrategy_NoMatch(t *testing.T) {
	lib := testLibrary(t)
	def := mustField(t, lib, model.DocTypeCapitalAccount, "ending_balance")

	doc := model.ParsedDocument{
		Tables: []model.Table{{Headers: []string{"Unrelated"}, Rows: [][]string{{"1"}}}},
	}
	r, err := TableStrategy{}.Extract(context.Background(), doc, def)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestRegexStrategy_CaptureGroup(t *testing.T) {
	lib := testLibrary(t)
	def := mustField(t, lib, model.DocTypeCapitalAccount, "beginning_balance")

	doc := model.ParsedDocument{Text: "Beginning Balance: $1,000,000.00\nEnding Balance: $1,200,000.00\n"}
	r, err := RegexStrategy{}.Extract(context.Background(), doc, def)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, model.MethodRegex, r.Method)
	assert.Equal(t, 0.8, r.Confidence)
	v, ok := r.Value.Decimal()
	require.True(t, ok)
	assert.InDelta(t, 1000000, v, 1e-9)
	require.NotNil(t, r.Position)
	assert.Equal(t, doc.Text[r.Position.Start:r.Position.End], r.RawText)
}

func TestRegexStrategy_NoMatch(t *testing.T) {
	lib := testLibrary(t)
	def := mustField(t, lib, model.DocTypeCapitalAccount, "beginning_balance")

	r, err := RegexStrategy{}.Extract(context.Background(), model.ParsedDocument{Text: "nothing here"}, def)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestCompositeStrategy_SumsComponents(t *testing.T) {
	lib := testLibrary(t)
	def := mustField(t, lib, model.DocTypeDistributionNotice, "distribution_amount")

	doc := model.ParsedDocument{Text: `DISTRIBUTION NOTICE
Return of Capital: $60,000.00
Realized Gains: $30,000.00
Income: $10,000.00
`}
	s := NewCompositeStrategy(lib, model.DocTypeDistributionNotice)
	r, err := s.Extract(context.Background(), doc, def)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, model.MethodComposite, r.Method)
	assert.Equal(t, 0.85, r.Confidence)
	v, ok := r.Value.Decimal()
	require.True(t, ok)
	assert.InDelta(t, 100000, v, 1e-9)
}

func TestCompositeStrategy_NoComponentsFound(t *testing.T) {
	lib := testLibrary(t)
	def := mustField(t, lib, model.DocTypeDistributionNotice, "distribution_amount")

	s := NewCompositeStrategy(lib, model.DocTypeDistributionNotice)
	r, err := s.Extract(context.Background(), model.ParsedDocument{Text: "no components"}, def)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestCompositeStrategy_PlainFieldIsNoop(t *testing.T) {
	lib := testLibrary(t)
	def := mustField(t, lib, model.DocTypeCapitalAccount, "ending_balance")

	s := NewCompositeStrategy(lib, model.DocTypeCapitalAccount)
	r, err := s.Extract(context.Background(), model.ParsedDocument{Text: "Ending Balance: $5"}, def)
	require.NoError(t, err)
	assert.Nil(t, r)
}
