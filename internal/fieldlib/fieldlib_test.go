package fieldlib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/pedocs/internal/model"
)

func TestDefault_CoversAllDocTypes(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

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
		assert.NotEmpty(t, lib.ForDocType(dt), dt)
	}

	// Agreement fields are all optional; every transactional type has at
	// least one required field.
	for _, dt := range []model.DocType{
		model.DocTypeCapitalAccount,
		model.DocTypeQuarterlyReport,
		model.DocTypeCapitalCallNotice,
		model.DocTypeDistributionNotice,
		model.DocTypeSubscription,
	} {
		assert.NotEmpty(t, lib.Required(dt), dt)
	}
}

func TestDefault_PatternsCompiled(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	def, ok := lib.Field(model.DocTypeCapitalAccount, "ending_balance")
	require.True(t, ok)
	assert.True(t, def.Required)
	assert.Equal(t, model.TypeDecimal, def.Type)
	require.NotEmpty(t, def.CompiledPatterns())

	// Case-insensitive by construction.
	re := def.CompiledPatterns()[0]
	assert.True(t, re.MatchString("ENDING BALANCE: $1,000") || re.MatchString("Ending Balance: $1,000"))
}

func TestField_UnknownDocType(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	_, ok := lib.Field(model.DocTypeOther, "nav")
	assert.False(t, ok)
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(map[model.DocType][]FieldDef{
		model.DocTypeCapitalAccount: {
			{Canonical: "bad", Type: model.TypeDecimal, Patterns: []string{"("}},
		},
	})
	assert.Error(t, err)
}

func TestDistributionComponents(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	def, ok := lib.Field(model.DocTypeDistributionNotice, "distribution_amount")
	require.True(t, ok)
	assert.NotEmpty(t, def.Components)
	for _, c := range def.Components {
		_, ok := lib.Field(model.DocTypeDistributionNotice, c)
		assert.True(t, ok, "component %s must itself be defined", c)
	}
}

func TestLoadFile_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	override := `capital_account_statement:
  - canonical: ending_balance
    type: decimal
    required: true
    patterns:
      - 'closing\s+balance[:\s]+\$?([\d,\.]+)'
  - canonical: custom_metric
    type: decimal
    patterns:
      - 'custom\s+metric[:\s]+([\d,\.]+)'
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	lib, err := LoadFile(path)
	require.NoError(t, err)

	def, ok := lib.Field(model.DocTypeCapitalAccount, "ending_balance")
	require.True(t, ok)
	require.Len(t, def.Patterns, 1)
	assert.Contains(t, def.Patterns[0], "closing")

	_, ok = lib.Field(model.DocTypeCapitalAccount, "custom_metric")
	assert.True(t, ok)

	// Untouched doc types keep the built-in catalog.
	assert.NotEmpty(t, lib.ForDocType(model.DocTypeCapitalCallNotice))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("/nonexistent/catalog.yaml")
	assert.Error(t, err)
}
