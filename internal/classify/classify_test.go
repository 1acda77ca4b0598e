package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/pedocs/internal/model"
)

func TestClassify_CapitalAccount(t *testing.T) {
	c := New()
	content := `Growth Fund IV, L.P.
Capital Account Statement
As of March 31, 2024

Beginning Balance: $1,000,000.00
Ending Balance:    $1,200,000.00`

	dt, conf := c.Classify("growth_iv_cas_q1_2024.txt", content)
	assert.Equal(t, model.DocTypeCapitalAccount, dt)
	assert.Greater(t, conf, 0.5)
}

func TestClassify_CapitalCallNotice(t *testing.T) {
	c := New()
	content := `CAPITAL CALL NOTICE

Dear Limited Partner,

You are hereby notified of a capital call. Amount due: $250,000.
Due Date: April 15, 2024`

	dt, conf := c.Classify("call_notice_7.txt", content)
	assert.Equal(t, model.DocTypeCapitalCallNotice, dt)
	assert.Greater(t, conf, 0.6)
}

func TestClassify_PairBoost(t *testing.T) {
	c := New()
	// Neutral filename so content carries the score; co-occurring phrases add
	// the pair boost on top of the anchor score.
	plain := "capital account"
	boosted := "capital account\nbeginning balance"

	_, confPlain := c.Classify("doc.txt", plain)
	_, confBoosted := c.Classify("doc.txt", boosted)
	assert.Greater(t, confBoosted, confPlain)
}

func TestClassify_FallbackBelowThreshold(t *testing.T) {
	c := New()
	dt, conf := c.Classify("scan0001.txt", "lorem ipsum dolor sit amet")
	assert.Equal(t, model.DocTypeQuarterlyReport, dt)
	assert.Equal(t, 0.3, conf)
}

func TestClassify_ConfidenceCapped(t *testing.T) {
	c := New()
	content := `capital account capital account capital account
partner's capital beginning balance capital balance
capital account beginning balance`
	_, conf := c.Classify("capital_account_statement.txt", content)
	assert.LessOrEqual(t, conf, 1.0)
}

func TestExtractMetadata(t *testing.T) {
	md := ExtractMetadata(`Fund: Growth Fund IV, L.P.
Capital Account Statement as of March 31, 2024
All amounts in USD.`)

	require.NotNil(t, md.AsOfDate)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), *md.AsOfDate)
	assert.Equal(t, "Growth Fund IV, L.P.", md.FundName)
	assert.Equal(t, "USD", md.Currency)
}

func TestExtractMetadata_CurrencySymbol(t *testing.T) {
	md := ExtractMetadata("Ending balance: €1.234.567,89")
	assert.Equal(t, "EUR", md.Currency)
}

func TestExtractMetadata_Empty(t *testing.T) {
	md := ExtractMetadata("nothing of interest here")
	assert.Nil(t, md.AsOfDate)
	assert.Empty(t, md.FundName)
	assert.Empty(t, md.Currency)
}
