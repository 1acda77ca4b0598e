package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/pedocs/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "pedocs_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func ptrf(v float64) *float64 { return &v }

func TestSQLiteFundRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	fund := model.Fund{
		FundID:      "FUND-1",
		FundCode:    "GROWTH-IV",
		FundName:    "Growth Fund IV, L.P.",
		Currency:    "USD",
		Manager:     "Growth Partners",
		VintageYear: 2021,
		FundSize:    500000000,
	}
	require.NoError(t, st.UpsertFund(ctx, fund))

	got, err := st.GetFund(ctx, "FUND-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fund, *got)

	// Upsert replaces in place.
	fund.FundName = "Growth Fund IV (Feeder), L.P."
	require.NoError(t, st.UpsertFund(ctx, fund))
	got, err = st.GetFund(ctx, "FUND-1")
	require.NoError(t, err)
	assert.Equal(t, "Growth Fund IV (Feeder), L.P.", got.FundName)
}

func TestSQLiteGetFund_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)
	got, err := st.GetFund(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteDocumentRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	rec := &DocumentRecord{
		Meta: model.DocumentMeta{
			DocID:              "doc-1",
			Filename:           "cas_q1.txt",
			Path:               "/in/cas_q1.txt",
			FileHash:           "abc123",
			DocType:            model.DocTypeCapitalAccount,
			ClassifyConfidence: 0.82,
			FundID:             "FUND-1",
			InvestorID:         "INV-1",
			AsOfDate:           &asOf,
			ReportingCurrency:  "USD",
		},
		Extraction: &model.ExtractedDocument{
			DocID:   "doc-1",
			DocType: model.DocTypeCapitalAccount,
			CapitalAccount: &model.CapitalAccountPeriod{
				EndingBalance: ptrf(1200000),
			},
		},
		Validation: &model.ValidationResult{
			IsValid:    true,
			Confidence: 1.0,
		},
		OverallConfidence: 0.91,
		RequiresReview:    false,
		Status:            DocStatusStored,
	}
	require.NoError(t, st.SaveDocument(ctx, rec))

	got, err := st.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "cas_q1.txt", got.Meta.Filename)
	assert.Equal(t, model.DocTypeCapitalAccount, got.Meta.DocType)
	assert.Equal(t, "FUND-1", got.Meta.FundID)
	require.NotNil(t, got.Meta.AsOfDate)
	assert.Equal(t, "2024-03-31", got.Meta.AsOfDate.Format("2006-01-02"))
	assert.InDelta(t, 0.91, got.OverallConfidence, 1e-9)
	assert.Equal(t, DocStatusStored, got.Status)

	require.NotNil(t, got.Extraction)
	require.NotNil(t, got.Extraction.CapitalAccount)
	assert.InDelta(t, 1200000, *got.Extraction.CapitalAccount.EndingBalance, 1e-9)
	require.NotNil(t, got.Validation)
	assert.True(t, got.Validation.IsValid)
}

func TestSQLiteSaveDocument_UpsertByDocID(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := &DocumentRecord{
		Meta:   model.DocumentMeta{DocID: "doc-1", Filename: "a.txt", FileHash: "h1", DocType: model.DocTypeQuarterlyReport},
		Status: DocStatusFlagged,
	}
	require.NoError(t, st.SaveDocument(ctx, rec))

	rec.Status = DocStatusStored
	rec.OverallConfidence = 0.95
	require.NoError(t, st.SaveDocument(ctx, rec))

	got, err := st.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, DocStatusStored, got.Status)
	assert.InDelta(t, 0.95, got.OverallConfidence, 1e-9)
}

func TestSQLiteGetDocument_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)
	got, err := st.GetDocument(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteListFlagged(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, d := range []struct {
		id     string
		review bool
	}{
		{"doc-1", true},
		{"doc-2", false},
		{"doc-3", true},
	} {
		require.NoError(t, st.SaveDocument(ctx, &DocumentRecord{
			Meta:           model.DocumentMeta{DocID: d.id, Filename: d.id + ".txt", FileHash: "hash-" + d.id, DocType: model.DocTypeCapitalAccount},
			RequiresReview: d.review,
			Status:         DocStatusFlagged,
		}))
	}

	flagged, err := st.ListFlagged(ctx, 10)
	require.NoError(t, err)
	require.Len(t, flagged, 2)
	for _, rec := range flagged {
		assert.True(t, rec.RequiresReview)
	}

	flagged, err = st.ListFlagged(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, flagged, 1)
}

func TestSQLiteNAVObservations(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		require.NoError(t, st.UpsertNAVObservation(ctx, model.NAVObservation{
			FundID:     "FUND-1",
			InvestorID: "INV-1",
			Scope:      model.ScopeInvestor,
			NAV:        float64(100000 + i*10000),
			AsOfDate:   d,
			DocID:      "doc-1",
		}))
	}

	// Latest strictly before Q1 2024 is the year-end observation.
	obs, err := st.LatestNAVBefore(ctx, "FUND-1", "INV-1", dates[2])
	require.NoError(t, err)
	require.NotNil(t, obs)
	assert.InDelta(t, 110000, obs.NAV, 1e-9)
	assert.Equal(t, "2023-12-31", obs.AsOfDate.Format("2006-01-02"))
	assert.Equal(t, "ACTUAL", obs.Scenario)
	assert.Equal(t, 1, obs.VersionNo)

	// Re-observing the same key replaces the value.
	require.NoError(t, st.UpsertNAVObservation(ctx, model.NAVObservation{
		FundID:     "FUND-1",
		InvestorID: "INV-1",
		Scope:      model.ScopeInvestor,
		NAV:        111000,
		AsOfDate:   dates[1],
	}))
	obs, err = st.LatestNAVBefore(ctx, "FUND-1", "INV-1", dates[2])
	require.NoError(t, err)
	assert.InDelta(t, 111000, obs.NAV, 1e-9)

	// No history before the first observation.
	obs, err = st.LatestNAVBefore(ctx, "FUND-1", "INV-1", dates[0])
	require.NoError(t, err)
	assert.Nil(t, obs)
}

func TestSQLiteCashflows(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	flows := []model.Cashflow{
		{FundID: "FUND-1", InvestorID: "INV-1", FlowType: model.FlowCall, Amount: 50000,
			FlowDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), DocID: "doc-1"},
		{FundID: "FUND-1", InvestorID: "INV-1", FlowType: model.FlowDist, Amount: 20000,
			FlowDate: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), DocID: "doc-1"},
	}
	require.NoError(t, st.InsertCashflows(ctx, flows))

	// Re-inserting the same flows updates rather than duplicates.
	flows[0].Amount = 55000
	require.NoError(t, st.InsertCashflows(ctx, flows))

	got, err := st.CashflowsBetween(ctx, "FUND-1", "INV-1",
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.FlowCall, got[0].FlowType)
	assert.InDelta(t, 55000, got[0].Amount, 1e-9)
	assert.Equal(t, model.FlowDist, got[1].FlowType)

	// Window excludes the lower bound and includes the upper.
	got, err = st.CashflowsBetween(ctx, "FUND-1", "INV-1",
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.FlowDist, got[0].FlowType)

	require.NoError(t, st.InsertCashflows(ctx, nil))
}

func TestSQLiteCapitalAccountUpsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	period := &model.CapitalAccountPeriod{
		BeginningBalance: ptrf(1000000),
		EndingBalance:    ptrf(1200000),
	}
	require.NoError(t, st.UpsertCapitalAccount(ctx, "FUND-1", "INV-1", asOf, "doc-1", period))

	period.EndingBalance = ptrf(1250000)
	require.NoError(t, st.UpsertCapitalAccount(ctx, "FUND-1", "INV-1", asOf, "doc-2", period))

	var count int
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pe_capital_account WHERE fund_id = ? AND investor_id = ?`,
		"FUND-1", "INV-1").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteAppendAudit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	entries := []model.AuditEntry{
		{FieldName: "ending_balance", Value: "1200000", Method: model.MethodTable, Confidence: 0.9,
			Alternatives: []model.Alternative{{Value: "1100000", Count: 1, Methods: []model.ExtractionMethod{model.MethodLLM}}}},
		{FieldName: "ending_balance", Value: "1250000", Method: model.MethodManual, Confidence: 1.0, CorrectedFrom: "1200000"},
	}
	require.NoError(t, st.AppendAudit(ctx, "doc-1", entries))
	require.NoError(t, st.AppendAudit(ctx, "doc-1", nil))

	var count int
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pe_extraction_audit WHERE doc_id = ?`, "doc-1").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLiteJobLedger(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	job, fresh, err := st.RegisterJob(ctx, "/in/cas.txt", "hash-1")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, model.JobQueued, job.Status)

	// Same hash under a different path returns the existing row.
	dup, fresh, err := st.RegisterJob(ctx, "/other/copy.txt", "hash-1")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, job.ID, dup.ID)
	assert.Equal(t, "/in/cas.txt", dup.Path)

	require.NoError(t, st.UpdateJob(ctx, job.ID, model.JobFlagged, "doc-1", "low confidence"))

	jobs, err := st.ListJobs(ctx, JobFilter{Status: model.JobFlagged})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "doc-1", jobs[0].DocID)
	assert.Equal(t, "low confidence", jobs[0].Message)

	jobs, err = st.ListJobs(ctx, JobFilter{Status: model.JobDone})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestSQLiteUpdateJob_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.UpdateJob(context.Background(), "missing", model.JobDone, "", "")
	assert.Error(t, err)
}

func TestSQLiteResetJobs(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	j1, _, err := st.RegisterJob(ctx, "/in/a.txt", "hash-a")
	require.NoError(t, err)
	j2, _, err := st.RegisterJob(ctx, "/in/b.txt", "hash-b")
	require.NoError(t, err)
	j3, _, err := st.RegisterJob(ctx, "/in/c.txt", "hash-c")
	require.NoError(t, err)

	require.NoError(t, st.UpdateJob(ctx, j1.ID, model.JobError, "", "parse failed"))
	require.NoError(t, st.UpdateJob(ctx, j2.ID, model.JobFlagged, "doc-2", ""))
	require.NoError(t, st.UpdateJob(ctx, j3.ID, model.JobDone, "doc-3", ""))

	// Empty statuses defaults to ERROR and FLAGGED.
	n, err := st.ResetJobs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	jobs, err := st.ListJobs(ctx, JobFilter{Status: model.JobQueued})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.Empty(t, j.Message)
	}

	jobs, err = st.ListJobs(ctx, JobFilter{Status: model.JobDone})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}
