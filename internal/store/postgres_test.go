package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/pedocs/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgresUpsertFund(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO pe_fund").
		WithArgs("FUND-1", "GROWTH-IV", "Growth Fund IV, L.P.", "USD", "Growth Partners", 2021, 500000000.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := st.UpsertFund(context.Background(), model.Fund{
		FundID:      "FUND-1",
		FundCode:    "GROWTH-IV",
		FundName:    "Growth Fund IV, L.P.",
		Currency:    "USD",
		Manager:     "Growth Partners",
		VintageYear: 2021,
		FundSize:    500000000,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveDocument(t *testing.T) {
	st, mock := newMockStore(t)
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO pe_document").
		WithArgs("doc-1", "cas_q1.txt", "/in/cas_q1.txt", "abc123", "capital_account_statement", 0.82,
			"FUND-1", "INV-1", &asOf, "USD",
			pgxmock.AnyArg(), pgxmock.AnyArg(), 0.91, false, DocStatusStored, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := st.SaveDocument(context.Background(), &DocumentRecord{
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
		OverallConfidence: 0.91,
		Status:            DocStatusStored,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetDocument(t *testing.T) {
	st, mock := newMockStore(t)
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM pe_document WHERE doc_id").
		WithArgs("doc-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"doc_id", "filename", "path", "file_hash", "doc_type", "classification_confidence",
			"fund_id", "investor_id", "as_of_date", "currency",
			"extraction", "validation", "overall_confidence", "requires_review", "status", "created_at", "updated_at",
		}).AddRow(
			"doc-1", "cas_q1.txt", "/in/cas_q1.txt", "abc123", "capital_account_statement", 0.82,
			"FUND-1", "INV-1", &asOf, "USD",
			[]byte(`{"doc_id":"doc-1","doc_type":"capital_account_statement","fields":null,"extracted_at":"2024-03-31T00:00:00Z"}`),
			[]byte(`{"is_valid":true,"errors":null,"warnings":null,"confidence":1}`),
			0.91, true, DocStatusFlagged, now, now,
		))

	rec, err := st.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, model.DocTypeCapitalAccount, rec.Meta.DocType)
	assert.Equal(t, "FUND-1", rec.Meta.FundID)
	assert.True(t, rec.RequiresReview)
	require.NotNil(t, rec.Extraction)
	assert.Equal(t, "doc-1", rec.Extraction.DocID)
	require.NotNil(t, rec.Validation)
	assert.True(t, rec.Validation.IsValid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetDocument_Missing(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("FROM pe_document WHERE doc_id").
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"doc_id"}))

	rec, err := st.GetDocument(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertNAVObservation_Defaults(t *testing.T) {
	st, mock := newMockStore(t)
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	// Empty scenario and zero version fall back to ACTUAL / 1.
	mock.ExpectExec("INSERT INTO pe_nav_observation").
		WithArgs("FUND-1", "INV-1", "INVESTOR", 1200000.0, asOf, "ACTUAL", 1, "doc-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := st.UpsertNAVObservation(context.Background(), model.NAVObservation{
		FundID:     "FUND-1",
		InvestorID: "INV-1",
		Scope:      model.ScopeInvestor,
		NAV:        1200000,
		AsOfDate:   asOf,
		DocID:      "doc-1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLatestNAVBefore_NoHistory(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("FROM pe_nav_observation").
		WithArgs("FUND-1", "INV-1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"fund_id"}))

	obs, err := st.LatestNAVBefore(context.Background(), "FUND-1", "INV-1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, obs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRegisterJob_Fresh(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO pe_job").
		WithArgs(pgxmock.AnyArg(), "/in/cas.txt", "hash-1", "QUEUED", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	job, fresh, err := st.RegisterJob(context.Background(), "/in/cas.txt", "hash-1")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, model.JobQueued, job.Status)
	assert.Equal(t, "hash-1", job.FileHash)
	assert.NotEmpty(t, job.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRegisterJob_DuplicateHash(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	// ON CONFLICT DO NOTHING affects zero rows; the existing ledger row is
	// fetched by hash instead.
	mock.ExpectExec("INSERT INTO pe_job").
		WithArgs(pgxmock.AnyArg(), "/other/copy.txt", "hash-1", "QUEUED", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("FROM pe_job WHERE file_hash").
		WithArgs("hash-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "path", "file_hash", "status", "doc_id", "message", "created_at", "updated_at",
		}).AddRow("job-1", "/in/cas.txt", "hash-1", "DONE", "doc-1", "", now, now))

	job, fresh, err := st.RegisterJob(context.Background(), "/other/copy.txt", "hash-1")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, "/in/cas.txt", job.Path)
	assert.Equal(t, model.JobDone, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateJob_NotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE pe_job SET status").
		WithArgs("DONE", "doc-1", "", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := st.UpdateJob(context.Background(), "missing", model.JobDone, "doc-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListJobs_StatusFilter(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM pe_job WHERE true AND status").
		WithArgs("FLAGGED", 50).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "path", "file_hash", "status", "doc_id", "message", "created_at", "updated_at",
		}).AddRow("job-1", "/in/a.txt", "hash-a", "FLAGGED", "doc-1", "low confidence", now, now))

	jobs, err := st.ListJobs(context.Background(), JobFilter{Status: model.JobFlagged, Limit: 50})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, model.JobFlagged, jobs[0].Status)
	assert.Equal(t, "low confidence", jobs[0].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresResetJobs_DefaultStatuses(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE pe_job SET status").
		WithArgs("QUEUED", pgxmock.AnyArg(), []string{"ERROR", "FLAGGED"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := st.ResetJobs(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
