package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fundsight/pedocs/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It serves
// single-operator deployments where a Postgres instance is overkill.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sdb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sdb.Exec(pragma); err != nil {
			sdb.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sdb}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS pe_fund (
	fund_id      TEXT PRIMARY KEY,
	fund_code    TEXT NOT NULL UNIQUE,
	fund_name    TEXT NOT NULL,
	currency     TEXT,
	fund_manager TEXT,
	vintage_year INTEGER,
	fund_size    REAL
);

CREATE TABLE IF NOT EXISTS pe_investor (
	investor_id   TEXT PRIMARY KEY,
	investor_code TEXT NOT NULL UNIQUE,
	investor_name TEXT NOT NULL,
	investor_type TEXT
);

CREATE TABLE IF NOT EXISTS pe_document (
	doc_id                    TEXT PRIMARY KEY,
	filename                  TEXT NOT NULL,
	path                      TEXT,
	file_hash                 TEXT NOT NULL UNIQUE,
	doc_type                  TEXT NOT NULL,
	classification_confidence REAL NOT NULL DEFAULT 0,
	fund_id                   TEXT,
	investor_id               TEXT,
	as_of_date                DATE,
	currency                  TEXT,
	extraction                TEXT,
	validation                TEXT,
	overall_confidence        REAL NOT NULL DEFAULT 0,
	requires_review           INTEGER NOT NULL DEFAULT 0,
	status                    TEXT NOT NULL DEFAULT 'FLAGGED',
	created_at                DATETIME NOT NULL,
	updated_at                DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pe_document_status ON pe_document(status);

CREATE TABLE IF NOT EXISTS pe_nav_observation (
	fund_id     TEXT NOT NULL,
	investor_id TEXT NOT NULL DEFAULT '',
	scope       TEXT NOT NULL,
	nav_value   REAL NOT NULL,
	as_of_date  DATE NOT NULL,
	scenario    TEXT NOT NULL DEFAULT 'ACTUAL',
	version_no  INTEGER NOT NULL DEFAULT 1,
	doc_id      TEXT,
	PRIMARY KEY (fund_id, investor_id, as_of_date, scenario, version_no)
);

CREATE TABLE IF NOT EXISTS pe_cashflow (
	id          TEXT PRIMARY KEY,
	fund_id     TEXT NOT NULL,
	investor_id TEXT NOT NULL,
	flow_type   TEXT NOT NULL,
	amount      REAL NOT NULL,
	flow_date   DATE NOT NULL,
	doc_id      TEXT,
	UNIQUE (fund_id, investor_id, flow_type, flow_date, doc_id)
);

CREATE INDEX IF NOT EXISTS idx_pe_cashflow_lookup ON pe_cashflow(fund_id, investor_id, flow_date);

CREATE TABLE IF NOT EXISTS pe_capital_account (
	fund_id     TEXT NOT NULL,
	investor_id TEXT NOT NULL,
	as_of_date  DATE NOT NULL,
	doc_id      TEXT,
	data        TEXT NOT NULL,
	updated_at  DATETIME NOT NULL,
	PRIMARY KEY (fund_id, investor_id, as_of_date)
);

CREATE TABLE IF NOT EXISTS pe_extraction_audit (
	id             TEXT PRIMARY KEY,
	doc_id         TEXT NOT NULL,
	field_name     TEXT NOT NULL,
	value          TEXT,
	method         TEXT NOT NULL,
	confidence     REAL NOT NULL,
	alternatives   TEXT,
	corrected_from TEXT,
	created_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pe_audit_doc ON pe_extraction_audit(doc_id);

CREATE TABLE IF NOT EXISTS pe_job (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	file_hash  TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL DEFAULT 'QUEUED',
	doc_id     TEXT,
	message    TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pe_job_status ON pe_job(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertFund(ctx context.Context, f model.Fund) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pe_fund (fund_id, fund_code, fund_name, currency, fund_manager, vintage_year, fund_size)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (fund_id) DO UPDATE SET
		   fund_code = excluded.fund_code, fund_name = excluded.fund_name, currency = excluded.currency,
		   fund_manager = excluded.fund_manager, vintage_year = excluded.vintage_year, fund_size = excluded.fund_size`,
		f.FundID, f.FundCode, f.FundName, f.Currency, f.Manager, f.VintageYear, f.FundSize,
	)
	return eris.Wrapf(err, "sqlite: upsert fund %s", f.FundID)
}

func (s *SQLiteStore) GetFund(ctx context.Context, fundID string) (*model.Fund, error) {
	var f model.Fund
	err := s.db.QueryRowContext(ctx,
		`SELECT fund_id, fund_code, fund_name, COALESCE(currency, ''), COALESCE(fund_manager, ''), COALESCE(vintage_year, 0), COALESCE(fund_size, 0)
		 FROM pe_fund WHERE fund_id = ?`,
		fundID,
	).Scan(&f.FundID, &f.FundCode, &f.FundName, &f.Currency, &f.Manager, &f.VintageYear, &f.FundSize)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get fund %s", fundID)
	}
	return &f, nil
}

func (s *SQLiteStore) UpsertInvestor(ctx context.Context, inv model.Investor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pe_investor (investor_id, investor_code, investor_name, investor_type)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (investor_id) DO UPDATE SET
		   investor_code = excluded.investor_code, investor_name = excluded.investor_name, investor_type = excluded.investor_type`,
		inv.InvestorID, inv.InvestorCode, inv.InvestorName, inv.InvestorType,
	)
	return eris.Wrapf(err, "sqlite: upsert investor %s", inv.InvestorID)
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, rec *DocumentRecord) error {
	extractionJSON, err := json.Marshal(rec.Extraction)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal extraction")
	}
	validationJSON, err := json.Marshal(rec.Validation)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal validation")
	}

	now := time.Now().UTC()
	m := rec.Meta
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pe_document
		 (doc_id, filename, path, file_hash, doc_type, classification_confidence, fund_id, investor_id, as_of_date, currency,
		  extraction, validation, overall_confidence, requires_review, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (doc_id) DO UPDATE SET
		   doc_type = excluded.doc_type, classification_confidence = excluded.classification_confidence,
		   fund_id = excluded.fund_id, investor_id = excluded.investor_id, as_of_date = excluded.as_of_date,
		   currency = excluded.currency, extraction = excluded.extraction, validation = excluded.validation,
		   overall_confidence = excluded.overall_confidence, requires_review = excluded.requires_review,
		   status = excluded.status, updated_at = excluded.updated_at`,
		m.DocID, m.Filename, m.Path, m.FileHash, string(m.DocType), m.ClassifyConfidence,
		m.FundID, m.InvestorID, m.AsOfDate, m.ReportingCurrency,
		string(extractionJSON), string(validationJSON), rec.OverallConfidence, rec.RequiresReview, rec.Status, now, now,
	)
	return eris.Wrapf(err, "sqlite: save document %s", m.DocID)
}

const sqliteDocumentSelect = `SELECT doc_id, filename, COALESCE(path, ''), file_hash, doc_type, classification_confidence,
	COALESCE(fund_id, ''), COALESCE(investor_id, ''), as_of_date, COALESCE(currency, ''),
	extraction, validation, overall_confidence, requires_review, status, created_at, updated_at
	FROM pe_document`

func (s *SQLiteStore) GetDocument(ctx context.Context, docID string) (*DocumentRecord, error) {
	rec, err := scanSQLiteDocument(s.db.QueryRowContext(ctx, sqliteDocumentSelect+` WHERE doc_id = ?`, docID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get document %s", docID)
	}
	return rec, nil
}

func (s *SQLiteStore) ListFlagged(ctx context.Context, limit int) ([]DocumentRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		sqliteDocumentSelect+` WHERE requires_review = 1 ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list flagged")
	}
	defer rows.Close()

	var out []DocumentRecord
	for rows.Next() {
		rec, err := scanSQLiteDocument(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan flagged document")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list flagged iterate")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDocument(row rowScanner) (*DocumentRecord, error) {
	var rec DocumentRecord
	var docType string
	var extractionJSON, validationJSON sql.NullString
	if err := row.Scan(&rec.Meta.DocID, &rec.Meta.Filename, &rec.Meta.Path, &rec.Meta.FileHash,
		&docType, &rec.Meta.ClassifyConfidence, &rec.Meta.FundID, &rec.Meta.InvestorID,
		&rec.Meta.AsOfDate, &rec.Meta.ReportingCurrency,
		&extractionJSON, &validationJSON, &rec.OverallConfidence, &rec.RequiresReview,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Meta.DocType = model.DocType(docType)
	if extractionJSON.Valid && extractionJSON.String != "" && extractionJSON.String != "null" {
		rec.Extraction = &model.ExtractedDocument{}
		if err := json.Unmarshal([]byte(extractionJSON.String), rec.Extraction); err != nil {
			return nil, eris.Wrap(err, "unmarshal extraction")
		}
	}
	if validationJSON.Valid && validationJSON.String != "" && validationJSON.String != "null" {
		rec.Validation = &model.ValidationResult{}
		if err := json.Unmarshal([]byte(validationJSON.String), rec.Validation); err != nil {
			return nil, eris.Wrap(err, "unmarshal validation")
		}
	}
	return &rec, nil
}

func (s *SQLiteStore) UpsertNAVObservation(ctx context.Context, obs model.NAVObservation) error {
	scenario := obs.Scenario
	if scenario == "" {
		scenario = "ACTUAL"
	}
	version := obs.VersionNo
	if version <= 0 {
		version = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pe_nav_observation (fund_id, investor_id, scope, nav_value, as_of_date, scenario, version_no, doc_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (fund_id, investor_id, as_of_date, scenario, version_no) DO UPDATE SET
		   nav_value = excluded.nav_value, scope = excluded.scope, doc_id = excluded.doc_id`,
		obs.FundID, obs.InvestorID, string(obs.Scope), obs.NAV, obs.AsOfDate, scenario, version, obs.DocID,
	)
	return eris.Wrapf(err, "sqlite: upsert nav %s@%s", obs.FundID, obs.AsOfDate.Format("2006-01-02"))
}

func (s *SQLiteStore) InsertCashflows(ctx context.Context, flows []model.Cashflow) error {
	if len(flows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin cashflow tx")
	}
	defer tx.Rollback()

	for _, f := range flows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pe_cashflow (id, fund_id, investor_id, flow_type, amount, flow_date, doc_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (fund_id, investor_id, flow_type, flow_date, doc_id) DO UPDATE SET amount = excluded.amount`,
			uuid.New().String(), f.FundID, f.InvestorID, string(f.FlowType), f.Amount, f.FlowDate, f.DocID,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert cashflow")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit cashflows")
}

func (s *SQLiteStore) UpsertCapitalAccount(ctx context.Context, fundID, investorID string, asOf time.Time, docID string, p *model.CapitalAccountPeriod) error {
	data, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal capital account")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pe_capital_account (fund_id, investor_id, as_of_date, doc_id, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (fund_id, investor_id, as_of_date) DO UPDATE SET
		   doc_id = excluded.doc_id, data = excluded.data, updated_at = excluded.updated_at`,
		fundID, investorID, asOf, docID, string(data), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert capital account %s/%s", fundID, investorID)
}

func (s *SQLiteStore) AppendAudit(ctx context.Context, docID string, entries []model.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin audit tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, e := range entries {
		var altJSON string
		if len(e.Alternatives) > 0 {
			b, err := json.Marshal(e.Alternatives)
			if err != nil {
				return eris.Wrap(err, "sqlite: marshal alternatives")
			}
			altJSON = string(b)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pe_extraction_audit (id, doc_id, field_name, value, method, confidence, alternatives, corrected_from, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), docID, e.FieldName, e.Value, string(e.Method), e.Confidence, altJSON, e.CorrectedFrom, now,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert audit entry")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit audit")
}

func (s *SQLiteStore) LatestNAVBefore(ctx context.Context, fundID, investorID string, before time.Time) (*model.NAVObservation, error) {
	var obs model.NAVObservation
	var scope string
	err := s.db.QueryRowContext(ctx,
		`SELECT fund_id, investor_id, scope, nav_value, as_of_date, scenario, version_no, COALESCE(doc_id, '')
		 FROM pe_nav_observation
		 WHERE fund_id = ? AND investor_id = ? AND as_of_date < ?
		 ORDER BY as_of_date DESC, version_no DESC LIMIT 1`,
		fundID, investorID, before,
	).Scan(&obs.FundID, &obs.InvestorID, &scope, &obs.NAV, &obs.AsOfDate, &obs.Scenario, &obs.VersionNo, &obs.DocID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: latest nav")
	}
	obs.Scope = model.NAVScope(scope)
	return &obs, nil
}

func (s *SQLiteStore) CashflowsBetween(ctx context.Context, fundID, investorID string, from, to time.Time) ([]model.Cashflow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fund_id, investor_id, flow_type, amount, flow_date, COALESCE(doc_id, '')
		 FROM pe_cashflow
		 WHERE fund_id = ? AND investor_id = ? AND flow_date > ? AND flow_date <= ?
		 ORDER BY flow_date`,
		fundID, investorID, from, to,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: cashflows between")
	}
	defer rows.Close()

	var out []model.Cashflow
	for rows.Next() {
		var f model.Cashflow
		var ft string
		if err := rows.Scan(&f.FundID, &f.InvestorID, &ft, &f.Amount, &f.FlowDate, &f.DocID); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cashflow")
		}
		f.FlowType = model.FlowType(ft)
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: cashflows iterate")
}

func (s *SQLiteStore) RegisterJob(ctx context.Context, path, fileHash string) (*model.Job, bool, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pe_job (id, path, file_hash, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (file_hash) DO NOTHING`,
		id, path, fileHash, string(model.JobQueued), now, now,
	)
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: register job %s", path)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: register job rows affected")
	}
	if n == 0 {
		job, err := s.jobByHash(ctx, fileHash)
		if err != nil {
			return nil, false, err
		}
		return job, false, nil
	}

	return &model.Job{
		ID:        id,
		Path:      path,
		FileHash:  fileHash,
		Status:    model.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, true, nil
}

func (s *SQLiteStore) jobByHash(ctx context.Context, fileHash string) (*model.Job, error) {
	var j model.Job
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, path, file_hash, status, COALESCE(doc_id, ''), COALESCE(message, ''), created_at, updated_at
		 FROM pe_job WHERE file_hash = ?`,
		fileHash,
	).Scan(&j.ID, &j.Path, &j.FileHash, &status, &j.DocID, &j.Message, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: job by hash")
	}
	j.Status = model.JobStatus(status)
	return &j, nil
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, id string, status model.JobStatus, docID, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pe_job SET status = ?, doc_id = ?, message = ?, updated_at = ? WHERE id = ?`,
		string(status), docID, message, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update job %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: update job rows affected")
	}
	if n == 0 {
		return eris.Errorf("job not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT id, path, file_hash, status, COALESCE(doc_id, ''), COALESCE(message, ''), created_at, updated_at FROM pe_job WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var j model.Job
		var status string
		if err := rows.Scan(&j.ID, &j.Path, &j.FileHash, &status, &j.DocID, &j.Message, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job")
		}
		j.Status = model.JobStatus(status)
		jobs = append(jobs, j)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: list jobs iterate")
}

func (s *SQLiteStore) ResetJobs(ctx context.Context, statuses []model.JobStatus) (int, error) {
	if len(statuses) == 0 {
		statuses = []model.JobStatus{model.JobError, model.JobFlagged}
	}
	placeholders := make([]string, len(statuses))
	args := []any{string(model.JobQueued), time.Now().UTC()}
	for i, st := range statuses {
		placeholders[i] = "?"
		args = append(args, string(st))
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE pe_job SET status = ?, message = '', updated_at = ? WHERE status IN (%s)`,
			strings.Join(placeholders, ", ")),
		args...,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: reset jobs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: reset jobs rows affected")
	}
	return int(n), nil
}
