package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fundsight/pedocs/internal/db"
	"github.com/fundsight/pedocs/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest ledger and history operations.
var preparedStatements = map[string]string{
	"register_job":    `INSERT INTO pe_job (id, path, file_hash, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (file_hash) DO NOTHING`,
	"update_job":      `UPDATE pe_job SET status = $1, doc_id = $2, message = $3, updated_at = $4 WHERE id = $5`,
	"job_by_hash":     `SELECT id, path, file_hash, status, doc_id, message, created_at, updated_at FROM pe_job WHERE file_hash = $1`,
	"latest_nav":      `SELECT fund_id, investor_id, scope, nav_value, as_of_date, scenario, version_no, doc_id FROM pe_nav_observation WHERE fund_id = $1 AND investor_id = $2 AND as_of_date < $3 ORDER BY as_of_date DESC, version_no DESC LIMIT 1`,
	"flows_between":   `SELECT fund_id, investor_id, flow_type, amount, flow_date, doc_id FROM pe_cashflow WHERE fund_id = $1 AND investor_id = $2 AND flow_date > $3 AND flow_date <= $4 ORDER BY flow_date`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool for subsystems needing direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS pe_fund (
	fund_id      TEXT PRIMARY KEY,
	fund_code    TEXT NOT NULL UNIQUE,
	fund_name    TEXT NOT NULL,
	currency     TEXT,
	fund_manager TEXT,
	vintage_year INTEGER,
	fund_size    DOUBLE PRECISION
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
	classification_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	fund_id                   TEXT,
	investor_id               TEXT,
	as_of_date                DATE,
	currency                  TEXT,
	extraction                JSONB,
	validation                JSONB,
	overall_confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
	requires_review           BOOLEAN NOT NULL DEFAULT false,
	status                    TEXT NOT NULL DEFAULT 'FLAGGED',
	created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at                TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pe_document_status ON pe_document(status);
CREATE INDEX IF NOT EXISTS idx_pe_document_review ON pe_document(requires_review) WHERE requires_review;

CREATE TABLE IF NOT EXISTS pe_nav_observation (
	fund_id     TEXT NOT NULL,
	investor_id TEXT NOT NULL DEFAULT '',
	scope       TEXT NOT NULL,
	nav_value   DOUBLE PRECISION NOT NULL,
	as_of_date  DATE NOT NULL,
	scenario    TEXT NOT NULL DEFAULT 'ACTUAL',
	version_no  INTEGER NOT NULL DEFAULT 1,
	doc_id      TEXT,
	PRIMARY KEY (fund_id, investor_id, as_of_date, scenario, version_no)
);

CREATE INDEX IF NOT EXISTS idx_pe_nav_lookup ON pe_nav_observation(fund_id, investor_id, as_of_date DESC);

CREATE TABLE IF NOT EXISTS pe_cashflow (
	id          TEXT PRIMARY KEY,
	fund_id     TEXT NOT NULL,
	investor_id TEXT NOT NULL,
	flow_type   TEXT NOT NULL,
	amount      DOUBLE PRECISION NOT NULL,
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
	data        JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (fund_id, investor_id, as_of_date)
);

CREATE TABLE IF NOT EXISTS pe_extraction_audit (
	id             TEXT PRIMARY KEY,
	doc_id         TEXT NOT NULL,
	field_name     TEXT NOT NULL,
	value          TEXT,
	method         TEXT NOT NULL,
	confidence     DOUBLE PRECISION NOT NULL,
	alternatives   JSONB,
	corrected_from TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pe_audit_doc ON pe_extraction_audit(doc_id);

CREATE TABLE IF NOT EXISTS pe_job (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	file_hash  TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL DEFAULT 'QUEUED',
	doc_id     TEXT,
	message    TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pe_job_status ON pe_job(status);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertFund(ctx context.Context, f model.Fund) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pe_fund (fund_id, fund_code, fund_name, currency, fund_manager, vintage_year, fund_size)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (fund_id) DO UPDATE SET
		   fund_code = $2, fund_name = $3, currency = $4, fund_manager = $5, vintage_year = $6, fund_size = $7`,
		f.FundID, f.FundCode, f.FundName, f.Currency, f.Manager, f.VintageYear, f.FundSize,
	)
	return eris.Wrapf(err, "postgres: upsert fund %s", f.FundID)
}

func (s *PostgresStore) GetFund(ctx context.Context, fundID string) (*model.Fund, error) {
	var f model.Fund
	err := s.pool.QueryRow(ctx,
		`SELECT fund_id, fund_code, fund_name, COALESCE(currency, ''), COALESCE(fund_manager, ''), COALESCE(vintage_year, 0), COALESCE(fund_size, 0)
		 FROM pe_fund WHERE fund_id = $1`,
		fundID,
	).Scan(&f.FundID, &f.FundCode, &f.FundName, &f.Currency, &f.Manager, &f.VintageYear, &f.FundSize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get fund %s", fundID)
	}
	return &f, nil
}

func (s *PostgresStore) UpsertInvestor(ctx context.Context, inv model.Investor) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pe_investor (investor_id, investor_code, investor_name, investor_type)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (investor_id) DO UPDATE SET
		   investor_code = $2, investor_name = $3, investor_type = $4`,
		inv.InvestorID, inv.InvestorCode, inv.InvestorName, inv.InvestorType,
	)
	return eris.Wrapf(err, "postgres: upsert investor %s", inv.InvestorID)
}

func (s *PostgresStore) SaveDocument(ctx context.Context, rec *DocumentRecord) error {
	extractionJSON, err := json.Marshal(rec.Extraction)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal extraction")
	}
	validationJSON, err := json.Marshal(rec.Validation)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal validation")
	}

	now := time.Now().UTC()
	m := rec.Meta
	_, err = s.pool.Exec(ctx,
		`INSERT INTO pe_document
		 (doc_id, filename, path, file_hash, doc_type, classification_confidence, fund_id, investor_id, as_of_date, currency,
		  extraction, validation, overall_confidence, requires_review, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
		 ON CONFLICT (doc_id) DO UPDATE SET
		   doc_type = $5, classification_confidence = $6, fund_id = $7, investor_id = $8, as_of_date = $9, currency = $10,
		   extraction = $11, validation = $12, overall_confidence = $13, requires_review = $14, status = $15, updated_at = $16`,
		m.DocID, m.Filename, m.Path, m.FileHash, string(m.DocType), m.ClassifyConfidence,
		m.FundID, m.InvestorID, m.AsOfDate, m.ReportingCurrency,
		extractionJSON, validationJSON, rec.OverallConfidence, rec.RequiresReview, rec.Status, now,
	)
	return eris.Wrapf(err, "postgres: save document %s", m.DocID)
}

func (s *PostgresStore) GetDocument(ctx context.Context, docID string) (*DocumentRecord, error) {
	rec, err := scanDocument(s.pool.QueryRow(ctx,
		documentSelect+` WHERE doc_id = $1`, docID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get document %s", docID)
	}
	return rec, nil
}

func (s *PostgresStore) ListFlagged(ctx context.Context, limit int) ([]DocumentRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		documentSelect+` WHERE requires_review ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list flagged")
	}
	defer rows.Close()

	var out []DocumentRecord
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan flagged document")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list flagged iterate")
}

const documentSelect = `SELECT doc_id, filename, COALESCE(path, ''), file_hash, doc_type, classification_confidence,
	COALESCE(fund_id, ''), COALESCE(investor_id, ''), as_of_date, COALESCE(currency, ''),
	extraction, validation, overall_confidence, requires_review, status, created_at, updated_at
	FROM pe_document`

// scanDocument works for both pgx.Row and pgx.Rows.
func scanDocument(row pgx.Row) (*DocumentRecord, error) {
	var rec DocumentRecord
	var docType string
	var extractionJSON, validationJSON []byte
	if err := row.Scan(&rec.Meta.DocID, &rec.Meta.Filename, &rec.Meta.Path, &rec.Meta.FileHash,
		&docType, &rec.Meta.ClassifyConfidence, &rec.Meta.FundID, &rec.Meta.InvestorID,
		&rec.Meta.AsOfDate, &rec.Meta.ReportingCurrency,
		&extractionJSON, &validationJSON, &rec.OverallConfidence, &rec.RequiresReview,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Meta.DocType = model.DocType(docType)
	if len(extractionJSON) > 0 {
		rec.Extraction = &model.ExtractedDocument{}
		if err := json.Unmarshal(extractionJSON, rec.Extraction); err != nil {
			return nil, eris.Wrap(err, "unmarshal extraction")
		}
	}
	if len(validationJSON) > 0 {
		rec.Validation = &model.ValidationResult{}
		if err := json.Unmarshal(validationJSON, rec.Validation); err != nil {
			return nil, eris.Wrap(err, "unmarshal validation")
		}
	}
	return &rec, nil
}

func (s *PostgresStore) UpsertNAVObservation(ctx context.Context, obs model.NAVObservation) error {
	scenario := obs.Scenario
	if scenario == "" {
		scenario = "ACTUAL"
	}
	version := obs.VersionNo
	if version <= 0 {
		version = 1
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pe_nav_observation (fund_id, investor_id, scope, nav_value, as_of_date, scenario, version_no, doc_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (fund_id, investor_id, as_of_date, scenario, version_no) DO UPDATE SET
		   nav_value = $4, scope = $3, doc_id = $8`,
		obs.FundID, obs.InvestorID, string(obs.Scope), obs.NAV, obs.AsOfDate, scenario, version, obs.DocID,
	)
	return eris.Wrapf(err, "postgres: upsert nav %s@%s", obs.FundID, obs.AsOfDate.Format("2006-01-02"))
}

func (s *PostgresStore) InsertCashflows(ctx context.Context, flows []model.Cashflow) error {
	if len(flows) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(flows))
	for _, f := range flows {
		rows = append(rows, []any{
			uuid.New().String(), f.FundID, f.InvestorID, string(f.FlowType), f.Amount, f.FlowDate, f.DocID,
		})
	}
	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "pe_cashflow",
		Columns:      []string{"id", "fund_id", "investor_id", "flow_type", "amount", "flow_date", "doc_id"},
		ConflictKeys: []string{"fund_id", "investor_id", "flow_type", "flow_date", "doc_id"},
		UpdateCols:   []string{"amount"},
	}, rows)
	return eris.Wrap(err, "postgres: insert cashflows")
}

func (s *PostgresStore) UpsertCapitalAccount(ctx context.Context, fundID, investorID string, asOf time.Time, docID string, p *model.CapitalAccountPeriod) error {
	data, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal capital account")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO pe_capital_account (fund_id, investor_id, as_of_date, doc_id, data, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (fund_id, investor_id, as_of_date) DO UPDATE SET doc_id = $4, data = $5, updated_at = $6`,
		fundID, investorID, asOf, docID, data, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert capital account %s/%s", fundID, investorID)
}

func (s *PostgresStore) AppendAudit(ctx context.Context, docID string, entries []model.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		var altJSON []byte
		if len(e.Alternatives) > 0 {
			var err error
			altJSON, err = json.Marshal(e.Alternatives)
			if err != nil {
				return eris.Wrap(err, "postgres: marshal alternatives")
			}
		}
		rows = append(rows, []any{
			uuid.New().String(), docID, e.FieldName, e.Value, string(e.Method),
			e.Confidence, altJSON, e.CorrectedFrom, now,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "pe_extraction_audit",
		[]string{"id", "doc_id", "field_name", "value", "method", "confidence", "alternatives", "corrected_from", "created_at"},
		rows)
	return eris.Wrapf(err, "postgres: append audit %s", docID)
}

func (s *PostgresStore) LatestNAVBefore(ctx context.Context, fundID, investorID string, before time.Time) (*model.NAVObservation, error) {
	var obs model.NAVObservation
	var scope string
	err := s.pool.QueryRow(ctx,
		`SELECT fund_id, investor_id, scope, nav_value, as_of_date, scenario, version_no, COALESCE(doc_id, '')
		 FROM pe_nav_observation
		 WHERE fund_id = $1 AND investor_id = $2 AND as_of_date < $3
		 ORDER BY as_of_date DESC, version_no DESC LIMIT 1`,
		fundID, investorID, before,
	).Scan(&obs.FundID, &obs.InvestorID, &scope, &obs.NAV, &obs.AsOfDate, &obs.Scenario, &obs.VersionNo, &obs.DocID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: latest nav")
	}
	obs.Scope = model.NAVScope(scope)
	return &obs, nil
}

func (s *PostgresStore) CashflowsBetween(ctx context.Context, fundID, investorID string, from, to time.Time) ([]model.Cashflow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT fund_id, investor_id, flow_type, amount, flow_date, COALESCE(doc_id, '')
		 FROM pe_cashflow
		 WHERE fund_id = $1 AND investor_id = $2 AND flow_date > $3 AND flow_date <= $4
		 ORDER BY flow_date`,
		fundID, investorID, from, to,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: cashflows between")
	}
	defer rows.Close()

	var out []model.Cashflow
	for rows.Next() {
		var f model.Cashflow
		var ft string
		if err := rows.Scan(&f.FundID, &f.InvestorID, &ft, &f.Amount, &f.FlowDate, &f.DocID); err != nil {
			return nil, eris.Wrap(err, "postgres: scan cashflow")
		}
		f.FlowType = model.FlowType(ft)
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: cashflows iterate")
}

func (s *PostgresStore) RegisterJob(ctx context.Context, path, fileHash string) (*model.Job, bool, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO pe_job (id, path, file_hash, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (file_hash) DO NOTHING`,
		id, path, fileHash, string(model.JobQueued), now, now,
	)
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: register job %s", path)
	}
	if tag.RowsAffected() == 0 {
		// Hash already registered; return the existing ledger row.
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

func (s *PostgresStore) jobByHash(ctx context.Context, fileHash string) (*model.Job, error) {
	var j model.Job
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT id, path, file_hash, status, COALESCE(doc_id, ''), COALESCE(message, ''), created_at, updated_at
		 FROM pe_job WHERE file_hash = $1`,
		fileHash,
	).Scan(&j.ID, &j.Path, &j.FileHash, &status, &j.DocID, &j.Message, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: job by hash")
	}
	j.Status = model.JobStatus(status)
	return &j, nil
}

func (s *PostgresStore) UpdateJob(ctx context.Context, id string, status model.JobStatus, docID, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE pe_job SET status = $1, doc_id = $2, message = $3, updated_at = $4 WHERE id = $5`,
		string(status), docID, message, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT id, path, file_hash, status, COALESCE(doc_id, ''), COALESCE(message, ''), created_at, updated_at FROM pe_job WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var j model.Job
		var status string
		if err := rows.Scan(&j.ID, &j.Path, &j.FileHash, &status, &j.DocID, &j.Message, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		j.Status = model.JobStatus(status)
		jobs = append(jobs, j)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: list jobs iterate")
}

func (s *PostgresStore) ResetJobs(ctx context.Context, statuses []model.JobStatus) (int, error) {
	if len(statuses) == 0 {
		statuses = []model.JobStatus{model.JobError, model.JobFlagged}
	}
	in := make([]string, len(statuses))
	for i, st := range statuses {
		in[i] = string(st)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE pe_job SET status = $1, message = '', updated_at = $2 WHERE status = ANY($3)`,
		string(model.JobQueued), time.Now().UTC(), in,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: reset jobs")
	}
	return int(tag.RowsAffected()), nil
}
