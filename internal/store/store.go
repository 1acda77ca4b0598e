// Package store persists extracted facts, documents, the audit trail and the
// ingestion job ledger. Two backends implement the same interface: Postgres
// via pgxpool for shared deployments and SQLite for single-operator use.
package store

import (
	"context"
	"time"

	"github.com/fundsight/pedocs/internal/model"
)

// DocumentRecord is one persisted document with its extraction and
// validation payloads. Status is STORED or FLAGGED.
type DocumentRecord struct {
	Meta              model.DocumentMeta       `json:"meta"`
	Extraction        *model.ExtractedDocument `json:"extraction,omitempty"`
	Validation        *model.ValidationResult  `json:"validation,omitempty"`
	OverallConfidence float64                  `json:"overall_confidence"`
	RequiresReview    bool                     `json:"requires_review"`
	Status            string                   `json:"status"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// Document statuses.
const (
	DocStatusStored  = "STORED"
	DocStatusFlagged = "FLAGGED"
)

// JobFilter specifies criteria for listing ledger jobs.
type JobFilter struct {
	Status model.JobStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
}

// Store defines the persistence interface for the extraction pipeline.
// It also satisfies validate.History for continuity rules.
type Store interface {
	// Reference data
	UpsertFund(ctx context.Context, f model.Fund) error
	GetFund(ctx context.Context, fundID string) (*model.Fund, error)
	UpsertInvestor(ctx context.Context, inv model.Investor) error

	// Documents
	SaveDocument(ctx context.Context, rec *DocumentRecord) error
	GetDocument(ctx context.Context, docID string) (*DocumentRecord, error)
	ListFlagged(ctx context.Context, limit int) ([]DocumentRecord, error)

	// Facts
	UpsertNAVObservation(ctx context.Context, obs model.NAVObservation) error
	InsertCashflows(ctx context.Context, flows []model.Cashflow) error
	UpsertCapitalAccount(ctx context.Context, fundID, investorID string, asOf time.Time, docID string, p *model.CapitalAccountPeriod) error

	// Audit trail, append-only
	AppendAudit(ctx context.Context, docID string, entries []model.AuditEntry) error

	// History
	LatestNAVBefore(ctx context.Context, fundID, investorID string, before time.Time) (*model.NAVObservation, error)
	CashflowsBetween(ctx context.Context, fundID, investorID string, from, to time.Time) ([]model.Cashflow, error)

	// Job ledger. RegisterJob is at-most-once per file hash; the bool is
	// false when the hash is already registered.
	RegisterJob(ctx context.Context, path, fileHash string) (*model.Job, bool, error)
	UpdateJob(ctx context.Context, id string, status model.JobStatus, docID, message string) error
	ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error)
	ResetJobs(ctx context.Context, statuses []model.JobStatus) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
