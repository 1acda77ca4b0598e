// Package pipeline orchestrates document processing: classify, extract,
// reconcile, validate, then decide whether the document's facts are stored or
// the document is flagged for human review. Every document leaves a ledger
// row and an audit trail regardless of outcome.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fundsight/pedocs/internal/classify"
	"github.com/fundsight/pedocs/internal/extract"
	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/model"
	"github.com/fundsight/pedocs/internal/parse"
	"github.com/fundsight/pedocs/internal/store"
	"github.com/fundsight/pedocs/internal/validate"
	"github.com/fundsight/pedocs/internal/vector"
)

// Processing states, recorded on outcomes and in log lines.
const (
	StateClassifying = "CLASSIFYING"
	StateExtracting  = "EXTRACTING"
	StateValidating  = "VALIDATING"
	StateDeciding    = "DECIDING"
	StateStoring     = "STORING"
	StateDone        = "DONE"
	StateSkipped     = "SKIPPED"
	StateFlagged     = "FLAGGED"
	StateFailed      = "FAILED"
)

// Options tunes processing behavior.
type Options struct {
	// MaxConcurrentDocs bounds the batch fan-out.
	MaxConcurrentDocs int
	// ReviewThreshold: overall confidence below this flags the document.
	ReviewThreshold float64
	// StoreThreshold: an invalid document still has its record persisted,
	// but facts are only stored at or above this confidence.
	StoreThreshold float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		MaxConcurrentDocs: 4,
		ReviewThreshold:   0.85,
		StoreThreshold:    0.7,
	}
}

// Outcome summarizes one document's trip through the pipeline.
type Outcome struct {
	DocID                string        `json:"doc_id"`
	Path                 string        `json:"path"`
	DocType              model.DocType `json:"doc_type"`
	State                string        `json:"state"`
	ExtractionConfidence float64       `json:"extraction_confidence"`
	ValidationConfidence float64       `json:"validation_confidence"`
	OverallConfidence    float64       `json:"overall_confidence"`
	RequiresReview       bool          `json:"requires_review"`
	Stored               bool          `json:"stored"`
	Issues               []model.Issue `json:"issues,omitempty"`
	Err                  string        `json:"error,omitempty"`
}

// Processor runs documents through the full pipeline.
type Processor struct {
	classifier *classify.Classifier
	lib        *fieldlib.Library
	registry   *extract.Registry
	validator  *validate.Validator
	store      store.Store
	index      *vector.Store // nil disables semantic indexing
	opts       Options

	fundID     string
	investorID string
}

// New builds a Processor. index may be nil.
func New(classifier *classify.Classifier, lib *fieldlib.Library, registry *extract.Registry, validator *validate.Validator, st store.Store, index *vector.Store, opts Options) *Processor {
	if opts.MaxConcurrentDocs <= 0 {
		opts.MaxConcurrentDocs = DefaultOptions().MaxConcurrentDocs
	}
	if opts.ReviewThreshold == 0 {
		opts.ReviewThreshold = DefaultOptions().ReviewThreshold
	}
	if opts.StoreThreshold == 0 {
		opts.StoreThreshold = DefaultOptions().StoreThreshold
	}
	return &Processor{
		classifier: classifier,
		lib:        lib,
		registry:   registry,
		validator:  validator,
		store:      st,
		index:      index,
		opts:       opts,
	}
}

// SetIdentity sets the fund and investor IDs attributed to documents
// processed from files. Facts are only persisted for documents with a fund
// identity.
func (p *Processor) SetIdentity(fundID, investorID string) {
	p.fundID = fundID
	p.investorID = investorID
}

// ProcessPath processes one file or every supported file under a directory.
func (p *Processor) ProcessPath(ctx context.Context, path string) ([]Outcome, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: stat %s", path)
	}
	if !info.IsDir() {
		out := p.ProcessFile(ctx, path)
		return []Outcome{out}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(fp string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(fp)) {
		case ".txt", ".text", ".csv", ".xlsx":
			files = append(files, fp)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: walk %s", path)
	}

	outcomes := make([]Outcome, len(files))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxConcurrentDocs)
	for i, f := range files {
		g.Go(func() error {
			out := p.ProcessFile(gctx, f)
			mu.Lock()
			outcomes[i] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// ProcessFile registers the file in the job ledger (deduplicating on content
// hash) and processes it. A file whose hash already completed is skipped.
func (p *Processor) ProcessFile(ctx context.Context, path string) Outcome {
	out := Outcome{Path: path, State: StateFailed}

	hash, err := parse.HashFile(path)
	if err != nil {
		out.Err = err.Error()
		return out
	}

	job, fresh, err := p.store.RegisterJob(ctx, path, hash)
	if err != nil {
		out.Err = err.Error()
		return out
	}
	if !fresh && job.Status != model.JobQueued {
		zap.L().Info("pipeline: file already processed",
			zap.String("path", path), zap.String("status", string(job.Status)))
		out.State = StateSkipped
		out.DocID = job.DocID
		return out
	}

	if err := p.store.UpdateJob(ctx, job.ID, model.JobRunning, "", ""); err != nil {
		out.Err = err.Error()
		return out
	}

	doc, err := parse.File(path)
	if err != nil {
		p.finishJob(ctx, job.ID, model.JobError, "", err.Error())
		out.Err = err.Error()
		return out
	}

	meta := model.DocumentMeta{
		DocID:      uuid.New().String(),
		Filename:   filepath.Base(path),
		Path:       path,
		FileHash:   hash,
		FundID:     p.fundID,
		InvestorID: p.investorID,
	}
	out = p.ProcessDocument(ctx, meta, doc)
	out.Path = path

	switch out.State {
	case StateDone:
		p.finishJob(ctx, job.ID, model.JobDone, out.DocID, "")
	case StateFlagged:
		p.finishJob(ctx, job.ID, model.JobFlagged, out.DocID, issueSummary(out.Issues))
	case StateSkipped:
		p.finishJob(ctx, job.ID, model.JobSkipped, out.DocID, string(out.DocType))
	default:
		p.finishJob(ctx, job.ID, model.JobError, out.DocID, out.Err)
	}
	return out
}

// ProcessDocument runs the pipeline on an already-parsed document. A panic in
// any stage is contained to this document.
func (p *Processor) ProcessDocument(ctx context.Context, meta model.DocumentMeta, doc model.ParsedDocument) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("pipeline: panic processing document",
				zap.String("doc_id", meta.DocID), zap.Any("panic", r))
			out = Outcome{DocID: meta.DocID, State: StateFailed, Err: fmt.Sprintf("panic: %v", r)}
		}
	}()

	out = Outcome{DocID: meta.DocID, State: StateClassifying}

	if meta.DocType == "" {
		dt, conf := p.classifier.Classify(meta.Filename, doc.Text)
		meta.DocType = dt
		meta.ClassifyConfidence = conf
	}
	md := classify.ExtractMetadata(doc.Text)
	if meta.AsOfDate == nil {
		meta.AsOfDate = md.AsOfDate
	}
	if meta.ReportingCurrency == "" {
		meta.ReportingCurrency = md.Currency
	}
	out.DocType = meta.DocType

	extractor, ok := p.registry.For(meta.DocType)
	if !ok {
		zap.L().Info("pipeline: no extractor for type, skipping",
			zap.String("doc_id", meta.DocID), zap.String("doc_type", string(meta.DocType)))
		out.State = StateSkipped
		return out
	}

	out.State = StateExtracting
	extracted, err := extractor.Extract(ctx, doc, meta)
	if err != nil {
		out.State = StateFailed
		out.Err = err.Error()
		return out
	}
	meta.AsOfDate = extracted.AsOfDate

	out.State = StateValidating
	validation := p.validator.Validate(ctx, extracted)

	out.State = StateDeciding
	decision := p.decide(extracted, validation)
	out.ExtractionConfidence = decision.extraction
	out.ValidationConfidence = validation.Confidence
	out.OverallConfidence = decision.overall
	out.RequiresReview = decision.requiresReview
	out.Issues = append(out.Issues, validation.Errors...)
	out.Issues = append(out.Issues, validation.Warnings...)

	out.State = StateStoring
	if err := p.persist(ctx, meta, extracted, validation, decision); err != nil {
		out.State = StateFailed
		out.Err = err.Error()
		return out
	}
	if err := p.store.AppendAudit(ctx, meta.DocID, extracted.Audit); err != nil {
		out.State = StateFailed
		out.Err = err.Error()
		return out
	}
	out.Stored = decision.storeFacts

	if p.index != nil {
		if _, err := p.index.IndexDocument(ctx, meta, doc.Text); err != nil {
			// Indexing is best-effort; the facts are already durable.
			zap.L().Warn("pipeline: index failed",
				zap.String("doc_id", meta.DocID), zap.Error(err))
		}
	}

	if decision.requiresReview {
		out.State = StateFlagged
	} else {
		out.State = StateDone
	}

	zap.L().Info("pipeline: document processed",
		zap.String("doc_id", meta.DocID),
		zap.String("doc_type", string(meta.DocType)),
		zap.String("state", out.State),
		zap.Float64("overall_confidence", out.OverallConfidence),
		zap.Bool("stored", out.Stored))
	return out
}

func (p *Processor) finishJob(ctx context.Context, jobID string, status model.JobStatus, docID, message string) {
	if err := p.store.UpdateJob(ctx, jobID, status, docID, message); err != nil {
		zap.L().Error("pipeline: update job failed",
			zap.String("job_id", jobID), zap.Error(err))
	}
}

func issueSummary(issues []model.Issue) string {
	if len(issues) == 0 {
		return ""
	}
	codes := make([]string, 0, len(issues))
	for _, i := range issues {
		codes = append(codes, i.Code)
	}
	return strings.Join(codes, ",")
}
