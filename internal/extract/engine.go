package extract

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/model"
	"github.com/fundsight/pedocs/internal/reconcile"
	"github.com/fundsight/pedocs/pkg/anthropic"
)

// llmGateThreshold is the reconciled confidence below which a required field
// still triggers the LLM pass.
const llmGateThreshold = 0.85

// fieldConcurrency bounds the per-field strategy fan-out within one document.
const fieldConcurrency = 8

// Engine runs every applicable strategy per field, reconciles the candidates
// and keeps the audit trail. The LLM pass is lazy: it runs only when the free
// strategies leave a required field missing or below the gate threshold, and
// then covers the whole document in a single call.
type Engine struct {
	lib *fieldlib.Library
	llm *LLMExtractor

	mu    sync.Mutex
	usage anthropic.TokenUsage
}

// NewEngine builds an engine. llm may be nil, which disables the LLM pass.
func NewEngine(lib *fieldlib.Library, llm *LLMExtractor) *Engine {
	return &Engine{lib: lib, llm: llm}
}

// Usage returns the accumulated LLM token usage across documents.
func (e *Engine) Usage() anthropic.TokenUsage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usage
}

// ExtractFields resolves every catalog field for the document type and returns
// the reconciled results keyed by canonical name, plus the audit trail of all
// candidates considered.
func (e *Engine) ExtractFields(ctx context.Context, doc model.ParsedDocument, docType model.DocType) (map[string]model.ExtractionResult, []model.AuditEntry, error) {
	defs := e.lib.ForDocType(docType)
	if len(defs) == 0 {
		return map[string]model.ExtractionResult{}, nil, nil
	}

	candidates := make([][]model.ExtractionResult, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fieldConcurrency)
	for i := range defs {
		g.Go(func() error {
			candidates[i] = e.runFreeStrategies(gctx, doc, docType, &defs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if e.needsLLM(defs, candidates) {
		e.runLLMPass(ctx, doc, defs, candidates)
	}

	fields := make(map[string]model.ExtractionResult, len(defs))
	var audit []model.AuditEntry
	for i := range defs {
		cands := candidates[i]
		winner := reconcile.Reconcile(cands)
		for _, c := range cands {
			audit = append(audit, model.AuditEntry{
				FieldName:  c.FieldName,
				Value:      c.Value.Key(),
				Method:     c.Method,
				Confidence: c.Confidence,
			})
		}
		if winner == nil {
			continue
		}
		fields[winner.FieldName] = *winner
		audit = append(audit, model.AuditEntry{
			FieldName:    winner.FieldName,
			Value:        winner.Value.Key(),
			Method:       winner.Method,
			Confidence:   winner.Confidence,
			Alternatives: winner.Alternatives,
		})
	}

	sort.SliceStable(audit, func(a, b int) bool { return audit[a].FieldName < audit[b].FieldName })
	return fields, audit, nil
}

// runFreeStrategies applies the table, regex and composite strategies to one
// field. Strategy errors are logged and treated as "not found"; one broken
// pattern must not sink the document.
func (e *Engine) runFreeStrategies(ctx context.Context, doc model.ParsedDocument, docType model.DocType, def *fieldlib.FieldDef) []model.ExtractionResult {
	strategies := []Strategy{TableStrategy{}, RegexStrategy{}}
	if len(def.Components) > 0 {
		strategies = append(strategies, NewCompositeStrategy(e.lib, docType))
	}

	var out []model.ExtractionResult
	for _, s := range strategies {
		r, err := s.Extract(ctx, doc, def)
		if err != nil {
			zap.L().Warn("extract: strategy failed",
				zap.String("field", def.Canonical),
				zap.String("method", string(s.Method())),
				zap.Error(err))
			continue
		}
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// needsLLM reports whether any required field is unresolved or reconciles
// below the gate threshold on free candidates alone.
func (e *Engine) needsLLM(defs []fieldlib.FieldDef, candidates [][]model.ExtractionResult) bool {
	if e.llm == nil {
		return false
	}
	for i := range defs {
		if !defs[i].Required {
			continue
		}
		winner := reconcile.Reconcile(candidates[i])
		if winner == nil || winner.Confidence < llmGateThreshold {
			return true
		}
	}
	return false
}

// runLLMPass runs the single document-level LLM call and folds its answers
// into the candidate pools. LLM failure degrades to free-strategy results.
func (e *Engine) runLLMPass(ctx context.Context, doc model.ParsedDocument, defs []fieldlib.FieldDef, candidates [][]model.ExtractionResult) {
	results, usage, err := e.llm.ExtractFields(ctx, doc, defs)

	e.mu.Lock()
	e.usage.Add(usage)
	e.mu.Unlock()

	if err != nil {
		zap.L().Warn("extract: llm pass failed", zap.Error(err))
		return
	}

	byName := make(map[string]int, len(defs))
	for i := range defs {
		byName[defs[i].Canonical] = i
	}
	for _, r := range results {
		if i, ok := byName[r.FieldName]; ok {
			candidates[i] = append(candidates[i], r)
		}
	}
}
