// Package vector maintains the embedded semantic index over processed
// documents. It uses chromem-go for persistence, so no external vector
// database service is required.
package vector

import (
	"context"
	"fmt"
	"os"

	chromem "github.com/philippgille/chromem-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fundsight/pedocs/internal/model"
)

const collectionName = "pedocs"

// Result is one semantic search hit.
type Result struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Store wraps a persistent chromem collection of document chunks.
type Store struct {
	db   *chromem.DB
	coll *chromem.Collection
}

// New opens (or creates) the index at path. embed may be nil, in which case
// chromem's default embedding backend is used.
func New(path string, embed chromem.EmbeddingFunc) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, eris.Wrapf(err, "vector: create dir %s", path)
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, eris.Wrap(err, "vector: open db")
	}
	coll, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: collection %s", collectionName)
	}
	return &Store{db: db, coll: coll}, nil
}

// IndexDocument chunks the document text and adds every chunk with its
// identifying metadata. Chunk IDs are deterministic per document, so
// re-indexing a document overwrites its previous chunks.
func (s *Store) IndexDocument(ctx context.Context, meta model.DocumentMeta, text string) (int, error) {
	chunks := Chunk(text)
	if len(chunks) == 0 {
		return 0, nil
	}

	md := map[string]string{
		"doc_id":   meta.DocID,
		"doc_type": string(meta.DocType),
		"filename": meta.Filename,
	}
	if meta.FundID != "" {
		md["fund_id"] = meta.FundID
	}
	if meta.InvestorID != "" {
		md["investor_id"] = meta.InvestorID
	}
	if meta.AsOfDate != nil {
		md["as_of_date"] = meta.AsOfDate.Format("2006-01-02")
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, c := range chunks {
		docs = append(docs, chromem.Document{
			ID:       fmt.Sprintf("%s#%d", meta.DocID, i),
			Content:  c,
			Metadata: md,
		})
	}
	if err := s.coll.AddDocuments(ctx, docs, 2); err != nil {
		return 0, eris.Wrapf(err, "vector: index %s", meta.DocID)
	}

	zap.L().Debug("vector: indexed document",
		zap.String("doc_id", meta.DocID), zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// Search runs a similarity query. filters restricts by chunk metadata, e.g.
// {"doc_type": "capital_account_statement"} or {"fund_id": "F-001"}.
func (s *Store) Search(ctx context.Context, query string, k int, filters map[string]string) ([]Result, error) {
	if query == "" {
		return nil, eris.New("vector: empty query")
	}
	if k <= 0 {
		k = 10
	}
	// chromem requires nResults <= document count.
	if n := s.coll.Count(); n == 0 {
		return nil, nil
	} else if k > n {
		k = n
	}

	hits, err := s.coll.Query(ctx, query, k, filters, nil)
	if err != nil {
		return nil, eris.Wrap(err, "vector: query")
	}

	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		out = append(out, Result{
			ID:       h.ID,
			Content:  h.Content,
			Score:    h.Similarity,
			Metadata: h.Metadata,
		})
	}
	return out, nil
}

// Count returns the number of indexed chunks.
func (s *Store) Count() int { return s.coll.Count() }
