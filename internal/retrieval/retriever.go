// Package retrieval implements semantic retrieval with score fusion.
//
// The semantic index exposes a vector similarity per candidate; this
// package computes a lexical-overlap subscore in-process and fuses the
// two into one ranking score. Candidates below the configured minimum
// are excluded entirely, the rest are sorted descending by fused score
// (ties keep index order) and capped at top-K.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/knowledge"
)

// oversample widens the index query beyond top-K so lexical fusion can
// promote candidates the vector ordering alone would have cut.
const oversample = 3

// Embedder produces the query embedding. Implemented by internal/llm;
// tests substitute a fixed-vector fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index is the semantic-index search capability the retriever consumes.
// *knowledge.Store satisfies it.
type Index interface {
	SearchChunks(ctx context.Context, tenantID string, embedding []float32, limit int) ([]knowledge.Candidate, error)
}

// Hit is one retrieval result with its fused score and both subscores.
type Hit struct {
	ID      string
	Content string
	Score   float64
	Vector  float64
	Lexical float64
}

// Retriever fuses vector and lexical signals over a semantic index.
type Retriever struct {
	embedder Embedder
	index    Index
	cfg      config.Retrieval
	logger   *slog.Logger
}

// New creates a Retriever. A nil logger falls back to slog.Default().
func New(embedder Embedder, index Index, cfg config.Retrieval, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embedder: embedder, index: index, cfg: cfg, logger: logger}
}

// Retrieve returns the top-K fused-score hits for the query, all scoring
// at least the configured minimum. Ties in fused score keep candidate
// insertion order.
func (r *Retriever) Retrieve(ctx context.Context, queryText, tenantID string) ([]Hit, error) {
	embedding, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := r.index.SearchChunks(ctx, tenantID, embedding, r.cfg.TopK*oversample)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	queryTokens := tokenize(queryText)

	hits := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		lexical := overlap(queryTokens, tokenize(c.Content))
		fused := r.cfg.VectorWeight*c.Similarity + r.cfg.LexicalWeight*lexical
		if fused < r.cfg.MinScore {
			continue
		}
		hits = append(hits, Hit{
			ID:      c.ID,
			Content: c.Content,
			Score:   fused,
			Vector:  c.Similarity,
			Lexical: lexical,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > r.cfg.TopK {
		hits = hits[:r.cfg.TopK]
	}

	r.logger.Debug("retrieval",
		"tenant", tenantID,
		"candidates", len(candidates),
		"hits", len(hits))
	return hits, nil
}
