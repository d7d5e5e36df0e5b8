package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tsuyoshi-3110/concierge/internal/retrieval"
)

// Retriever is the semantic retrieval capability this adapter wraps.
// *retrieval.Retriever satisfies it.
type Retriever interface {
	Retrieve(ctx context.Context, queryText, tenantID string) ([]retrieval.Hit, error)
}

// SemanticAdapter renders fused-score retrieval hits as the
// lowest-priority knowledge passages. Hit count and per-hit size are
// already bounded by the retriever's top-K and chunking, so no further
// truncation happens here.
type SemanticAdapter struct {
	retriever Retriever
	logger    *slog.Logger
}

// NewSemantic creates the semantic adapter.
func NewSemantic(retriever Retriever, logger *slog.Logger) *SemanticAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SemanticAdapter{retriever: retriever, logger: logger}
}

// Kind implements Adapter.
func (*SemanticAdapter) Kind() Kind { return KindSemantic }

// Fetch implements Adapter.
func (a *SemanticAdapter) Fetch(ctx context.Context, tenantID, query string) ([]Passage, error) {
	passages, _, err := a.FetchScored(ctx, tenantID, query)
	return passages, err
}

// FetchScored is Fetch plus the underlying hits, which carry the fused
// and per-signal scores the pipeline reports in its answer metadata.
func (a *SemanticAdapter) FetchScored(ctx context.Context, tenantID, query string) ([]Passage, []retrieval.Hit, error) {
	hits, err := a.retriever.Retrieve(ctx, query, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: semantic: %w", ErrUnavailable, err)
	}

	passages := make([]Passage, 0, len(hits))
	for _, hit := range hits {
		passages = append(passages, Passage{
			Kind:     KindSemantic,
			Label:    "関連情報",
			Text:     hit.Content,
			Priority: PrioritySemantic,
		})
	}
	return passages, hits, nil
}
