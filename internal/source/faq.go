package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/knowledge"
)

// FAQStore is the repository capability the FAQ adapter consumes.
type FAQStore interface {
	FAQs(ctx context.Context, tenantID string, limit int) ([]knowledge.FAQ, error)
}

// FAQAdapter serves tenant-authored Q&A pairs as general-purpose
// knowledge.
type FAQAdapter struct {
	store  FAQStore
	policy config.Policy
	logger *slog.Logger
}

// NewFAQ creates the FAQ adapter.
func NewFAQ(store FAQStore, policy config.Policy, logger *slog.Logger) *FAQAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FAQAdapter{store: store, policy: policy, logger: logger}
}

// Kind implements Adapter.
func (*FAQAdapter) Kind() Kind { return KindFAQ }

// Fetch returns up to the configured number of FAQ passages, each
// truncated to the per-item rune cap. The query is unused; FAQ knowledge
// is static per tenant.
func (a *FAQAdapter) Fetch(ctx context.Context, tenantID, _ string) ([]Passage, error) {
	faqs, err := a.store.FAQs(ctx, tenantID, a.policy.FAQLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: faq: %w", ErrUnavailable, err)
	}

	passages := make([]Passage, 0, len(faqs))
	for _, f := range faqs {
		text := fmt.Sprintf("Q: %s\nA: %s", f.Question, f.Answer)
		passages = append(passages, Passage{
			Kind:     KindFAQ,
			Label:    "よくある質問",
			Text:     truncateRunes(text, a.policy.FAQItemRunes),
			Priority: PriorityGeneral,
		})
	}
	return passages, nil
}
