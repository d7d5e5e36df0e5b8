package source

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/knowledge"
)

// StockStore is the repository capability the stock adapter consumes.
type StockStore interface {
	SearchStock(ctx context.Context, tenantID, term string, limit int) ([]knowledge.StockItem, error)
	ListStock(ctx context.Context, tenantID string, limit int) ([]knowledge.StockItem, error)
}

// StockAdapter answers availability questions with a three-stage
// fallback:
//
//  1. exact-term search with the raw query
//  2. search with the query cleaned of quantity/availability phrasing
//  3. an unranked snapshot of all items, ordered in_stock → low → out →
//     unset and capped
//
// The snapshot guarantees the model always has something concrete to
// ground an availability answer in, even when the item name in the
// question matches nothing.
type StockAdapter struct {
	store  StockStore
	policy config.Policy
	logger *slog.Logger
}

// NewStock creates the stock adapter.
func NewStock(store StockStore, policy config.Policy, logger *slog.Logger) *StockAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StockAdapter{store: store, policy: policy, logger: logger}
}

// Kind implements Adapter.
func (*StockAdapter) Kind() Kind { return KindStock }

// Fetch implements Adapter with the three-stage fallback policy.
func (a *StockAdapter) Fetch(ctx context.Context, tenantID, query string) ([]Passage, error) {
	term := strings.TrimSpace(query)
	items, err := a.store.SearchStock(ctx, tenantID, term, a.policy.StockLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: stock search: %w", ErrUnavailable, err)
	}

	if len(items) == 0 {
		if cleaned := CleanStockQuery(term); cleaned != "" && cleaned != term {
			items, err = a.store.SearchStock(ctx, tenantID, cleaned, a.policy.StockLimit)
			if err != nil {
				return nil, fmt.Errorf("%w: stock search: %w", ErrUnavailable, err)
			}
		}
	}

	if len(items) == 0 {
		items, err = a.store.ListStock(ctx, tenantID, a.policy.StockSnapshotLimit)
		if err != nil {
			return nil, fmt.Errorf("%w: stock snapshot: %w", ErrUnavailable, err)
		}
		a.logger.Debug("stock fallback snapshot", "tenant", tenantID, "items", len(items))
	}

	passages := make([]Passage, 0, len(items))
	for _, item := range items {
		text := fmt.Sprintf("%s（%s）", item.Name, item.Status.Label())
		if item.Note != "" {
			text += " " + item.Note
		}
		passages = append(passages, Passage{
			Kind:     KindStock,
			Label:    "在庫状況",
			Text:     truncateRunes(text, a.policy.StockItemRunes),
			Priority: PriorityIntent,
		})
	}
	return passages, nil
}

// stockStopPatterns strip quantity/availability phrasing so the residue
// is the item name the user is actually asking about.
var stockStopPatterns = []*regexp.Regexp{
	regexp.MustCompile(`在庫|入荷|品切れ|売り切れ|取り扱い|取扱`),
	regexp.MustCompile(`あります(か)?|ありませんか|残っていますか|売っていますか`),
	regexp.MustCompile(`ください|ほしい|欲しい|できますか|でしょうか`),
	regexp.MustCompile(`\d+(個|本|枚|つ|点)`),
	regexp.MustCompile(`(?i)\b(in|stock|available|availability|any|still|have|do|you|is|there|sold|out|carry|of)\b`),
	regexp.MustCompile(`[?？。、!！]`),
}

// trailingParticle strips the particle left dangling once the
// availability phrasing after it is removed (シャンプーの在庫 → シャンプーの).
var trailingParticle = regexp.MustCompile(`(の|を|が|は|も)$`)

// CleanStockQuery removes availability phrasing from a stock question,
// leaving the candidate item term. Width-folded so full-width counts
// behave like half-width ones. Returns "" when nothing survives.
func CleanStockQuery(query string) string {
	cleaned := width.Fold.String(query)
	for _, p := range stockStopPatterns {
		cleaned = p.ReplaceAllString(cleaned, " ")
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return trailingParticle.ReplaceAllString(cleaned, "")
}
