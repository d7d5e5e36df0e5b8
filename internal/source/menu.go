package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/knowledge"
)

// MenuStore is the repository capability the catalog adapter consumes.
type MenuStore interface {
	MenuItems(ctx context.Context, tenantID string, limit int) ([]knowledge.MenuItem, error)
}

// MenuAdapter extracts the tenant's service/product catalog as
// general-purpose knowledge lines.
type MenuAdapter struct {
	store  MenuStore
	policy config.Policy
	logger *slog.Logger
}

// NewMenu creates the catalog adapter.
func NewMenu(store MenuStore, policy config.Policy, logger *slog.Logger) *MenuAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuAdapter{store: store, policy: policy, logger: logger}
}

// Kind implements Adapter.
func (*MenuAdapter) Kind() Kind { return KindMenu }

// Fetch returns one passage per catalog line, capped and truncated per
// the tenant policy.
func (a *MenuAdapter) Fetch(ctx context.Context, tenantID, _ string) ([]Passage, error) {
	items, err := a.store.MenuItems(ctx, tenantID, a.policy.MenuLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: menu: %w", ErrUnavailable, err)
	}

	passages := make([]Passage, 0, len(items))
	for _, item := range items {
		passages = append(passages, Passage{
			Kind:     KindMenu,
			Label:    "メニュー",
			Text:     truncateRunes(formatMenuLine(item), a.policy.MenuItemRunes),
			Priority: PriorityGeneral,
		})
	}
	return passages, nil
}

func formatMenuLine(item knowledge.MenuItem) string {
	var b strings.Builder
	b.WriteString(item.Name)
	if item.PriceYen > 0 {
		fmt.Fprintf(&b, " — ¥%d", item.PriceYen)
	}
	if item.Description != "" {
		b.WriteString(" ")
		b.WriteString(item.Description)
	}
	return b.String()
}
