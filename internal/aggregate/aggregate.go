// Package aggregate fans out to the knowledge source adapters and fuses
// their passages into one bounded, deterministically ordered context
// block.
//
// Adapter calls enabled by the intent flags run concurrently; the
// aggregator fans in before returning, so composition never starts with
// a fetch still in flight. Output order is a property of priority class,
// never of completion order: intent-triggered groups (hours, stock) come
// first, general groups (FAQ, menu) next, semantic retrieval last. The
// same order governs truncation — when the final block would exceed the
// configured budget, passages are dropped from the tail, so
// intent-triggered content always survives over general content.
//
// No adapter failure aborts aggregation: unavailable sources degrade to
// empty groups and an all-empty context is a valid terminal state.
package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/intent"
	"github.com/tsuyoshi-3110/concierge/internal/retrieval"
	"github.com/tsuyoshi-3110/concierge/internal/source"
)

// Semantic is the scored fetch capability of the semantic adapter.
// *source.SemanticAdapter satisfies it.
type Semantic interface {
	FetchScored(ctx context.Context, tenantID, query string) ([]source.Passage, []retrieval.Hit, error)
}

// Group is one source's passages under its section label.
type Group struct {
	Kind     source.Kind
	Label    string
	Passages []source.Passage
}

// Context is the aggregated knowledge for one query. Built fresh per
// query and discarded after the composer consumes it; never cached
// across queries.
type Context struct {
	// Groups in fixed priority order, empty groups omitted.
	Groups []Group

	// Hits are the semantic retrieval results, kept for answer metadata.
	Hits []retrieval.Hit

	// HoursKnown reports whether a usable schedule was found. Only
	// meaningful when the hours intent fired.
	HoursKnown bool
}

// Empty reports whether no source contributed any passage.
func (c Context) Empty() bool {
	return len(c.Groups) == 0
}

// Lines counts the passages that survived aggregation.
func (c Context) Lines() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Passages)
	}
	return n
}

// Render joins the groups into the knowledge block, one section header
// per group.
func (c Context) Render() string {
	var b strings.Builder
	for i, g := range c.Groups {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("### ")
		b.WriteString(g.Label)
		for _, p := range g.Passages {
			b.WriteString("\n")
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Aggregator owns the adapter set for one tenant policy.
type Aggregator struct {
	hours    source.Adapter
	stock    source.Adapter
	faq      source.Adapter
	menu     source.Adapter
	semantic Semantic
	policy   config.Policy
	logger   *slog.Logger
}

// New creates an Aggregator. A nil logger falls back to slog.Default().
func New(hours, stock, faq, menu source.Adapter, semantic Semantic, policy config.Policy, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		hours:    hours,
		stock:    stock,
		faq:      faq,
		menu:     menu,
		semantic: semantic,
		policy:   policy,
		logger:   logger,
	}
}

// Aggregate runs the intent-gated adapter fan-out and assembles the
// bounded knowledge context. It never fails: every source error is
// swallowed locally into an empty group.
func (a *Aggregator) Aggregate(ctx context.Context, tenantID, query string, flags intent.Flags) Context {
	var (
		hoursPassages    []source.Passage
		stockPassages    []source.Passage
		faqPassages      []source.Passage
		menuPassages     []source.Passage
		semanticPassages []source.Passage
		hits             []retrieval.Hit
		hoursKnown       bool
	)

	// Each goroutine writes only its own slot, so the fan-out needs no
	// locking. Fetch errors never propagate: errgroup is used purely as
	// a WaitGroup with context plumbing.
	g, gctx := errgroup.WithContext(ctx)

	if flags.Hours {
		g.Go(func() error {
			passages, err := a.fetch(gctx, a.hours, tenantID, query)
			if err == nil {
				hoursPassages = passages
				hoursKnown = len(passages) > 0
			} else if errors.Is(err, source.ErrNoSchedule) {
				hoursKnown = false
			}
			return nil
		})
	}
	if flags.Inventory {
		g.Go(func() error {
			stockPassages, _ = a.fetch(gctx, a.stock, tenantID, query)
			return nil
		})
	}
	g.Go(func() error {
		faqPassages, _ = a.fetch(gctx, a.faq, tenantID, query)
		return nil
	})
	g.Go(func() error {
		menuPassages, _ = a.fetch(gctx, a.menu, tenantID, query)
		return nil
	})
	g.Go(func() error {
		fetchCtx, cancel := context.WithTimeout(gctx, a.policy.AdapterTimeout)
		defer cancel()
		passages, scored, err := a.semantic.FetchScored(fetchCtx, tenantID, query)
		if err != nil {
			a.logger.Warn("knowledge source degraded", "kind", source.KindSemantic, "error", err)
			return nil
		}
		semanticPassages, hits = passages, scored
		return nil
	})

	_ = g.Wait()

	groups := buildGroups(
		Group{Kind: source.KindHours, Label: "営業時間", Passages: hoursPassages},
		Group{Kind: source.KindStock, Label: "在庫状況", Passages: stockPassages},
		Group{Kind: source.KindFAQ, Label: "よくある質問", Passages: faqPassages},
		Group{Kind: source.KindMenu, Label: "メニュー", Passages: menuPassages},
		Group{Kind: source.KindSemantic, Label: "関連情報", Passages: semanticPassages},
	)

	kctx := Context{
		Groups:     truncate(groups, a.policy.KnowledgeMaxRunes),
		Hits:       hits,
		HoursKnown: hoursKnown,
	}

	a.logger.Debug("aggregated knowledge",
		"tenant", tenantID,
		"groups", len(kctx.Groups),
		"lines", kctx.Lines(),
		"hours_known", kctx.HoursKnown)
	return kctx
}

// fetch runs one adapter under its own timeout and swallows failures.
func (a *Aggregator) fetch(ctx context.Context, adapter source.Adapter, tenantID, query string) ([]source.Passage, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.policy.AdapterTimeout)
	defer cancel()

	passages, err := adapter.Fetch(fetchCtx, tenantID, query)
	if err != nil {
		if !errors.Is(err, source.ErrNoSchedule) {
			a.logger.Warn("knowledge source degraded", "kind", adapter.Kind(), "error", err)
		}
		return nil, err
	}
	return passages, nil
}

// buildGroups keeps only non-empty groups, preserving the fixed order.
func buildGroups(groups ...Group) []Group {
	kept := make([]Group, 0, len(groups))
	for _, g := range groups {
		if len(g.Passages) > 0 {
			kept = append(kept, g)
		}
	}
	return kept
}

// truncate enforces the total-size budget by dropping whole passages
// from the tail. Earlier (higher-priority) groups are never shortened
// before later ones; individual passages are never cut mid-text.
func truncate(groups []Group, maxRunes int) []Group {
	var kept []Group
	used := 0

	for _, g := range groups {
		// Header cost: "### label" plus the blank line between groups.
		headerCost := len([]rune("### "+g.Label)) + 2
		groupKept := Group{Kind: g.Kind, Label: g.Label}

		for _, p := range g.Passages {
			cost := len([]rune(p.Text)) + 1
			if len(groupKept.Passages) == 0 {
				cost += headerCost
			}
			if used+cost > maxRunes {
				// Budget reached. Everything after this point is lower
				// priority, so stop entirely rather than squeezing in a
				// smaller later passage.
				if len(groupKept.Passages) > 0 {
					kept = append(kept, groupKept)
				}
				return kept
			}
			used += cost
			groupKept.Passages = append(groupKept.Passages, p)
		}

		if len(groupKept.Passages) > 0 {
			kept = append(kept, groupKept)
		}
	}
	return kept
}
