package config

import (
	"errors"
	"fmt"
	"time"
)

// Policy defaults. Chosen so a default tenant fits the knowledge budget
// of a single completion call comfortably.
const (
	defaultFAQLimit          = 10
	defaultFAQItemRunes      = 300
	defaultMenuLimit         = 30
	defaultMenuItemRunes     = 120
	defaultStockLimit        = 8
	defaultStockSnapshot     = 12
	defaultStockItemRunes    = 80
	defaultKnowledgeMaxRunes = 6000
	defaultAdapterTimeout    = 3 * time.Second

	defaultTopK          = 5
	defaultMinScore      = 0.35
	defaultVectorWeight  = 0.7
	defaultLexicalWeight = 0.3
)

// Policy validation sentinels.
var (
	// ErrInvalidCap indicates a non-positive item cap or rune limit.
	ErrInvalidCap = errors.New("invalid cap")

	// ErrInvalidFusion indicates unusable retrieval fusion settings.
	ErrInvalidFusion = errors.New("invalid fusion settings")
)

// Retrieval holds the semantic retriever tunables. The fused score is the
// weighted sum VectorWeight*vector + LexicalWeight*lexical; the weights
// are configuration, not hidden constants.
type Retrieval struct {
	TopK          int
	MinScore      float64
	VectorWeight  float64
	LexicalWeight float64
}

// Policy is the immutable per-tenant pipeline configuration: every cap,
// limit, and owner-authored text the answer pipeline consumes. It is
// passed by value into the pipeline so nothing reads tenant settings ad
// hoc mid-query.
type Policy struct {
	// TenantName is the display name used in the persona header.
	TenantName string

	// FAQLimit / FAQItemRunes bound the FAQ adapter's output.
	FAQLimit     int
	FAQItemRunes int

	// MenuLimit / MenuItemRunes bound the catalog adapter's output.
	MenuLimit     int
	MenuItemRunes int

	// StockLimit caps stock search results; StockSnapshotLimit caps the
	// unranked fallback snapshot; StockItemRunes bounds each line.
	StockLimit         int
	StockSnapshotLimit int
	StockItemRunes     int

	// KnowledgeMaxRunes bounds the final concatenated knowledge block.
	// Individual passages are already truncated by their adapters; this
	// budget only trims whole lower-priority groups from the tail.
	KnowledgeMaxRunes int

	// AdapterTimeout bounds each adapter call and the retriever call
	// individually. A timed-out call degrades to an empty result.
	AdapterTimeout time.Duration

	// Retrieval holds the semantic retriever tunables.
	Retrieval Retrieval

	// OwnerDirectives are tenant-authored instructions (tone, campaign
	// notices, disclaimers) inserted verbatim into the prompt.
	OwnerDirectives []string
}

// DefaultPolicy returns the policy used when a tenant has no overrides.
func DefaultPolicy(tenantName string) Policy {
	return Policy{
		TenantName:         tenantName,
		FAQLimit:           defaultFAQLimit,
		FAQItemRunes:       defaultFAQItemRunes,
		MenuLimit:          defaultMenuLimit,
		MenuItemRunes:      defaultMenuItemRunes,
		StockLimit:         defaultStockLimit,
		StockSnapshotLimit: defaultStockSnapshot,
		StockItemRunes:     defaultStockItemRunes,
		KnowledgeMaxRunes:  defaultKnowledgeMaxRunes,
		AdapterTimeout:     defaultAdapterTimeout,
		Retrieval: Retrieval{
			TopK:          defaultTopK,
			MinScore:      defaultMinScore,
			VectorWeight:  defaultVectorWeight,
			LexicalWeight: defaultLexicalWeight,
		},
	}
}

// Validate checks the policy for unusable values.
func (p Policy) Validate() error {
	caps := map[string]int{
		"faq_limit":            p.FAQLimit,
		"faq_item_runes":       p.FAQItemRunes,
		"menu_limit":           p.MenuLimit,
		"menu_item_runes":      p.MenuItemRunes,
		"stock_limit":          p.StockLimit,
		"stock_snapshot_limit": p.StockSnapshotLimit,
		"stock_item_runes":     p.StockItemRunes,
		"knowledge_max_runes":  p.KnowledgeMaxRunes,
	}
	for name, v := range caps {
		if v <= 0 {
			return fmt.Errorf("%w: %s = %d", ErrInvalidCap, name, v)
		}
	}
	if p.AdapterTimeout <= 0 {
		return fmt.Errorf("%w: adapter_timeout = %v", ErrInvalidCap, p.AdapterTimeout)
	}

	r := p.Retrieval
	if r.TopK <= 0 {
		return fmt.Errorf("%w: top_k = %d", ErrInvalidFusion, r.TopK)
	}
	if r.MinScore < 0 || r.MinScore > 1 {
		return fmt.Errorf("%w: min_score = %v", ErrInvalidFusion, r.MinScore)
	}
	if r.VectorWeight < 0 || r.LexicalWeight < 0 || r.VectorWeight+r.LexicalWeight == 0 {
		return fmt.Errorf("%w: weights %v/%v", ErrInvalidFusion, r.VectorWeight, r.LexicalWeight)
	}
	return nil
}
