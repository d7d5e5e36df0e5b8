package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/knowledge"
	"github.com/tsuyoshi-3110/concierge/internal/retrieval"
)

type fakeFAQStore struct {
	faqs []knowledge.FAQ
	err  error
}

func (s *fakeFAQStore) FAQs(context.Context, string, int) ([]knowledge.FAQ, error) {
	return s.faqs, s.err
}

type fakeMenuStore struct {
	items []knowledge.MenuItem
	err   error
}

func (s *fakeMenuStore) MenuItems(context.Context, string, int) ([]knowledge.MenuItem, error) {
	return s.items, s.err
}

type fakeRetriever struct {
	hits []retrieval.Hit
	err  error
}

func (r *fakeRetriever) Retrieve(context.Context, string, string) ([]retrieval.Hit, error) {
	return r.hits, r.err
}

func TestFAQFetch(t *testing.T) {
	store := &fakeFAQStore{faqs: []knowledge.FAQ{
		{ID: "f1", Question: "駐車場はありますか", Answer: "2台分ございます"},
	}}
	adapter := NewFAQ(store, config.DefaultPolicy("shop"), nil)

	passages, err := adapter.Fetch(context.Background(), "t", "unused")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("got %d passages, want 1", len(passages))
	}
	p := passages[0]
	if p.Kind != KindFAQ || p.Priority != PriorityGeneral {
		t.Errorf("kind/priority = %v/%v", p.Kind, p.Priority)
	}
	if !strings.Contains(p.Text, "Q: 駐車場はありますか") || !strings.Contains(p.Text, "A: 2台分ございます") {
		t.Errorf("unexpected passage text: %q", p.Text)
	}
}

func TestFAQFetchTruncatesPerItem(t *testing.T) {
	policy := config.DefaultPolicy("shop")
	policy.FAQItemRunes = 20
	store := &fakeFAQStore{faqs: []knowledge.FAQ{
		{Question: strings.Repeat("あ", 50), Answer: strings.Repeat("い", 50)},
	}}
	adapter := NewFAQ(store, policy, nil)

	passages, err := adapter.Fetch(context.Background(), "t", "")
	if err != nil {
		t.Fatal(err)
	}
	if got := len([]rune(passages[0].Text)); got > 20 {
		t.Errorf("passage length %d exceeds per-item cap 20", got)
	}
}

func TestFAQFetchUnavailable(t *testing.T) {
	adapter := NewFAQ(&fakeFAQStore{err: errors.New("down")}, config.DefaultPolicy("shop"), nil)
	if _, err := adapter.Fetch(context.Background(), "t", ""); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Fetch() = %v, want ErrUnavailable", err)
	}
}

func TestMenuFetchFormatsLines(t *testing.T) {
	store := &fakeMenuStore{items: []knowledge.MenuItem{
		{Name: "カット", PriceYen: 4500},
		{Name: "トリートメント", PriceYen: 6000, Description: "髪質改善"},
		{Name: "学割カット"},
	}}
	adapter := NewMenu(store, config.DefaultPolicy("shop"), nil)

	passages, err := adapter.Fetch(context.Background(), "t", "")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(passages) != 3 {
		t.Fatalf("got %d passages, want 3", len(passages))
	}
	if passages[0].Text != "カット — ¥4500" {
		t.Errorf("priced line = %q", passages[0].Text)
	}
	if !strings.Contains(passages[1].Text, "髪質改善") {
		t.Errorf("description missing: %q", passages[1].Text)
	}
	if passages[2].Text != "学割カット" {
		t.Errorf("unpriced line = %q", passages[2].Text)
	}
}

func TestSemanticFetchScored(t *testing.T) {
	r := &fakeRetriever{hits: []retrieval.Hit{
		{ID: "c1", Content: "カラーは植物由来の薬剤を使用", Score: 0.82, Vector: 0.9, Lexical: 0.6},
	}}
	adapter := NewSemantic(r, nil)

	passages, hits, err := adapter.FetchScored(context.Background(), "t", "カラーについて")
	if err != nil {
		t.Fatalf("FetchScored() error: %v", err)
	}
	if len(passages) != 1 || len(hits) != 1 {
		t.Fatalf("passages/hits = %d/%d, want 1/1", len(passages), len(hits))
	}
	if passages[0].Priority != PrioritySemantic {
		t.Errorf("semantic priority = %v, want PrioritySemantic", passages[0].Priority)
	}
	if hits[0].Score != 0.82 {
		t.Errorf("hit score lost in adaptation: %+v", hits[0])
	}
}

func TestSemanticFetchUnavailable(t *testing.T) {
	adapter := NewSemantic(&fakeRetriever{err: errors.New("no index")}, nil)
	if _, err := adapter.Fetch(context.Background(), "t", "q"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Fetch() = %v, want ErrUnavailable", err)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"あいうえおかきくけこ", 5, "あいうえ…"},
		{"abcdef", 6, "abcdef"},
		{"abcdef", 1, "a"},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
