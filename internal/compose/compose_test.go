package compose

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tsuyoshi-3110/concierge/internal/aggregate"
	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/i18n"
	"github.com/tsuyoshi-3110/concierge/internal/intent"
	"github.com/tsuyoshi-3110/concierge/internal/source"
)

func testPolicy() config.Policy {
	return config.DefaultPolicy("Venus Total Beauty")
}

func knowledgeWith(kind source.Kind, label, text string) aggregate.Context {
	return aggregate.Context{Groups: []aggregate.Group{
		{Kind: kind, Label: label, Passages: []source.Passage{{Text: text}}},
	}}
}

func guardIntents(p Payload) []intent.Kind {
	var kinds []intent.Kind
	for _, g := range p.Guards() {
		kinds = append(kinds, g.Intent)
	}
	return kinds
}

func TestComposeSegmentOrder(t *testing.T) {
	kctx := knowledgeWith(source.KindFAQ, "よくある質問", "Q: x\nA: y")
	p := Compose("予約したいです", i18n.LocaleJA, intent.Flags{Booking: true}, kctx, testPolicy())

	var kinds []SegmentKind
	for _, s := range p.Segments {
		kinds = append(kinds, s.Kind)
	}
	want := []SegmentKind{
		SegPersona, SegLanguage, SegIntents, SegPolicy, SegFocus,
		SegStyle, SegKnowledge, SegGuard, SegQuestion,
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("segment order = %v, want %v", kinds, want)
	}
}

func TestComposePersonaNamesTenant(t *testing.T) {
	p := Compose("q", i18n.LocaleJA, intent.Flags{}, aggregate.Context{}, testPolicy())
	if !strings.Contains(p.Segments[0].Text, "Venus Total Beauty") {
		t.Errorf("persona missing tenant name: %q", p.Segments[0].Text)
	}
}

func TestComposeLanguageLock(t *testing.T) {
	ja := Compose("q", i18n.LocaleJA, intent.Flags{}, aggregate.Context{}, testPolicy())
	if !strings.Contains(ja.Segments[1].Text, "Japanese") {
		t.Errorf("ja lock = %q", ja.Segments[1].Text)
	}
	en := Compose("q", i18n.LocaleEN, intent.Flags{}, aggregate.Context{}, testPolicy())
	if !strings.Contains(en.Segments[1].Text, "English") {
		t.Errorf("en lock = %q", en.Segments[1].Text)
	}
}

func TestComposeTopicSuppression(t *testing.T) {
	// Hours intent false: no hours guard, no hours note, and the focus
	// rule names business hours as off limits.
	p := Compose("在庫ありますか", i18n.LocaleJA, intent.Flags{Inventory: true},
		knowledgeWith(source.KindStock, "在庫状況", "x"), testPolicy())

	for _, g := range p.Guards() {
		if g.Intent == intent.KindHours {
			t.Error("hours guard emitted without hours intent")
		}
	}
	for _, s := range p.Segments {
		if s.Kind == SegHoursNote {
			t.Error("hours note emitted without hours intent")
		}
	}

	var focus string
	for _, s := range p.Segments {
		if s.Kind == SegFocus {
			focus = s.Text
		}
	}
	if !strings.Contains(focus, "business hours") {
		t.Errorf("focus rule should suppress hours topic: %q", focus)
	}
}

func TestComposeHoursGuardVariantsExclusive(t *testing.T) {
	flags := intent.Flags{Hours: true}
	kctx := knowledgeWith(source.KindHours, "営業時間", "月曜: 10:00〜19:00")

	known := Compose("q", i18n.LocaleJA, flags, withHoursKnown(kctx, true), testPolicy())
	unknown := Compose("q", i18n.LocaleJA, flags, withHoursKnown(aggregate.Context{}, false), testPolicy())

	knownGuards := known.Guards()
	if len(knownGuards) != 1 {
		t.Fatalf("got %d guards, want exactly 1", len(knownGuards))
	}
	if knownGuards[0].Text != guardHoursKnown {
		t.Errorf("hours-known guard = %q", knownGuards[0].Text)
	}

	unknownGuards := unknown.Guards()
	if len(unknownGuards) != 1 {
		t.Fatalf("got %d guards, want exactly 1", len(unknownGuards))
	}
	if unknownGuards[0].Text != guardHoursUnknown {
		t.Errorf("hours-unknown guard = %q", unknownGuards[0].Text)
	}
}

func TestComposeGuardOrderBookingThenPrice(t *testing.T) {
	// Scenario: price question with a preferred date/time.
	flags := intent.Flags{ServicePrice: true, Booking: true}
	p := Compose("カットの料金は？3月15日空いてますか", i18n.LocaleJA, flags, aggregate.Context{}, testPolicy())

	got := guardIntents(p)
	want := []intent.Kind{intent.KindBooking, intent.KindServicePrice}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("guard order = %v, want %v", got, want)
	}
}

func TestComposeInventoryOnlyScenario(t *testing.T) {
	// Scenario: "在庫ありますか" — inventory intent only, so no
	// booking/price/purchase guard may appear.
	p := Compose("在庫ありますか", i18n.LocaleJA, intent.Flags{Inventory: true},
		knowledgeWith(source.KindStock, "在庫状況", "x"), testPolicy())

	if len(p.Guards()) != 0 {
		t.Errorf("inventory has no guard template, got %v", guardIntents(p))
	}
}

func TestComposeAllGuardsFullOrder(t *testing.T) {
	flags := intent.Flags{Hours: true, Booking: true, ServicePrice: true, Purchase: true}
	p := Compose("q", i18n.LocaleJA, flags, withHoursKnown(aggregate.Context{}, true), testPolicy())

	got := guardIntents(p)
	want := []intent.Kind{
		intent.KindBooking, intent.KindServicePrice, intent.KindPurchase, intent.KindHours,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("guard order = %v, want %v", got, want)
	}
}

func TestComposeEmptyKnowledgeStillValidPayload(t *testing.T) {
	// Scenario: every adapter failed. The payload must still be valid
	// and instruct the model not to invent facts.
	p := Compose("おすすめは？", i18n.LocaleJA, intent.Flags{Recommendation: true},
		aggregate.Context{}, testPolicy())

	if len(p.Segments) == 0 {
		t.Fatal("payload must not be empty")
	}
	var knowledge string
	for _, s := range p.Segments {
		if s.Kind == SegKnowledge {
			knowledge = s.Text
		}
	}
	if !strings.Contains(knowledge, "do not invent") {
		t.Errorf("empty knowledge should become no-fabrication directive: %q", knowledge)
	}
	if p.Question() != "おすすめは？" {
		t.Errorf("question segment = %q", p.Question())
	}
}

func TestComposeOwnerDirectives(t *testing.T) {
	policy := testPolicy()
	policy.OwnerDirectives = []string{"今月はパーマ10%オフです", "閉店30分前の入店はご遠慮ください"}

	p := Compose("q", i18n.LocaleJA, intent.Flags{}, aggregate.Context{}, policy)

	var owners []string
	for _, s := range p.Segments {
		if s.Kind == SegOwner {
			owners = append(owners, s.Text)
		}
	}
	if !reflect.DeepEqual(owners, policy.OwnerDirectives) {
		t.Errorf("owner directives = %v, want verbatim %v", owners, policy.OwnerDirectives)
	}
}

func TestComposeDeterministic(t *testing.T) {
	flags := intent.Flags{Hours: true, ServicePrice: true}
	kctx := withHoursKnown(knowledgeWith(source.KindHours, "営業時間", "月曜: 10:00〜19:00"), true)

	a := Compose("q", i18n.LocaleJA, flags, kctx, testPolicy())
	b := Compose("q", i18n.LocaleJA, flags, kctx, testPolicy())
	if !reflect.DeepEqual(a, b) {
		t.Error("Compose is not deterministic")
	}
}

func TestComposeQuestionIsLastSegment(t *testing.T) {
	p := Compose("最後の質問", i18n.LocaleJA, intent.Flags{Booking: true}, aggregate.Context{}, testPolicy())
	last := p.Segments[len(p.Segments)-1]
	if last.Kind != SegQuestion || last.Text != "最後の質問" {
		t.Errorf("last segment = %+v, want the user question", last)
	}
	if len(p.Instructions()) != len(p.Segments)-1 {
		t.Errorf("Instructions() should exclude exactly the question segment")
	}
}

func withHoursKnown(c aggregate.Context, known bool) aggregate.Context {
	c.HoursKnown = known
	return c
}
