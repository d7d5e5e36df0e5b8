// Package intent detects which categories of user need a free-text
// question expresses.
//
// Detection is pure pattern matching: no I/O, no model call, no state.
// Each intent kind owns an independent matcher, so one question may
// legitimately trigger several intents at once (asking for the price of a
// service on a preferred date fires both ServicePrice and Booking). The
// flags feed two consumers: the aggregator uses them to decide which
// knowledge sources to query, and the composer uses them to pick guard
// templates and suppress off-topic instructions.
package intent

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// Kind identifies one intent category.
type Kind int

// Intent kinds. The declaration order is the fixed guard-template order
// used by the prompt composer (booking → price → purchase → hours),
// followed by the kinds that have no guard template of their own.
const (
	KindBooking Kind = iota
	KindServicePrice
	KindPurchase
	KindHours
	KindInventory
	KindRecommendation
)

// kindNames is indexed by Kind.
var kindNames = [...]string{
	KindBooking:        "booking",
	KindServicePrice:   "service_price",
	KindPurchase:       "purchase",
	KindHours:          "hours",
	KindInventory:      "inventory",
	KindRecommendation: "recommendation",
}

// String returns the stable wire name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds returns every intent kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindBooking, KindServicePrice, KindPurchase,
		KindHours, KindInventory, KindRecommendation,
	}
}

// GuardOrder returns the kinds that carry a guard template, in the fixed
// order the composer must emit them.
func GuardOrder() []Kind {
	return []Kind{KindBooking, KindServicePrice, KindPurchase, KindHours}
}

// Flags is the fixed-shape classification result. It is a value type:
// computed once per query by Classify and never mutated afterwards.
type Flags struct {
	Hours          bool
	Inventory      bool
	Booking        bool
	ServicePrice   bool
	Purchase       bool
	Recommendation bool
}

// Has reports whether the given kind fired.
func (f Flags) Has(k Kind) bool {
	switch k {
	case KindHours:
		return f.Hours
	case KindInventory:
		return f.Inventory
	case KindBooking:
		return f.Booking
	case KindServicePrice:
		return f.ServicePrice
	case KindPurchase:
		return f.Purchase
	case KindRecommendation:
		return f.Recommendation
	default:
		return false
	}
}

// Active returns the kinds that fired, in declaration order.
func (f Flags) Active() []Kind {
	var active []Kind
	for _, k := range Kinds() {
		if f.Has(k) {
			active = append(active, k)
		}
	}
	return active
}

// Suppressed returns the kinds that did not fire, in declaration order.
// The composer turns these into the focus rule that keeps off-topic
// content out of the answer.
func (f Flags) Suppressed() []Kind {
	var off []Kind
	for _, k := range Kinds() {
		if !f.Has(k) {
			off = append(off, k)
		}
	}
	return off
}

// Any reports whether at least one intent fired.
func (f Flags) Any() bool {
	return len(f.Active()) > 0
}

// matcher is one kind's keyword/regex set. Keywords are matched as
// substrings against the normalized text; patterns run against the same
// normalized text.
type matcher struct {
	keywords []string
	patterns []*regexp.Regexp
}

func (m matcher) match(text string) bool {
	for _, kw := range m.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	for _, p := range m.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// matchers covers Japanese and English phrasing. English keywords are
// lowercase; normalization lowercases the input before matching.
var matchers = map[Kind]matcher{
	KindHours: {
		keywords: []string{
			"営業時間", "営業日", "何時から", "何時まで", "開店", "閉店",
			"定休日", "休業日", "いつ開", "いつまで開", "やってます",
			"opening hours", "business hours", "what time", "open today",
			"closing time", "when do you open", "when do you close",
		},
	},
	KindInventory: {
		keywords: []string{
			"在庫", "入荷", "売り切れ", "品切れ", "取り扱い", "取扱",
			"残って", "stock", "in stock", "sold out",
			"availability", "available", "carry",
		},
	},
	KindBooking: {
		keywords: []string{
			"予約", "空き", "空いて", "キャンセル待ち", "日時変更",
			"book", "booking", "reservation", "reserve", "appointment",
			"availability for",
		},
		patterns: []*regexp.Regexp{
			// A concrete date or time strongly implies booking intent.
			regexp.MustCompile(`\d{1,2}月\d{1,2}日`),
			regexp.MustCompile(`\d{1,2}時(\d{1,2}分)?`),
			regexp.MustCompile(`\d{1,2}:\d{2}`),
		},
	},
	KindServicePrice: {
		keywords: []string{
			"料金", "値段", "価格", "いくら", "金額", "費用", "代金",
			"price", "prices", "cost", "how much", "fee", "charge",
		},
	},
	KindPurchase: {
		keywords: []string{
			"購入", "買いたい", "買えます", "注文", "通販", "発送",
			"お取り寄せ", "配送", "buy", "purchase", "order", "ship",
			"shipping", "delivery",
		},
	},
	KindRecommendation: {
		keywords: []string{
			"おすすめ", "オススメ", "お勧め", "人気", "定番",
			"recommend", "recommendation", "popular", "best seller",
			"which is best",
		},
	},
}

// Classify evaluates every intent matcher against text and returns the
// resulting flags. It is total: any input, including empty or
// whitespace-only text, yields a valid (possibly all-false) Flags value.
// Classification is locale-independent; the same keyword tables run for
// every query.
func Classify(text string) Flags {
	normalized := normalize(text)
	if normalized == "" {
		return Flags{}
	}

	return Flags{
		Hours:          matchers[KindHours].match(normalized),
		Inventory:      matchers[KindInventory].match(normalized),
		Booking:        matchers[KindBooking].match(normalized),
		ServicePrice:   matchers[KindServicePrice].match(normalized),
		Purchase:       matchers[KindPurchase].match(normalized),
		Recommendation: matchers[KindRecommendation].match(normalized),
	}
}

// normalize lowercases the text and folds character widths so full-width
// digits/letters (１０時) match the same patterns as their half-width
// forms (10時).
func normalize(text string) string {
	folded := width.Fold.String(text)
	return strings.ToLower(strings.TrimSpace(folded))
}
