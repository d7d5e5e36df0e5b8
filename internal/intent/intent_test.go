package intent

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Flags
	}{
		{
			name: "empty text",
			text: "",
			want: Flags{},
		},
		{
			name: "whitespace only",
			text: "   \n\t ",
			want: Flags{},
		},
		{
			name: "no intent keywords",
			text: "こんにちは、お店の雰囲気はどんな感じですか",
			want: Flags{},
		},
		{
			name: "inventory japanese",
			text: "在庫ありますか",
			want: Flags{Inventory: true},
		},
		{
			name: "hours japanese",
			text: "営業時間を教えてください",
			want: Flags{Hours: true},
		},
		{
			name: "hours english case insensitive",
			text: "What TIME do you open?",
			want: Flags{Hours: true},
		},
		{
			name: "price plus booking date fires both",
			text: "カットの料金はいくらですか？3月15日は空いていますか",
			want: Flags{ServicePrice: true, Booking: true},
		},
		{
			name: "full-width digits match time pattern",
			text: "明日の１４時にお願いできますか",
			want: Flags{Booking: true},
		},
		{
			name: "clock time half width",
			text: "can I come at 14:30",
			want: Flags{Booking: true},
		},
		{
			name: "purchase english",
			text: "Can I buy the shampoo online?",
			want: Flags{Purchase: true},
		},
		{
			name: "recommendation",
			text: "おすすめのトリートメントはどれですか",
			want: Flags{Recommendation: true},
		},
		{
			name: "booking keyword",
			text: "予約できますか",
			want: Flags{Booking: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	text := "営業時間と料金を教えてください"
	first := Classify(text)
	second := Classify(text)
	if first != second {
		t.Errorf("Classify is not idempotent: %+v vs %+v", first, second)
	}
}

func TestActiveOrder(t *testing.T) {
	f := Flags{Hours: true, Booking: true, ServicePrice: true}
	got := f.Active()
	want := []Kind{KindBooking, KindServicePrice, KindHours}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Active() = %v, want %v", got, want)
	}
}

func TestSuppressedComplementsActive(t *testing.T) {
	f := Flags{Inventory: true}
	active := f.Active()
	suppressed := f.Suppressed()
	if len(active)+len(suppressed) != len(Kinds()) {
		t.Fatalf("active (%d) + suppressed (%d) != all kinds (%d)",
			len(active), len(suppressed), len(Kinds()))
	}
	for _, k := range suppressed {
		if f.Has(k) {
			t.Errorf("suppressed kind %v is active", k)
		}
	}
}

func TestGuardOrderFixed(t *testing.T) {
	want := []Kind{KindBooking, KindServicePrice, KindPurchase, KindHours}
	if !reflect.DeepEqual(GuardOrder(), want) {
		t.Errorf("GuardOrder() = %v, want %v", GuardOrder(), want)
	}
}

func TestKindString(t *testing.T) {
	if KindServicePrice.String() != "service_price" {
		t.Errorf("KindServicePrice.String() = %q", KindServicePrice.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("out-of-range kind should stringify as unknown")
	}
}
