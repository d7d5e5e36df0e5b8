package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tsuyoshi-3110/concierge/internal/escalate"
	"github.com/tsuyoshi-3110/concierge/internal/i18n"
	"github.com/tsuyoshi-3110/concierge/internal/log"
)

func TestEscalateDelivers(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding event: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, log.NewNop())
	sig := escalate.Signal{Escalate: true, Question: "カラーの持ちは？", Phrase: "スタッフにご確認"}
	if err := n.Escalate(context.Background(), "venus", "q-1", i18n.LocaleJA, sig, "スタッフにご確認ください。"); err != nil {
		t.Fatalf("Escalate: %v", err)
	}

	if got.TenantID != "venus" || got.QueryID != "q-1" {
		t.Errorf("event ids = %q/%q", got.TenantID, got.QueryID)
	}
	if got.Question != "カラーの持ちは？" {
		t.Errorf("question = %q", got.Question)
	}
	if got.Reason != "スタッフにご確認" {
		t.Errorf("reason = %q", got.Reason)
	}
	if got.Subject == "" || got.SentAt == "" {
		t.Errorf("subject/sent_at must be set, got %+v", got)
	}
}

func TestEscalateWebhookError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	n := New(srv.URL, log.NewNop())
	err := n.Escalate(context.Background(), "t", "q", i18n.LocaleJA, escalate.Signal{Escalate: true}, "")
	if err == nil {
		t.Fatal("want error on 403 response")
	}
}

func TestEscalateNoWebhookConfigured(t *testing.T) {
	n := New("", log.NewNop())
	if err := n.Escalate(context.Background(), "t", "q", i18n.LocaleJA, escalate.Signal{Escalate: true}, ""); err != nil {
		t.Fatalf("empty webhook should drop silently, got %v", err)
	}
}
