// Package notify posts escalation events to the tenant's staff webhook.
//
// Delivery is best effort and never blocks or fails the customer
// response: Notifier.Escalate is designed to be launched in its own
// goroutine with a detached context, and all failures end as log lines.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tsuyoshi-3110/concierge/internal/escalate"
	"github.com/tsuyoshi-3110/concierge/internal/i18n"
	"github.com/tsuyoshi-3110/concierge/internal/log"
)

const (
	deliveryTimeout = 5 * time.Second
	retryCount      = 2
	retryWait       = 200 * time.Millisecond
)

// Event is the webhook body for one escalation.
type Event struct {
	Subject  string `json:"subject"`
	TenantID string `json:"tenant_id"`
	QueryID  string `json:"query_id"`
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Reason   string `json:"reason,omitempty"`
	SentAt   string `json:"sent_at"`
}

// Notifier delivers escalation events over HTTP. A Notifier with an
// empty webhook URL is valid and drops every event with a debug line,
// so callers never need a nil check.
type Notifier struct {
	client     *resty.Client
	webhookURL string
	logger     log.Logger
}

// New builds a Notifier for the given webhook URL. An empty URL
// disables delivery.
func New(webhookURL string, logger log.Logger) *Notifier {
	client := resty.New().
		SetTimeout(deliveryTimeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait)

	return &Notifier{
		client:     client,
		webhookURL: webhookURL,
		logger:     logger,
	}
}

// Escalate posts one handoff event. The error return exists for tests;
// production callers run this in a goroutine and ignore it.
func (n *Notifier) Escalate(ctx context.Context, tenantID, queryID, locale string, sig escalate.Signal, answer string) error {
	if n.webhookURL == "" {
		n.logger.Debug("escalation webhook not configured, dropping event",
			"tenant_id", tenantID, "query_id", queryID)
		return nil
	}

	event := Event{
		Subject:  i18n.T(locale, "escalation.subject"),
		TenantID: tenantID,
		QueryID:  queryID,
		Question: sig.Question,
		Answer:   answer,
		Reason:   sig.Phrase,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.webhookURL)
	if err != nil {
		n.logger.Warn("escalation delivery failed",
			"tenant_id", tenantID, "query_id", queryID, "error", err)
		return fmt.Errorf("posting escalation: %w", err)
	}
	if resp.IsError() {
		n.logger.Warn("escalation rejected by webhook",
			"tenant_id", tenantID, "query_id", queryID, "status", resp.StatusCode())
		return fmt.Errorf("escalation webhook returned %d", resp.StatusCode())
	}

	n.logger.Info("escalation delivered",
		"tenant_id", tenantID, "query_id", queryID)
	return nil
}
