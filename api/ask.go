package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tsuyoshi-3110/concierge/internal/escalate"
	"github.com/tsuyoshi-3110/concierge/internal/i18n"
	"github.com/tsuyoshi-3110/concierge/internal/log"
	"github.com/tsuyoshi-3110/concierge/internal/pipeline"
)

const (
	// maxAskBodyBytes bounds the request body size.
	maxAskBodyBytes = 16 * 1024

	// notifyTimeout bounds the fire-and-forget escalation dispatch.
	notifyTimeout = 10 * time.Second
)

// QueryHandler runs one question through the concierge pipeline.
// Satisfied by pipeline.Pipeline.
type QueryHandler interface {
	Handle(ctx context.Context, q pipeline.Query) (pipeline.Result, error)
}

// EscalationNotifier delivers handoff events to staff. Satisfied by
// notify.Notifier.
type EscalationNotifier interface {
	Escalate(ctx context.Context, tenantID, queryID, locale string, sig escalate.Signal, answer string) error
}

// AskRequest is the request body for POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
	TenantID string `json:"tenantId"`
	Locale   string `json:"locale,omitempty"`
}

// AskResponse is the response body for POST /api/ask.
type AskResponse struct {
	Answer    string            `json:"answer"`
	Escalated bool              `json:"escalated"`
	Metadata  pipeline.Metadata `json:"metadata"`
}

// AskHandler handles the concierge question endpoint.
type AskHandler struct {
	handler  QueryHandler
	notifier EscalationNotifier
	logger   log.Logger
}

// NewAskHandler creates the ask handler. notifier may be a disabled
// notify.Notifier but must not be nil.
func NewAskHandler(handler QueryHandler, notifier EscalationNotifier, logger log.Logger) *AskHandler {
	return &AskHandler{handler: handler, notifier: notifier, logger: logger}
}

// RegisterRoutes registers ask routes on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.ask)
}

func (h *AskHandler) ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBodyBytes)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON", h.logger)
		return
	}

	locale, _ := i18n.Resolve(req.Locale)

	res, err := h.handler.Handle(r.Context(), pipeline.Query{
		Text:     req.Question,
		TenantID: req.TenantID,
		Locale:   req.Locale,
	})
	switch {
	case errors.Is(err, pipeline.ErrEmptyQuestion):
		writeError(w, http.StatusBadRequest, "empty_question", i18n.T(locale, "error.question.empty"), h.logger)
		return
	case errors.Is(err, pipeline.ErrEmptyTenant):
		writeError(w, http.StatusBadRequest, "empty_tenant", i18n.T(locale, "error.tenant.empty"), h.logger)
		return
	case errors.Is(err, pipeline.ErrCompletion):
		// The apology answer is already localized; the escalation still
		// goes out so staff can follow up with the customer.
		h.dispatchEscalation(req.TenantID, res, locale)
		writeJSON(w, http.StatusBadGateway, AskResponse{
			Answer:    res.Answer,
			Escalated: true,
			Metadata:  res.Metadata,
		}, h.logger)
		return
	case err != nil:
		h.logger.Error("ask failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "", h.logger)
		return
	}

	if res.Escalation.Escalate {
		h.dispatchEscalation(req.TenantID, res, locale)
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:    res.Answer,
		Escalated: res.Escalation.Escalate,
		Metadata:  res.Metadata,
	}, h.logger)
}

// dispatchEscalation delivers the handoff event without blocking the
// response. The detached context survives the request ending; failures
// are logged inside the notifier and never reach the customer.
func (h *AskHandler) dispatchEscalation(tenantID string, res pipeline.Result, locale string) {
	sig := res.Escalation
	queryID := res.Metadata.QueryID
	answer := res.Answer
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		_ = h.notifier.Escalate(ctx, tenantID, queryID, locale, sig, answer)
	}()
}
