// Package pipeline orchestrates one query end to end: classify intents,
// aggregate knowledge, compose the payload, dispatch the completion,
// and check the answer for escalation.
//
// Each query owns its intermediate state exclusively; nothing here is
// cached or shared across queries. The only fatal path is the
// completion call itself — every knowledge failure upstream degrades to
// an empty section instead.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tsuyoshi-3110/concierge/internal/aggregate"
	"github.com/tsuyoshi-3110/concierge/internal/compose"
	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/escalate"
	"github.com/tsuyoshi-3110/concierge/internal/i18n"
	"github.com/tsuyoshi-3110/concierge/internal/intent"
	"github.com/tsuyoshi-3110/concierge/internal/log"
)

// Validation and dispatch sentinels.
var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrEmptyTenant   = errors.New("tenant id is empty")
	ErrCompletion    = errors.New("completion service failed")
)

// State labels one stage of the per-query walk. The trace of visited
// states ships in the result metadata.
type State string

const (
	StateReceived          State = "received"
	StateClassified        State = "classified"
	StateAggregated        State = "aggregated"
	StateComposed          State = "composed"
	StateDispatched        State = "dispatched"
	StateAnswerReceived    State = "answer_received"
	StateEscalationChecked State = "escalation_checked"
	StateDone              State = "done"
)

// Query is one inbound question. Locale may be empty or unsupported;
// Handle resolves it to the default.
type Query struct {
	Text     string
	TenantID string
	Locale   string
}

// Metadata describes how the answer was produced, for logs and the API
// response.
type Metadata struct {
	QueryID         string    `json:"queryId"`
	Locale          string    `json:"locale"`
	Intents         []string  `json:"intents"`
	KnowledgeLines  int       `json:"knowledgeLines"`
	RetrievalScores []float64 `json:"retrievalScores,omitempty"`
	States          []State   `json:"states"`
}

// Result is the completed exchange.
type Result struct {
	Answer     string
	Metadata   Metadata
	Escalation escalate.Signal
}

// Completer dispatches the composed payload to the language model.
// Satisfied by llm.Client.
type Completer interface {
	Complete(ctx context.Context, payload compose.Payload) (string, error)
}

// Aggregator builds the knowledge context for one query. Satisfied by
// aggregate.Aggregator.
type Aggregator interface {
	Aggregate(ctx context.Context, tenantID, query string, flags intent.Flags) aggregate.Context
}

// Pipeline wires the per-query stages together.
type Pipeline struct {
	aggregator Aggregator
	completer  Completer
	policy     config.Policy
	logger     log.Logger
}

// New builds a Pipeline. The policy is copied by value and immutable
// for the pipeline's lifetime.
func New(aggregator Aggregator, completer Completer, policy config.Policy, logger log.Logger) *Pipeline {
	return &Pipeline{
		aggregator: aggregator,
		completer:  completer,
		policy:     policy,
		logger:     logger,
	}
}

// Handle runs one query through the full pipeline. On completion
// failure the returned result still carries a localized apology answer
// and the metadata collected so far, alongside an error wrapping
// ErrCompletion.
func (p *Pipeline) Handle(ctx context.Context, q Query) (Result, error) {
	meta := Metadata{QueryID: uuid.NewString()}
	mark := func(s State) { meta.States = append(meta.States, s) }
	mark(StateReceived)

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return Result{Metadata: meta}, ErrEmptyQuestion
	}
	if strings.TrimSpace(q.TenantID) == "" {
		return Result{Metadata: meta}, ErrEmptyTenant
	}

	locale, err := i18n.Resolve(q.Locale)
	if err != nil {
		p.logger.Debug("unsupported locale substituted",
			"query_id", meta.QueryID, "requested", q.Locale, "used", locale)
	}
	meta.Locale = locale

	flags := intent.Classify(text)
	meta.Intents = flagNames(flags)
	mark(StateClassified)

	kctx := p.aggregator.Aggregate(ctx, q.TenantID, text, flags)
	meta.KnowledgeLines = kctx.Lines()
	for _, hit := range kctx.Hits {
		meta.RetrievalScores = append(meta.RetrievalScores, hit.Score)
	}
	mark(StateAggregated)

	payload := compose.Compose(text, locale, flags, kctx, p.policy)
	mark(StateComposed)

	mark(StateDispatched)
	answer, err := p.completer.Complete(ctx, payload)
	if err != nil {
		p.logger.Error("completion failed",
			"query_id", meta.QueryID, "tenant_id", q.TenantID, "error", err)
		return Result{
			Answer:     i18n.T(locale, "error.completion"),
			Metadata:   meta,
			Escalation: escalate.Signal{Escalate: true, Question: text},
		}, fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	mark(StateAnswerReceived)

	sig := escalate.Detect(answer, text)
	mark(StateEscalationChecked)
	mark(StateDone)

	p.logger.Info("query handled",
		"query_id", meta.QueryID,
		"tenant_id", q.TenantID,
		"intents", meta.Intents,
		"knowledge_lines", meta.KnowledgeLines,
		"escalate", sig.Escalate)

	return Result{Answer: answer, Metadata: meta, Escalation: sig}, nil
}

func flagNames(flags intent.Flags) []string {
	active := flags.Active()
	names := make([]string, 0, len(active))
	for _, k := range active {
		names = append(names, k.String())
	}
	return names
}
