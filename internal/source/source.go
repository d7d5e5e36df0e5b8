// Package source provides the knowledge source adapters: one per source
// kind, each turning tenant knowledge into bounded, labeled passages.
//
// Adapters enforce their own caps (item count and per-item runes) before
// passages leave the adapter; the aggregator downstream never re-truncates
// an individual passage. Failures are reported as ErrUnavailable and are
// always recoverable: the caller swallows them into an empty result so a
// single source can never abort the query pipeline.
package source

import (
	"context"
	"errors"
)

// Kind identifies a knowledge source.
type Kind string

// Source kinds.
const (
	KindHours    Kind = "hours"
	KindStock    Kind = "stock"
	KindFAQ      Kind = "faq"
	KindMenu     Kind = "menu"
	KindSemantic Kind = "semantic"
)

// Priority is the passage ordering class. Lower values survive
// truncation longer and appear earlier in the knowledge block.
type Priority int

// Priority classes: intent-triggered sources outrank general-purpose
// ones, which outrank semantic retrieval.
const (
	PriorityIntent Priority = iota
	PriorityGeneral
	PrioritySemantic
)

// ErrUnavailable reports a source that failed or timed out. Callers
// recover it locally as an empty result.
var ErrUnavailable = errors.New("knowledge source unavailable")

// ErrNoSchedule is the distinguished hours result: the tenant has no
// usable business-hours data. It is not an empty list; the composer uses
// it to select the "no fixed hours" guard template.
var ErrNoSchedule = errors.New("no usable business hours")

// Passage is one bounded, labeled unit of reference text. Read-only once
// created.
type Passage struct {
	Kind     Kind
	Label    string
	Text     string
	Priority Priority
}

// Adapter is the contract every knowledge source implements.
type Adapter interface {
	// Kind identifies the source for grouping and suppression.
	Kind() Kind

	// Fetch returns zero or more passages for the tenant. The query may
	// inform search-style sources and is ignored by static ones. Errors
	// wrap ErrUnavailable (or ErrNoSchedule for the hours adapter).
	Fetch(ctx context.Context, tenantID, query string) ([]Passage, error)
}

// truncateRunes bounds s to max runes, appending an ellipsis when cut.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
