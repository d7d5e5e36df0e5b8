package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tsuyoshi-3110/concierge/internal/knowledge"
)

// HoursStore is the repository capability the hours adapter consumes.
type HoursStore interface {
	Hours(ctx context.Context, tenantID string) ([]knowledge.HoursDocument, error)
}

// Weekday indexes into WeekSchedule.Days, Monday first.
var weekdayKeys = [7]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var weekdayLabels = [7]string{"月", "火", "水", "木", "金", "土", "日"}

// TimeRange is one open interval within a day.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DaySchedule is the canonical per-weekday shape every stored schema
// normalizes into.
type DaySchedule struct {
	Closed bool        `json:"closed"`
	Ranges []TimeRange `json:"ranges"`
}

// WeekSchedule is the canonical business-hours structure, Monday first.
type WeekSchedule struct {
	Days [7]DaySchedule
}

// errUnknownSchema reports a payload matching no supported hours schema.
var errUnknownSchema = errors.New("unrecognized hours schema")

// HoursAdapter serves the tenant's business hours. It understands both
// historical storage schemas:
//
//   - current: {"week": {"monday": {"closed": false, "ranges": [{"start","end"}]}}}
//   - legacy:  {"monday": {"open": "10:00", "close": "19:00"}} where empty
//     open/close strings mean the day is closed
//
// When no stored document yields a usable schedule, Fetch returns
// ErrNoSchedule rather than an empty passage list so the composer can
// switch to the "no fixed hours" guard template.
type HoursAdapter struct {
	store  HoursStore
	logger *slog.Logger
}

// NewHours creates the hours adapter.
func NewHours(store HoursStore, logger *slog.Logger) *HoursAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HoursAdapter{store: store, logger: logger}
}

// Kind implements Adapter.
func (*HoursAdapter) Kind() Kind { return KindHours }

// Fetch implements Adapter. The query is unused.
func (a *HoursAdapter) Fetch(ctx context.Context, tenantID, _ string) ([]Passage, error) {
	docs, err := a.store.Hours(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: hours: %w", ErrUnavailable, err)
	}

	// Documents arrive newest first; the first one that normalizes wins.
	for _, doc := range docs {
		week, normErr := NormalizeHours(doc.Payload)
		if normErr != nil {
			a.logger.Debug("skipping hours document", "id", doc.ID, "error", normErr)
			continue
		}
		return []Passage{{
			Kind:     KindHours,
			Label:    "営業時間",
			Text:     formatWeek(week),
			Priority: PriorityIntent,
		}}, nil
	}

	return nil, ErrNoSchedule
}

// NormalizeHours parses a stored hours payload in either supported
// schema into the canonical WeekSchedule. A schedule where every day is
// closed with no ranges is treated as unusable.
func NormalizeHours(payload []byte) (WeekSchedule, error) {
	if week, err := parseCurrentSchema(payload); err == nil {
		return week, nil
	}
	if week, err := parseLegacySchema(payload); err == nil {
		return week, nil
	}
	return WeekSchedule{}, errUnknownSchema
}

// currentDoc is the present-day storage shape.
type currentDoc struct {
	Week map[string]DaySchedule `json:"week"`
}

func parseCurrentSchema(payload []byte) (WeekSchedule, error) {
	var doc currentDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return WeekSchedule{}, err
	}
	if len(doc.Week) == 0 {
		return WeekSchedule{}, errUnknownSchema
	}

	var week WeekSchedule
	usable := false
	for i, key := range weekdayKeys {
		day, ok := doc.Week[key]
		if !ok {
			week.Days[i] = DaySchedule{Closed: true}
			continue
		}
		if day.Closed {
			day.Ranges = nil
		}
		week.Days[i] = day
		if !day.Closed && len(day.Ranges) > 0 {
			usable = true
		}
	}
	if !usable {
		return WeekSchedule{}, errUnknownSchema
	}
	return week, nil
}

// legacyDay is the flat open/close shape of first-generation documents.
type legacyDay struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

func parseLegacySchema(payload []byte) (WeekSchedule, error) {
	var doc map[string]legacyDay
	if err := json.Unmarshal(payload, &doc); err != nil {
		return WeekSchedule{}, err
	}

	var week WeekSchedule
	usable := false
	for i, key := range weekdayKeys {
		day, ok := doc[key]
		if !ok || day.Open == "" || day.Close == "" {
			week.Days[i] = DaySchedule{Closed: true}
			continue
		}
		week.Days[i] = DaySchedule{
			Ranges: []TimeRange{{Start: day.Open, End: day.Close}},
		}
		usable = true
	}
	if !usable {
		return WeekSchedule{}, errUnknownSchema
	}
	return week, nil
}

// formatWeek renders the canonical schedule as one passage body, one
// line per weekday.
func formatWeek(week WeekSchedule) string {
	lines := make([]string, 0, 7)
	for i, day := range week.Days {
		if day.Closed || len(day.Ranges) == 0 {
			lines = append(lines, fmt.Sprintf("%s曜: 定休日", weekdayLabels[i]))
			continue
		}
		spans := make([]string, 0, len(day.Ranges))
		for _, r := range day.Ranges {
			spans = append(spans, fmt.Sprintf("%s〜%s", r.Start, r.End))
		}
		lines = append(lines, fmt.Sprintf("%s曜: %s", weekdayLabels[i], strings.Join(spans, "、")))
	}
	return strings.Join(lines, "\n")
}
