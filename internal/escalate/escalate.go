// Package escalate decides, after the completion returns, whether the
// conversation should be handed to a human.
//
// Detection runs over the generated answer, not the customer question:
// the model is instructed to defer to staff when it cannot help, so the
// answer is where the handoff signal surfaces. Matching is substring
// based over a fixed phrase list; a dedicated classifier call was
// deliberately avoided to keep this stage free and deterministic.
package escalate

import (
	"strings"

	"golang.org/x/text/width"
)

// Signal is the escalation decision for one exchange. Question carries
// the original customer text so the notifier can forward it without the
// caller re-threading it.
type Signal struct {
	Escalate bool
	Question string
	Phrase   string // the phrase that triggered, empty when Escalate is false
}

// handoffPhrases are answer fragments that indicate the model deferred
// to staff. Matched case-insensitively after width folding, so
// full-width romaji and half-width kana both normalize.
var handoffPhrases = []string{
	// ja
	"スタッフにお問い合わせ",
	"スタッフにご確認",
	"スタッフまでお問い合わせ",
	"店舗にお問い合わせ",
	"店舗に直接",
	"お店に直接",
	"直接お問い合わせ",
	"お電話にてお問い合わせ",
	"わかりかねます",
	"お答えできかねます",
	"確認が必要です",
	// en
	"please contact the shop",
	"please contact our staff",
	"contact the store directly",
	"i'm unable to answer",
	"i am unable to answer",
	"needs confirmation by staff",
	"check with our staff",
}

// Detect scans the generated answer for handoff phrasing and returns
// the escalation signal. An empty answer never escalates; the upstream
// failure path produces its own notification.
func Detect(answer, question string) Signal {
	folded := normalize(answer)
	for _, phrase := range handoffPhrases {
		if strings.Contains(folded, normalize(phrase)) {
			return Signal{Escalate: true, Question: question, Phrase: phrase}
		}
	}
	return Signal{Question: question}
}

func normalize(s string) string {
	return strings.ToLower(width.Fold.String(s))
}
