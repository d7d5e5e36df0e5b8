// Package i18n resolves request locales and provides localized system
// messages (apologies, notices) outside the model-generated answer.
//
// Unlike the model answer, whose language is controlled by the composed
// prompt, these messages are emitted by the service itself and must be
// translated locally. Lookup is per call, keyed by locale: queries from
// different locales are served concurrently, so there is no process-wide
// current language.
package i18n

import (
	"errors"
	"strings"
)

// Supported locales.
const (
	LocaleJA = "ja"
	LocaleEN = "en"
)

// DefaultLocale is substituted when a request carries an unsupported or
// empty locale.
const DefaultLocale = LocaleJA

// ErrUnsupportedLocale reports a locale outside the allowed set. Resolve
// recovers from it by substituting DefaultLocale; it is exported so
// callers can still observe the substitution.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// messages stores all translations, keyed by locale then message key.
var messages = map[string]map[string]string{
	LocaleJA: japaneseMessages,
	LocaleEN: englishMessages,
}

// Resolve normalizes a requested locale to one of the supported set.
// Unsupported or empty values yield DefaultLocale plus
// ErrUnsupportedLocale so the caller can log the substitution.
func Resolve(locale string) (string, error) {
	switch normalize(locale) {
	case "ja", "jp", "ja-jp", "japanese":
		return LocaleJA, nil
	case "en", "en-us", "en-gb", "english":
		return LocaleEN, nil
	case "":
		return DefaultLocale, nil
	default:
		return DefaultLocale, ErrUnsupportedLocale
	}
}

// Supported returns the allowed locale codes.
func Supported() []string {
	return []string{LocaleJA, LocaleEN}
}

// T returns the message for key in the given locale, falling back to
// Japanese and finally to the key itself so a missing translation is
// visible rather than silent.
func T(locale, key string) string {
	if msg, ok := messages[locale][key]; ok {
		return msg
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// LanguageName returns the human-readable language name used in the
// prompt's language-lock directive.
func LanguageName(locale string) string {
	switch locale {
	case LocaleJA:
		return "Japanese"
	case LocaleEN:
		return "English"
	default:
		return "Japanese"
	}
}

func normalize(locale string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(locale, "_", "-")))
}
