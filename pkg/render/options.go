package render

import (
	"errors"
	"strings"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator has been configured.
var ErrMissingTranslator = errors.New("render: translator is not configured")

// Translator resolves a message key for a locale. Args may carry a single
// map[string]any used as template data by implementations that support it.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler decides what a template shows for a key that
// could not be translated. fallback is the default the template passed, if
// any.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

// Localize translates key, returning fallback when the translator is nil, the
// key is missing or the translation is blank.
func Localize(t Translator, locale, key, fallback string, args ...any) string {
	key = strings.TrimSpace(key)
	if key == "" || t == nil {
		return fallback
	}
	msg, err := t.Translate(locale, key, args...)
	if err != nil || strings.TrimSpace(msg) == "" {
		if fallback != "" {
			return fallback
		}
		return key
	}
	return msg
}
