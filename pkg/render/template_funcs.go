package render

import (
	"strings"
)

// TemplateI18nConfig tunes the helpers returned by TemplateI18nFuncs.
type TemplateI18nConfig struct {
	// FuncName renames the translate helper.
	FuncName string
	// OnMissing replaces the default of showing the fallback, then the key.
	OnMissing MissingTranslationHandler
}

// TemplateI18nFuncs returns the helpers page templates call:
//
//	translate(locale, key)
//	translate(locale, key, fallback)
//	translate(locale, key, fallback, data)
//	current_locale(src)
//
// locale may be a tag, a View or page data carrying a "locale" entry.
func TemplateI18nFuncs(t Translator, cfg TemplateI18nConfig) map[string]any {
	name := strings.TrimSpace(cfg.FuncName)
	if name == "" {
		name = "translate"
	}
	h := templateI18n{translator: t, onMissing: cfg.OnMissing}
	return map[string]any{
		name:             h.translate,
		"current_locale": localeOf,
	}
}

type templateI18n struct {
	translator Translator
	onMissing  MissingTranslationHandler
}

func (h templateI18n) translate(src any, key string, rest ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	locale := localeOf(src)

	var fallback string
	var args []any
	for _, arg := range rest {
		switch v := arg.(type) {
		case string:
			fallback = v
		case map[string]any:
			args = []any{v}
		}
	}

	if h.translator == nil {
		return h.missing(locale, key, fallback, ErrMissingTranslator)
	}
	msg, err := h.translator.Translate(locale, key, args...)
	if err != nil || strings.TrimSpace(msg) == "" {
		return h.missing(locale, key, fallback, err)
	}
	return msg
}

func (h templateI18n) missing(locale, key, fallback string, err error) string {
	if h.onMissing != nil {
		return h.onMissing(locale, key, fallback, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// localeOf extracts a locale from whatever a template has at hand.
func localeOf(src any) string {
	switch v := src.(type) {
	case string:
		return v
	case View:
		return v.Locale
	case *View:
		if v != nil {
			return v.Locale
		}
	case map[string]any:
		locale, _ := v["locale"].(string)
		return locale
	case map[string]string:
		return v["locale"]
	}
	return ""
}
