package render

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var embeddedLocales embed.FS

// LocalesFS exposes the built-in message catalogs (one TOML file per locale).
func LocalesFS() fs.FS {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		return embeddedLocales
	}
	return sub
}

// I18nOption configures an I18nTranslator.
type I18nOption func(*i18nConfig)

type i18nConfig struct {
	defaultLanguage language.Tag
	files           []messageFile
	catalogs        []fs.FS
	skipBuiltins    bool
}

type messageFile struct {
	name string
	data []byte
}

// WithDefaultLanguage sets the bundle language used when no requested locale
// matches.
func WithDefaultLanguage(tag language.Tag) I18nOption {
	return func(cfg *i18nConfig) {
		cfg.defaultLanguage = tag
	}
}

// WithMessageFile adds a message file; name must carry the locale and the
// format extension, e.g. "fr.toml".
func WithMessageFile(name string, data []byte) I18nOption {
	return func(cfg *i18nConfig) {
		if strings.TrimSpace(name) == "" || len(data) == 0 {
			return
		}
		cfg.files = append(cfg.files, messageFile{name: name, data: data})
	}
}

// WithCatalogFS loads every *.toml file found at the root of fsys. Files
// loaded later override keys defined by the built-in catalogs.
func WithCatalogFS(fsys fs.FS) I18nOption {
	return func(cfg *i18nConfig) {
		if fsys != nil {
			cfg.catalogs = append(cfg.catalogs, fsys)
		}
	}
}

// WithoutBuiltinCatalogs skips the embedded catalogs.
func WithoutBuiltinCatalogs() I18nOption {
	return func(cfg *i18nConfig) {
		cfg.skipBuiltins = true
	}
}

// I18nTranslator implements Translator on top of a go-i18n bundle.
type I18nTranslator struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
	tags    []language.Tag

	mu         sync.Mutex
	localizers map[string]*i18n.Localizer
}

var _ Translator = (*I18nTranslator)(nil)

// NewI18nTranslator builds a translator from the built-in catalogs plus any
// configured message files.
func NewI18nTranslator(options ...I18nOption) (*I18nTranslator, error) {
	cfg := i18nConfig{defaultLanguage: language.English}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	bundle := i18n.NewBundle(cfg.defaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	catalogs := cfg.catalogs
	if !cfg.skipBuiltins {
		catalogs = append([]fs.FS{LocalesFS()}, catalogs...)
	}
	for _, catalog := range catalogs {
		if err := loadCatalog(bundle, catalog); err != nil {
			return nil, err
		}
	}
	for _, file := range cfg.files {
		if _, err := bundle.ParseMessageFileBytes(file.data, file.name); err != nil {
			return nil, fmt.Errorf("render: parse messages %s: %w", file.name, err)
		}
	}

	tags := bundle.LanguageTags()
	if len(tags) == 0 {
		return nil, errors.New("render: no message catalogs loaded")
	}

	return &I18nTranslator{
		bundle:     bundle,
		matcher:    language.NewMatcher(tags),
		tags:       tags,
		localizers: make(map[string]*i18n.Localizer),
	}, nil
}

func loadCatalog(bundle *i18n.Bundle, fsys fs.FS) error {
	matches, err := fs.Glob(fsys, "*.toml")
	if err != nil {
		return fmt.Errorf("render: list catalogs: %w", err)
	}
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("render: read catalog %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, path.Base(name)); err != nil {
			return fmt.Errorf("render: parse catalog %s: %w", name, err)
		}
	}
	return nil
}

// Translate localizes key for locale. locale may be a single tag ("es") or
// a raw Accept-Language header. A single map[string]any arg is used as
// template data.
func (t *I18nTranslator) Translate(locale, key string, args ...any) (string, error) {
	if t == nil || t.bundle == nil {
		return "", ErrMissingTranslator
	}
	cfg := &i18n.LocalizeConfig{MessageID: key}
	if len(args) > 0 {
		if data, ok := args[0].(map[string]any); ok {
			cfg.TemplateData = data
		}
	}
	return t.localizer(locale).Localize(cfg)
}

// MatchLocale picks the best supported locale for an Accept-Language header
// (or a plain tag). It returns the bundle default when nothing matches.
func (t *I18nTranslator) MatchLocale(accept string) string {
	if t == nil || len(t.tags) == 0 {
		return ""
	}
	requested, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(requested) == 0 {
		return t.tags[0].String()
	}
	_, index, confidence := t.matcher.Match(requested...)
	if confidence == language.No {
		return t.tags[0].String()
	}
	return t.tags[index].String()
}

// Locales lists the supported locales, default first.
func (t *I18nTranslator) Locales() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.tags))
	for i, tag := range t.tags {
		out[i] = tag.String()
	}
	return out
}

func (t *I18nTranslator) localizer(locale string) *i18n.Localizer {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.localizers[locale]; ok {
		return l
	}
	l := i18n.NewLocalizer(t.bundle, locale)
	t.localizers[locale] = l
	return l
}
