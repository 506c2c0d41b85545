// Package gotemplate renders page templates with pongo2 (Django syntax).
package gotemplate

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-rentalform/pkg/render/template"
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	layers    []fs.FS
	extension string
	funcs     map[string]any
	reload    bool
}

// WithFS adds a template source. Sources added first win, so an override
// directory goes before the embedded defaults.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.layers = append(cfg.layers, files)
		}
	}
}

// WithExtension sets the extension appended to bare template names.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.extension = ext
	}
}

// WithTemplateFunc exposes functions to every template. pongo2 filter
// functions are registered as filters, other funcs become callable globals.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		for name, fn := range funcs {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			if cfg.funcs == nil {
				cfg.funcs = make(map[string]any, len(funcs))
			}
			cfg.funcs[name] = fn
		}
	}
}

// WithReload parses templates on every render. Use it while editing
// templates on disk.
func WithReload(enabled bool) Option {
	return func(cfg *config) {
		cfg.reload = enabled
	}
}

// Engine renders templates from a pongo2 template set.
type Engine struct {
	set    *pongo2.TemplateSet
	ext    string
	reload bool

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

var (
	_ template.TemplateRenderer = (*Engine)(nil)
	_ template.Parser           = (*Engine)(nil)
)

// New builds an Engine. At least one template source is required.
func New(options ...Option) (*Engine, error) {
	cfg := config{extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if len(cfg.layers) == 0 {
		return nil, errors.New("gotemplate: no template source configured")
	}

	loaders := make([]pongo2.TemplateLoader, 0, len(cfg.layers))
	for _, layer := range cfg.layers {
		loaders = append(loaders, pongo2.NewFSLoader(layer))
	}
	set := pongo2.NewSet("rentalform", loaders...)
	set.Debug = cfg.reload

	registerFilters()
	globals := make(pongo2.Context, len(cfg.funcs))
	for name, fn := range cfg.funcs {
		if filter, ok := fn.(pongo2.FilterFunction); ok {
			if !pongo2.FilterExists(name) {
				if err := pongo2.RegisterFilter(name, filter); err != nil {
					return nil, fmt.Errorf("gotemplate: register filter %q: %w", name, err)
				}
			}
			continue
		}
		if reflect.ValueOf(fn).Kind() != reflect.Func {
			return nil, fmt.Errorf("gotemplate: %q is not a function", name)
		}
		globals[name] = fn
	}
	if set.Globals == nil {
		set.Globals = pongo2.Context{}
	}
	set.Globals.Update(globals)

	return &Engine{
		set:    set,
		ext:    cfg.extension,
		reload: cfg.reload,
		cache:  make(map[string]*pongo2.Template),
	}, nil
}

// Parse compiles and caches the named templates, including what they extend
// or include.
func (e *Engine) Parse(names ...string) error {
	for _, name := range names {
		if _, err := e.lookup(e.path(name)); err != nil {
			return err
		}
	}
	return nil
}

// RenderTemplate renders name with data. Data is normalised through JSON, so
// templates see maps, slices, strings, bools and float64 numbers.
func (e *Engine) RenderTemplate(name string, data any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	path := e.path(name)
	tmpl, err := e.lookup(path)
	if err != nil {
		return "", err
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data for %q: %w", path, err)
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", path, err)
	}
	return out, nil
}

func (e *Engine) path(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, e.ext) {
		return name
	}
	return name + e.ext
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	if e.reload {
		tmpl, err := e.set.FromFile(path)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: load %q: %w", path, err)
		}
		return tmpl, nil
	}

	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ctx := pongo2.Context{}
	if err := json.Unmarshal(raw, &ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("trim") {
			_ = pongo2.RegisterFilter("trim", filterTrim)
		}
		if !pongo2.FilterExists("contains") {
			_ = pongo2.RegisterFilter("contains", filterContains)
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterContains backs checkbox groups: {% if selected|contains:option.value %}.
func filterContains(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if param == nil {
		return pongo2.AsValue(false), nil
	}
	return pongo2.AsValue(in.Contains(param)), nil
}
