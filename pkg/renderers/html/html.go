// Package html renders the wizard pages as server-side HTML documents using
// the pongo2 template engine.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/render"
	rendertemplate "github.com/goliatone/go-rentalform/pkg/render/template"
	"github.com/goliatone/go-rentalform/pkg/render/template/gotemplate"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

// ThemeStylesheetAsset is the theme asset key resolved for the page
// stylesheet.
const ThemeStylesheetAsset = "rentalform.stylesheet"

// DefaultBaseStylesheet is where the server mounts AssetsFS.
const DefaultBaseStylesheet = "/assets/rentalform.css"

var pageTemplates = map[model.Page]string{
	model.PageContact:      "contact.tpl",
	model.PageDetails:      "details.tpl",
	model.PageConfirmation: "confirmation.tpl",
}

// Actions are the form targets emitted by the page templates.
type Actions struct {
	Contact        string
	Details        string
	StartOver      string
	ResolveAddress string
}

// DefaultActions matches the routes registered by the rentalform server.
var DefaultActions = Actions{
	Contact:        "/contact",
	Details:        "/details",
	StartOver:      "/start-over",
	ResolveAddress: "/address/resolve",
}

// Option customises the renderer configuration.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	overrides        []fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	translator       render.Translator
	theme            *theme.RendererConfig
	actions          Actions
	baseStylesheet   string
}

// WithTemplatesFS replaces the embedded template bundle. The bundle must carry
// every page template.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir layers a directory on disk over the templates. Files it
// holds shadow the bundled ones, anything missing falls through.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.overrides = append(cfg.overrides, os.DirFS(path))
	}
}

// WithTemplateRenderer injects a custom template renderer implementation. The
// renderer is expected to expose the translate helper itself.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTranslator wires the translator behind the translate template helper.
func WithTranslator(t render.Translator) Option {
	return func(cfg *config) {
		cfg.translator = t
	}
}

// WithTheme applies a resolved theme (see ThemeConfig) to every page.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithBaseStylesheet sets the URL of the structural stylesheet linked before
// any theme stylesheet. An empty url drops the link.
func WithBaseStylesheet(url string) Option {
	return func(cfg *config) {
		cfg.baseStylesheet = url
	}
}

// WithActions overrides the form targets, e.g. when the server is mounted
// under a prefix. Empty fields keep their defaults.
func WithActions(actions Actions) Option {
	return func(cfg *config) {
		if actions.Contact != "" {
			cfg.actions.Contact = actions.Contact
		}
		if actions.Details != "" {
			cfg.actions.Details = actions.Details
		}
		if actions.StartOver != "" {
			cfg.actions.StartOver = actions.StartOver
		}
		if actions.ResolveAddress != "" {
			cfg.actions.ResolveAddress = actions.ResolveAddress
		}
	}
}

// Renderer draws one wizard page per call.
type Renderer struct {
	templates      rendertemplate.TemplateRenderer
	theme          rendererTheme
	stylesheet     string
	baseStylesheet string
	actions        Actions
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs an HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:     TemplatesFS(),
		actions:        DefaultActions,
		baseStylesheet: DefaultBaseStylesheet,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	templateRenderer := cfg.templateRenderer
	if templateRenderer == nil {
		if cfg.templateFS == nil {
			return nil, fmt.Errorf("html renderer: template file system is nil")
		}
		layers := make([]gotemplate.Option, 0, len(cfg.overrides)+3)
		for i := len(cfg.overrides) - 1; i >= 0; i-- {
			layers = append(layers, gotemplate.WithFS(cfg.overrides[i]))
		}
		layers = append(layers,
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
			gotemplate.WithTemplateFunc(render.TemplateI18nFuncs(cfg.translator, render.TemplateI18nConfig{})),
		)
		engine, err := gotemplate.New(layers...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templateRenderer = engine
	}
	if parser, ok := templateRenderer.(rendertemplate.Parser); ok {
		if err := parser.Parse(pageTemplateNames()...); err != nil {
			return nil, fmt.Errorf("html renderer: %w", err)
		}
	}

	r := &Renderer{
		templates:      templateRenderer,
		theme:          buildThemeContext(cfg.theme),
		baseStylesheet: cfg.baseStylesheet,
		actions:        cfg.actions,
	}
	if cfg.theme != nil && cfg.theme.AssetURL != nil {
		r.stylesheet = cfg.theme.AssetURL(ThemeStylesheetAsset)
	}
	return r, nil
}

// Name identifies the renderer inside the registry.
func (r *Renderer) Name() string {
	return Name
}

// ContentType returns the MIME type for generated documents.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the HTML document for the page the view is on.
func (r *Renderer) Render(_ context.Context, view render.View) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	name, ok := pageTemplates[view.Page()]
	if !ok {
		return nil, fmt.Errorf("html renderer: no template for page %s", view.Page())
	}

	rendered, err := r.templates.RenderTemplate(name, r.templateData(view))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render %s: %w", name, err)
	}
	return []byte(rendered), nil
}

func pageTemplateNames() []string {
	return []string{
		pageTemplates[model.PageContact],
		pageTemplates[model.PageDetails],
		pageTemplates[model.PageConfirmation],
	}
}
