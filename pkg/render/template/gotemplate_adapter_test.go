package template_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-rentalform/pkg/render"
	"github.com/goliatone/go-rentalform/pkg/render/template/gotemplate"
)

var templatesFS = fstest.MapFS{
	"hello.tpl":     {Data: []byte("Hello {{ name }}!")},
	"count.tpl":     {Data: []byte("{{ total }} items")},
	"aids.tpl":      {Data: []byte("{% if selected|contains:\"walker_cane\" %}walker{% else %}none{% endif %}")},
	"trim.tpl":      {Data: []byte("[{{ greeting|trim }}]")},
	"greet.tpl":     {Data: []byte("{{ shout(name) }}")},
	"translate.tpl": {Data: []byte("{{ translate(locale, \"action.next\", \"Next\") }}|{{ translate(locale, \"missing.key\", \"Fallback\") }}")},
	"layout.tpl":    {Data: []byte("<main>{% block body %}{% endblock %}</main>")},
	"page.tpl":      {Data: []byte("{% extends \"layout.tpl\" %}{% block body %}base page{% endblock %}")},
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "Hello Ada!"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}

	// names may carry the extension already
	if _, err := engine.RenderTemplate("hello.tpl", nil); err != nil {
		t.Fatalf("render with extension: %v", err)
	}
}

func TestEngine_DataGoesThroughJSON(t *testing.T) {
	engine := newEngine(t)

	type payload struct {
		Total int `json:"total"`
	}
	got, err := engine.RenderTemplate("count", payload{Total: 3})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "3 items"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestEngine_Filters(t *testing.T) {
	engine := newEngine(t)

	cases := []struct {
		name string
		tmpl string
		data map[string]any
		want string
	}{
		{"contains match", "aids", map[string]any{"selected": []string{"wheelchair", "walker_cane"}}, "walker"},
		{"contains empty", "aids", map[string]any{"selected": []string{}}, "none"},
		{"trim", "trim", map[string]any{"greeting": "  hi  "}, "[hi]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := engine.RenderTemplate(tc.tmpl, tc.data)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestEngine_TemplateFuncGlobals(t *testing.T) {
	engine, err := gotemplate.New(
		gotemplate.WithFS(templatesFS),
		gotemplate.WithTemplateFunc(map[string]any{
			"shout": func(s string) string { return strings.ToUpper(s) + "!" },
		}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.RenderTemplate("greet", map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "ADA!"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestEngine_RejectsNonFunctionHelpers(t *testing.T) {
	_, err := gotemplate.New(
		gotemplate.WithFS(templatesFS),
		gotemplate.WithTemplateFunc(map[string]any{"env": "staging"}),
	)
	if err == nil {
		t.Fatalf("expected error for non-function helper")
	}
}

func TestEngine_TranslateHelper(t *testing.T) {
	translator, err := render.NewI18nTranslator()
	if err != nil {
		t.Fatalf("translator: %v", err)
	}

	engine, err := gotemplate.New(
		gotemplate.WithFS(templatesFS),
		gotemplate.WithTemplateFunc(render.TemplateI18nFuncs(translator, render.TemplateI18nConfig{})),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.RenderTemplate("translate", map[string]any{"locale": "es"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "Siguiente|Fallback"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestEngine_FirstSourceWins(t *testing.T) {
	override := fstest.MapFS{
		"hello.tpl": {Data: []byte("Hi {{ name }}")},
	}
	engine, err := gotemplate.New(gotemplate.WithFS(override), gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hi Ada" {
		t.Fatalf("expected override, got %q", got)
	}

	// templates the override lacks come from the next source
	got, err = engine.RenderTemplate("page", nil)
	if err != nil {
		t.Fatalf("render fallthrough: %v", err)
	}
	if want := "<main>base page</main>"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestEngine_Parse(t *testing.T) {
	engine := newEngine(t)

	if err := engine.Parse("hello", "page"); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := engine.Parse("hello", "absent"); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

func TestEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}

func TestEngine_ReloadPicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.tpl")
	if err := os.WriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	engine, err := gotemplate.New(gotemplate.WithFS(os.DirFS(dir)), gotemplate.WithReload(true))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if got, err := engine.RenderTemplate("note", nil); err != nil || got != "first" {
		t.Fatalf("first render: %q, %v", got, err)
	}

	if err := os.WriteFile(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got, err := engine.RenderTemplate("note", nil); err != nil || got != "second" {
		t.Fatalf("second render: %q, %v", got, err)
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
