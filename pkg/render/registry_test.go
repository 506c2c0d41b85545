package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-rentalform/pkg/render"
)

type stubRenderer struct {
	name        string
	contentType string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return s.contentType }
func (s stubRenderer) Render(context.Context, render.View) ([]byte, error) {
	return []byte(s.name), nil
}

func newRegistry(t *testing.T) *render.Registry {
	t.Helper()
	reg := render.NewRegistry()
	for _, r := range []stubRenderer{
		{"html", "text/html; charset=utf-8"},
		{"json", "application/json; charset=utf-8"},
	} {
		if err := reg.Register(r); err != nil {
			t.Fatalf("register %s: %v", r.name, err)
		}
	}
	return reg
}

func TestRegistry_Negotiate(t *testing.T) {
	reg := newRegistry(t)

	cases := []struct {
		name   string
		format string
		accept string
		want   string
	}{
		{"no hints", "", "", "html"},
		{"explicit format", "json", "text/html", "json"},
		{"unknown format falls back to accept", "xml", "application/json", "json"},
		{"browser", "", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", "html"},
		{"api client", "", "application/json", "json"},
		{"quality order", "", "text/html;q=0.5, application/json", "json"},
		{"refused type", "", "application/json;q=0, text/plain", "html"},
		{"wildcard", "", "*/*", "html"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := reg.Negotiate(tc.format, tc.accept)
			if err != nil {
				t.Fatalf("negotiate: %v", err)
			}
			if got.Name() != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got.Name())
			}
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	reg := newRegistry(t)

	if err := reg.Register(stubRenderer{name: "html", contentType: "text/html"}); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	if err := reg.Register(stubRenderer{name: " ", contentType: "text/plain"}); err == nil {
		t.Fatalf("expected empty name error")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected nil renderer error")
	}
	if diff := cmp.Diff([]string{"html", "json"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if _, err := reg.Get("xml"); err == nil {
		t.Fatalf("expected missing renderer error")
	}
	if _, err := render.NewRegistry().Negotiate("", ""); err == nil {
		t.Fatalf("expected error from empty registry")
	}
}
