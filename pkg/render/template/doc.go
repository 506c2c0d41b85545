// Package template is the seam between page renderers and a template engine.
// gotemplate implements it with pongo2.
package template
