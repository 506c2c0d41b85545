package template

// TemplateRenderer renders a named template with page data. Names may omit
// the engine's file extension.
type TemplateRenderer interface {
	RenderTemplate(name string, data any) (string, error)
}

// Parser is implemented by engines that can compile templates ahead of the
// first render, so broken templates fail at startup.
type Parser interface {
	Parse(names ...string) error
}
