package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*.css
var embeddedAssets embed.FS

// TemplatesFS exposes the embedded page templates rooted at the template
// directory, so overrides only need to provide the files they replace.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// AssetsFS exposes the static files the pages link to. Typical mount:
//
//	mux.Handle("GET /assets/",
//	  http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())),
//	)
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
