package render

import (
	"fmt"
	"mime"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry holds the page renderers a server can answer with and picks one
// per request. The first renderer registered is the default.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]Renderer
	fallback string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Renderer)}
}

// Register adds renderer under its Name. A name can only be taken once.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := strings.TrimSpace(renderer.Name())
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.byName[name] = renderer
	if r.fallback == "" {
		r.fallback = name
	}
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// Get returns the renderer registered as name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// Names lists registered renderers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Negotiate picks the renderer for a request. An explicit format naming a
// registered renderer wins. Otherwise the Accept header is matched against
// each renderer's content type by quality, and the default answers anything
// unmatched, including wildcards.
func (r *Registry) Negotiate(format, accept string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if renderer, ok := r.byName[strings.TrimSpace(format)]; ok {
		return renderer, nil
	}
	for _, mediaType := range acceptedTypes(accept) {
		for _, renderer := range r.byName {
			if baseType(renderer.ContentType()) == mediaType {
				return renderer, nil
			}
		}
		if mediaType == "*/*" {
			break
		}
	}
	renderer, ok := r.byName[r.fallback]
	if !ok {
		return nil, fmt.Errorf("render: no renderer registered")
	}
	return renderer, nil
}

type acceptEntry struct {
	mediaType string
	quality   float64
}

// acceptedTypes returns the media types of an Accept header, best first.
// Entries with q=0 are dropped.
func acceptedTypes(header string) []string {
	var entries []acceptEntry
	for _, part := range strings.Split(header, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		quality := 1.0
		if q, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(q, 64); err == nil {
				quality = parsed
			}
		}
		if quality <= 0 {
			continue
		}
		entries = append(entries, acceptEntry{mediaType: mediaType, quality: quality})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].quality > entries[j].quality
	})

	types := make([]string, len(entries))
	for i, entry := range entries {
		types[i] = entry.mediaType
	}
	return types
}

func baseType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
