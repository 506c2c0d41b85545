package addresses

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-rentalform/pkg/address"
)

// DefaultRoute is where Mount puts the handler under its base path.
const DefaultRoute = "/api/addresses"

// Denied is returned by guards to refuse a lookup with a specific status.
// Other guard errors answer 403.
type Denied struct {
	Status int
	Reason string
}

func (d Denied) Error() string {
	if d.Reason != "" {
		return d.Reason
	}
	return http.StatusText(d.Status)
}

// Mux is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Option configures a Handler.
type Option func(*Handler)

// WithRoute changes the path Mount registers under the base path.
func WithRoute(route string) Option {
	return func(h *Handler) {
		if route = strings.TrimSpace(route); route != "" {
			h.route = route
		}
	}
}

// WithCountry restricts lookups to an ISO 3166-1 alpha-2 country. An empty
// value lifts the restriction.
func WithCountry(country string) Option {
	return func(h *Handler) {
		h.country = strings.ToLower(strings.TrimSpace(country))
	}
}

// WithLimits sets the result count used when the request names none and the
// ceiling applied when it does.
func WithLimits(fallback, ceiling int) Option {
	return func(h *Handler) {
		if fallback > 0 {
			h.limit = fallback
		}
		if ceiling > 0 {
			h.maxLimit = ceiling
		}
	}
}

// WithMinQuery skips the resolver for queries shorter than n runes.
func WithMinQuery(n int) Option {
	return func(h *Handler) {
		h.minQuery = max(n, 0)
	}
}

// WithTimeout bounds each resolver call.
func WithTimeout(timeout time.Duration) Option {
	return func(h *Handler) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithGuard runs guard before every lookup. A non-nil error refuses it.
func WithGuard(guard func(*http.Request) error) Option {
	return func(h *Handler) {
		h.guard = guard
	}
}

// WithLogger sets where resolver failures are reported.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Handler answers suggestion queries.
type Handler struct {
	resolver address.Resolver
	route    string
	country  string
	limit    int
	maxLimit int
	minQuery int
	timeout  time.Duration
	guard    func(*http.Request) error
	logger   *slog.Logger
}

// New builds a Handler around resolver. A nil resolver answers every query
// with an empty list.
func New(resolver address.Resolver, options ...Option) *Handler {
	h := &Handler{
		resolver: resolver,
		route:    DefaultRoute,
		country:  address.DefaultCountry,
		limit:    5,
		maxLimit: 10,
		minQuery: 3,
		timeout:  3 * time.Second,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Mount registers h on mux under base and returns the full path.
func (h *Handler) Mount(mux Mux, base string) (string, error) {
	if mux == nil {
		return "", errors.New("addresses: mux is nil")
	}
	route := h.Path(base)
	mux.Handle(route, h)
	return route, nil
}

// Path is the route Mount would register under base.
func (h *Handler) Path(base string) string {
	route := "/" + strings.TrimLeft(h.route, "/")
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return route
	}
	joined := path.Join("/"+base, route)
	if strings.HasSuffix(route, "/") {
		joined += "/"
	}
	return joined
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.guard != nil {
		if err := h.guard(r); err != nil {
			status := http.StatusForbidden
			var denied Denied
			if errors.As(err, &denied) && denied.Status > 0 {
				status = denied.Status
			}
			http.Error(w, http.StatusText(status), status)
			return
		}
	}

	query := r.URL.Query()
	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil {
		limit = 0
	}
	found := h.Suggest(r.Context(), query.Get("q"), limit)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(struct {
		Data []address.Suggestion `json:"data"`
	}{Data: found})
}

// Suggest runs one lookup. limit 0 means the default, negative means none.
// The result is never nil.
func (h *Handler) Suggest(ctx context.Context, text string, limit int) []address.Suggestion {
	found := []address.Suggestion{}
	text = strings.TrimSpace(text)
	limit = h.clamp(limit)
	if limit == 0 || h.resolver == nil || utf8.RuneCountInString(text) < h.minQuery {
		return found
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	results, err := h.resolver.Suggest(ctx, address.Query{Text: text, Country: h.country}, limit)
	if err != nil {
		h.logger.Warn("address suggestions failed", "error", err)
		return found
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return append(found, results...)
}

func (h *Handler) clamp(limit int) int {
	switch {
	case limit < 0:
		return 0
	case limit == 0:
		return min(h.limit, h.maxLimit)
	default:
		return min(limit, h.maxLimit)
	}
}
