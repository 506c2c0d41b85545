// Package server serves the rental request wizard as server-rendered HTML
// pages, one wizard per browser session.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/atomic"

	"github.com/goliatone/go-rentalform/components/addresses"
	"github.com/goliatone/go-rentalform/pkg/address"
	"github.com/goliatone/go-rentalform/pkg/render"
	"github.com/goliatone/go-rentalform/pkg/renderers/html"
	"github.com/goliatone/go-rentalform/pkg/renderers/jsonview"
	"github.com/goliatone/go-rentalform/pkg/validation"
	"github.com/goliatone/go-rentalform/pkg/wizard"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "rentalform_session"

const maxFormBytes = 64 << 10

// LocaleMatcher picks a supported locale for an Accept-Language header.
type LocaleMatcher interface {
	MatchLocale(accept string) string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGateway sets the gateway every session wizard submits through.
func WithGateway(gateway wizard.Gateway) Option {
	return func(s *Server) {
		s.gateway = gateway
	}
}

// WithTranslator localizes validation messages and pages. When t also
// implements LocaleMatcher it is used to pick the session locale.
func WithTranslator(t render.Translator) Option {
	return func(s *Server) {
		s.translator = t
		if m, ok := t.(LocaleMatcher); ok && s.matcher == nil {
			s.matcher = m
		}
	}
}

// WithLocaleMatcher overrides how session locales are chosen.
func WithLocaleMatcher(m LocaleMatcher) Option {
	return func(s *Server) {
		s.matcher = m
	}
}

// WithDefaultLocale is used when no matcher is configured.
func WithDefaultLocale(locale string) Option {
	return func(s *Server) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			s.defaultLocale = trimmed
		}
	}
}

// WithRenderer registers an extra renderer, e.g. an HTML renderer built with
// a theme. A renderer named "html" replaces the default page renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.extraRenderers = append(s.extraRenderers, renderer)
		}
	}
}

// WithAddressResolver enables address suggestions and server-side lookup.
func WithAddressResolver(resolver address.Resolver, country string) Option {
	return func(s *Server) {
		s.resolver = resolver
		if trimmed := strings.TrimSpace(country); trimmed != "" {
			s.country = trimmed
		}
	}
}

// WithSessionTTL sets the idle lifetime of a session.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithCookieSecure marks the session cookie Secure.
func WithCookieSecure(secure bool) Option {
	return func(s *Server) {
		s.cookieSecure = secure
	}
}

// WithTimeouts sets the http.Server read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
	}
}

// Server wires sessions, renderers and routes.
type Server struct {
	logger        *slog.Logger
	gateway       wizard.Gateway
	translator    render.Translator
	matcher       LocaleMatcher
	defaultLocale string
	resolver      address.Resolver
	country       string
	sessionTTL    time.Duration
	cookieSecure  bool
	readTimeout   time.Duration
	writeTimeout  time.Duration

	extraRenderers []render.Renderer
	renderers      *render.Registry
	sessions       *SessionStore
	suggestURL     string
	mux            *http.ServeMux
	ready          atomic.Bool
}

// New builds a Server and registers its routes.
func New(options ...Option) (*Server, error) {
	s := &Server{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultLocale: "en",
		country:       address.DefaultCountry,
		sessionTTL:    30 * time.Minute,
		readTimeout:   15 * time.Second,
		writeTimeout:  30 * time.Second,
		renderers:     render.NewRegistry(),
		mux:           http.NewServeMux(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if err := s.registerRenderers(); err != nil {
		return nil, err
	}
	s.sessions = NewSessionStore(s.sessionTTL, s.newWizard)
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerRenderers puts the HTML page first so it answers unmatched Accept
// headers, then any extra renderers and the JSON document.
func (s *Server) registerRenderers() error {
	var page render.Renderer
	var extra []render.Renderer
	for _, r := range s.extraRenderers {
		if r.Name() == html.Name && page == nil {
			page = r
			continue
		}
		extra = append(extra, r)
	}
	if page == nil {
		built, err := html.New(html.WithTranslator(s.translator))
		if err != nil {
			return fmt.Errorf("server: html renderer: %w", err)
		}
		page = built
	}

	all := append([]render.Renderer{page}, extra...)
	all = append(all, jsonview.New(false))
	for _, r := range all {
		if s.renderers.Has(r.Name()) {
			continue
		}
		if err := s.renderers.Register(r); err != nil {
			return fmt.Errorf("server: register renderer %s: %w", r.Name(), err)
		}
	}
	return nil
}

func (s *Server) newWizard(locale string) *wizard.Wizard {
	validator := validation.New(validation.WithTranslator(s.translator, locale))
	return wizard.New(
		wizard.WithGateway(s.gateway),
		wizard.WithValidator(validator),
		wizard.WithLogger(s.logger),
	)
}

func (s *Server) routes() error {
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("POST /contact", s.mutate(s.handleContact))
	s.mux.HandleFunc("POST /details", s.mutate(s.handleDetails))
	s.mux.HandleFunc("POST /start-over", s.mutate(s.handleStartOver))
	s.mux.HandleFunc("POST /address/resolve", s.mutate(s.handleResolveAddress))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))

	if s.resolver != nil {
		suggest := addresses.New(s.resolver,
			addresses.WithCountry(s.country),
			addresses.WithLogger(s.logger),
			addresses.WithGuard(s.guardSuggestions),
		)
		route, err := suggest.Mount(s.mux, "")
		if err != nil {
			return fmt.Errorf("server: address routes: %w", err)
		}
		s.suggestURL = route
	}
	return nil
}

// guardSuggestions only serves address lookups to live sessions, so the
// Places quota is not open to anyone.
func (s *Server) guardSuggestions(r *http.Request) error {
	if _, ok := s.sessionFor(r); !ok {
		return addresses.Denied{Status: http.StatusForbidden, Reason: "session required"}
	}
	return nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Sessions exposes the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. The session janitor runs for the lifetime of the call.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readTimeout,
		WriteTimeout:      s.writeTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.sessions.Run(janitorCtx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.ready.Store(true)
	s.logger.Info("rentalform server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		s.ready.Store(false)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.ready.Store(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("rentalform server stopped")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}
