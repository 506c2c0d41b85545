package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/render"
	"github.com/goliatone/go-rentalform/pkg/renderers/html"
	"github.com/goliatone/go-rentalform/pkg/wizard"
)

// errStalePage marks a post rendered for a page the wizard has since left.
var errStalePage = errors.New("server: form posted for a stale page")

type mutation func(ctx context.Context, sess *Session, form url.Values) error

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(r)
	if !ok {
		var err error
		sess, err = s.sessions.Create(s.localeFor(r))
		if err != nil {
			s.logger.Error("create session", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.setCookie(w, sess)
		s.logger.Debug("session created", "session", shortID(sess.ID))
	} else if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		sess.SetLocale(s.matchLocale(lang))
	}
	s.renderView(w, r, sess, http.StatusOK)
}

// mutate wraps a state-changing handler: it loads the session, enforces the
// CSRF token and the page marker, applies fn and answers with the new view.
func (s *Server) mutate(fn mutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessionFor(r)
		if !ok {
			if s.wantsData(r) {
				http.Error(w, "session expired", http.StatusForbidden)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if !sess.ValidToken(r.PostForm.Get(render.CSRFFieldName)) {
			s.logger.Warn("csrf token mismatch", "session", shortID(sess.ID), "path", r.URL.Path)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		err := checkPage(sess, r.PostForm.Get(render.PageFieldName))
		if err == nil {
			err = fn(r.Context(), sess, r.PostForm)
		}
		s.finish(w, r, sess, err)
	}
}

func (s *Server) finish(w http.ResponseWriter, r *http.Request, sess *Session, err error) {
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, wizard.ErrInvalid):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidValue), errors.Is(err, model.ErrUnknownField):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, wizard.ErrNoGateway):
		s.logger.Error("submission gateway missing")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	case errors.Is(err, errStalePage),
		errors.Is(err, wizard.ErrFormLocked),
		errors.Is(err, wizard.ErrWrongPage),
		errors.Is(err, wizard.ErrSubmissionInFlight),
		errors.Is(err, wizard.ErrAlreadySubmitted):
		s.logger.Debug("request ignored", "session", shortID(sess.ID), "reason", err)
		status = http.StatusConflict
	default:
		s.logger.Error("request failed", "session", shortID(sess.ID), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if s.wantsData(r) {
		s.renderView(w, r, sess, status)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleContact(_ context.Context, sess *Session, form url.Values) error {
	if err := requirePage(sess, model.PageContact); err != nil {
		return err
	}
	if err := sess.Wizard.ApplyChanges(changesFor(model.SectionContact, form)...); err != nil {
		return err
	}
	if !sess.Wizard.Next() {
		return wizard.ErrInvalid
	}
	return nil
}

func (s *Server) handleDetails(ctx context.Context, sess *Session, form url.Values) error {
	if err := requirePage(sess, model.PageDetails); err != nil {
		return err
	}
	action := strings.TrimSpace(form.Get("action"))
	if action == "previous" {
		// Leaving the page keeps what was typed without validating it.
		err := sess.Wizard.ApplyChanges(changesFor(model.SectionDetails, form)...)
		if errors.Is(err, wizard.ErrSubmissionInFlight) {
			return err
		}
		sess.Wizard.Previous()
		return nil
	}
	if err := sess.Wizard.ApplyChanges(changesFor(model.SectionDetails, form)...); err != nil {
		return err
	}
	if action != "submit" {
		return nil
	}

	sub, err := sess.Wizard.Submit(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("submission finished", "session", shortID(sess.ID), "status", sub.Status.String())
	return nil
}

func (s *Server) handleStartOver(_ context.Context, sess *Session, _ url.Values) error {
	return sess.Wizard.StartOver()
}

func (s *Server) handleResolveAddress(ctx context.Context, sess *Session, form url.Values) error {
	if sess.Wizard.Snapshot().Page == model.PageDetails {
		if err := sess.Wizard.ApplyChanges(changesFor(model.SectionDetails, form)...); err != nil {
			return err
		}
	}
	query := strings.TrimSpace(form.Get("q"))
	if query == "" {
		query = form.Get(model.FieldInstallAddress.FormName())
	}
	if s.resolver == nil {
		return nil
	}

	select {
	case <-sess.Wizard.ResolveAddress(ctx, s.resolver, query, s.country):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := http.StatusOK
	state := "ok"
	if !s.ready.Load() {
		status = http.StatusServiceUnavailable
		state = "starting"
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   state,
		"sessions": s.sessions.Stats(),
	})
}

func (s *Server) renderView(w http.ResponseWriter, r *http.Request, sess *Session, status int) {
	state := sess.Wizard.Snapshot()
	view := render.NewView(state, sess.Locale(),
		render.CSRFToken(render.CSRFFieldName, sess.CSRF),
		render.PageField(render.PageFieldName, state.Page),
	)
	view.SuggestURL = s.suggestURL

	renderer, err := s.negotiate(r)
	if err != nil {
		s.logger.Error("renderer lookup", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	body, err := renderer.Render(r.Context(), view)
	if err != nil {
		s.logger.Error("render page", "renderer", renderer.Name(), "page", state.Page.String(), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) sessionFor(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.Get(cookie.Value)
}

func (s *Server) setCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) localeFor(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return s.matchLocale(lang)
	}
	return s.matchLocale(r.Header.Get("Accept-Language"))
}

func (s *Server) matchLocale(accept string) string {
	if s.matcher == nil {
		return s.defaultLocale
	}
	if locale := s.matcher.MatchLocale(accept); locale != "" {
		return locale
	}
	return s.defaultLocale
}

func checkPage(sess *Session, posted string) error {
	if strings.TrimSpace(posted) == "" {
		return nil
	}
	page, ok := model.ParsePage(posted)
	if !ok || page != sess.Wizard.Snapshot().Page {
		return errStalePage
	}
	return nil
}

// requirePage rejects a section post that does not match the wizard's page,
// whether or not the client sent a page marker.
func requirePage(sess *Session, want model.Page) error {
	if sess.Wizard.Snapshot().Page != want {
		return errStalePage
	}
	return nil
}

// changesFor turns a form post into changes for every field of section.
// Missing checkbox groups clear the selection.
func changesFor(section model.Section, form url.Values) []model.Change {
	fields := model.SectionFields(section)
	changes := make([]model.Change, 0, len(fields))
	for _, field := range fields {
		name := field.FormName()
		if field == model.FieldMobilityAids {
			changes = append(changes, model.Set(field, append([]string{}, form[name]...)))
			continue
		}
		changes = append(changes, model.Set(field, form.Get(name)))
	}
	return changes
}

// wantsData reports whether the request negotiates something other than the
// HTML page. Those clients get status codes instead of redirects.
func (s *Server) wantsData(r *http.Request) bool {
	renderer, err := s.negotiate(r)
	return err == nil && renderer.Name() != html.Name
}

func (s *Server) negotiate(r *http.Request) (render.Renderer, error) {
	return s.renderers.Negotiate(r.URL.Query().Get("format"), r.Header.Get("Accept"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
