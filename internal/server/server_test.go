package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-rentalform/pkg/address"
	"github.com/goliatone/go-rentalform/pkg/gateway"
	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/render"
	"github.com/goliatone/go-rentalform/pkg/renderers/html"
	"github.com/goliatone/go-rentalform/pkg/renderers/jsonview"
	"github.com/goliatone/go-rentalform/pkg/testsupport"
	"github.com/goliatone/go-rentalform/pkg/wizard"
)

type browser struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newBrowser(t *testing.T, srv *Server) *browser {
	t.Helper()
	b := &browser{t: t, handler: srv.Handler()}
	rec := b.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("first visit: status %d", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			b.cookie = c
		}
	}
	if b.cookie == nil {
		t.Fatalf("expected %s cookie", SessionCookie)
	}
	return b
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	return rec
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	return rec
}

func (b *browser) session(srv *Server) *Session {
	b.t.Helper()
	sess, ok := srv.Sessions().Get(b.cookie.Value)
	if !ok {
		b.t.Fatalf("session %s not found", b.cookie.Value)
	}
	return sess
}

func contactForm(sess *Session) url.Values {
	return url.Values{
		render.CSRFFieldName: {sess.CSRF},
		render.PageFieldName: {model.PageContact.String()},
		"firstName":          {"Ada"},
		"lastName":           {"Lovelace"},
		"email":              {"ada@example.com"},
		"phone":              {"5551234567"},
	}
}

func detailsForm(sess *Session, action string) url.Values {
	return url.Values{
		render.CSRFFieldName:    {sess.CSRF},
		render.PageFieldName:    {model.PageDetails.String()},
		"knowRampLength":        {"yes"},
		"estimatedRampLength":   {"12"},
		"knowRentalDuration":    {"no"},
		"installationTimeframe": {string(model.TimeframeWithin2Days)},
		"mobilityAids":          {"wheelchair", "walker_cane"},
		"installAddress":        {"1 Main St"},
		"action":                {action},
	}
}

func confirmingGateway(calls *[]model.FormState) wizard.Gateway {
	return wizard.GatewayFunc(func(_ context.Context, state model.FormState) (model.Confirmation, error) {
		*calls = append(*calls, state)
		return testsupport.Confirmation("req-42"), nil
	})
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	srv, err := New(opts...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func TestServer_FirstVisitCreatesSession(t *testing.T) {
	srv := newTestServer(t)
	b := newBrowser(t, srv)

	if !b.cookie.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}
	sess := b.session(srv)

	rec := b.get("/")
	body := rec.Body.String()
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}
	if !strings.Contains(body, `value="`+sess.CSRF+`"`) {
		t.Fatalf("expected csrf token in page")
	}
	if !strings.Contains(body, `name="firstName"`) {
		t.Fatalf("expected contact page, got:\n%s", body)
	}
	if stats := srv.Sessions().Stats(); stats.Created != 1 || stats.Active != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestServer_ContactAdvancesToDetails(t *testing.T) {
	srv := newTestServer(t)
	b := newBrowser(t, srv)
	sess := b.session(srv)

	rec := b.post("/contact", contactForm(sess))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	state := sess.Wizard.Snapshot()
	if state.Page != model.PageDetails {
		t.Fatalf("expected details page, got %v", state.Page)
	}
	if state.Contact.Phone != "(555) 123-4567" {
		t.Fatalf("phone not formatted: %q", state.Contact.Phone)
	}
	if body := b.get("/").Body.String(); !strings.Contains(body, `name="installationTimeframe"`) {
		t.Fatalf("expected details page markup")
	}
}

func TestServer_RejectsBadCSRFToken(t *testing.T) {
	srv := newTestServer(t)
	b := newBrowser(t, srv)
	sess := b.session(srv)

	form := contactForm(sess)
	form.Set(render.CSRFFieldName, "forged")
	rec := b.post("/contact", form)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if got := sess.Wizard.Snapshot().Contact.FirstName; got != "" {
		t.Fatalf("forged post must not change state, got %q", got)
	}
}

func TestServer_MissingSessionRedirects(t *testing.T) {
	srv := newTestServer(t)
	b := &browser{t: t, handler: srv.Handler()}

	rec := b.post("/contact", url.Values{"firstName": {"Ada"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
}

func TestServer_InvalidContactJSON(t *testing.T) {
	srv := newTestServer(t)
	b := newBrowser(t, srv)
	sess := b.session(srv)

	form := contactForm(sess)
	form.Set("email", "not-an-email")
	rec := b.post("/contact?format=json", form)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var doc jsonview.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Page != "contact" {
		t.Fatalf("expected contact page, got %q", doc.Page)
	}
	if doc.Errors["email"] == "" {
		t.Fatalf("expected email error, got %v", doc.Errors)
	}
}

func TestServer_StalePagePost(t *testing.T) {
	srv := newTestServer(t)
	b := newBrowser(t, srv)
	sess := b.session(srv)

	form := contactForm(sess)
	form.Set(render.PageFieldName, model.PageDetails.String())
	rec := b.post("/contact?format=json", form)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if sess.Wizard.Snapshot().Contact.FirstName != "" {
		t.Fatalf("stale post must not change state")
	}
}

func TestServer_SectionPostWithoutMarkerMustMatchPage(t *testing.T) {
	srv := newTestServer(t)
	b := newBrowser(t, srv)
	sess := b.session(srv)

	details := detailsForm(sess, "")
	details.Del(render.PageFieldName)
	if rec := b.post("/details?format=json", details); rec.Code != http.StatusConflict {
		t.Fatalf("details on contact page: expected 409, got %d", rec.Code)
	}
	if got := sess.Wizard.Snapshot().InstallAddress; got != "" {
		t.Fatalf("details post must not apply on the contact page, got %q", got)
	}

	if rec := b.post("/contact", contactForm(sess)); rec.Code != http.StatusSeeOther {
		t.Fatalf("contact: status %d", rec.Code)
	}
	contact := contactForm(sess)
	contact.Del(render.PageFieldName)
	contact.Set("firstName", "Grace")
	if rec := b.post("/contact?format=json", contact); rec.Code != http.StatusConflict {
		t.Fatalf("contact on details page: expected 409, got %d", rec.Code)
	}
	if got := sess.Wizard.Snapshot().Contact.FirstName; got != "Ada" {
		t.Fatalf("contact must be unchanged, got %q", got)
	}
}

func TestServer_SubmitFailureShowsFormErrors(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":{"office":"Closed today","reason":"Try later"}}`))
	}))
	defer api.Close()

	client, err := gateway.New(gateway.WithBaseURL(api.URL))
	if err != nil {
		t.Fatalf("gateway: %v", err)
	}
	srv := newTestServer(t, WithGateway(client))
	b := newBrowser(t, srv)
	sess := b.session(srv)

	b.post("/contact", contactForm(sess))
	rec := b.post("/details?format=json", detailsForm(sess, "submit"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var doc jsonview.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Page != "details" {
		t.Fatalf("expected details page, got %q", doc.Page)
	}
	if doc.Banner != "Closed today" {
		t.Fatalf("expected first form error as banner, got %q", doc.Banner)
	}
	if diff := cmp.Diff([]string{"Try later"}, doc.FormErrors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_EditsRejectedWhileSubmitting(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var sent model.FormState
	srv := newTestServer(t, WithGateway(wizard.GatewayFunc(func(_ context.Context, state model.FormState) (model.Confirmation, error) {
		sent = state
		close(entered)
		<-release
		return testsupport.Confirmation("req-7"), nil
	})))
	b := newBrowser(t, srv)
	sess := b.session(srv)
	b.post("/contact", contactForm(sess))

	done := make(chan int)
	go func() {
		done <- b.post("/details?format=json", detailsForm(sess, "submit")).Code
	}()
	<-entered

	edit := detailsForm(sess, "submit")
	edit.Set("installAddress", "9 Elm St")
	if rec := b.post("/details?format=json", edit); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while in flight, got %d", rec.Code)
	}
	close(release)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("submit: status %d", code)
	}

	state := sess.Wizard.Snapshot()
	if state.InstallAddress != "1 Main St" || sent.InstallAddress != "1 Main St" {
		t.Fatalf("address changed during flight: sent %q, kept %q", sent.InstallAddress, state.InstallAddress)
	}
	if state.Page != model.PageConfirmation {
		t.Fatalf("expected confirmation page, got %v", state.Page)
	}
}

func TestServer_SubmitsDetails(t *testing.T) {
	var calls []model.FormState
	srv := newTestServer(t, WithGateway(confirmingGateway(&calls)))
	b := newBrowser(t, srv)
	sess := b.session(srv)

	if rec := b.post("/contact", contactForm(sess)); rec.Code != http.StatusSeeOther {
		t.Fatalf("contact: status %d", rec.Code)
	}
	if rec := b.post("/details", detailsForm(sess, "submit")); rec.Code != http.StatusSeeOther {
		t.Fatalf("details: status %d", rec.Code)
	}

	if len(calls) != 1 {
		t.Fatalf("expected one submission, got %d", len(calls))
	}
	want := []model.Aid{model.AidWheelchair, model.AidWalkerCane}
	if diff := cmp.Diff(want, calls[0].Details.MobilityAids.Slice()); diff != "" {
		t.Fatalf("aids mismatch (-want +got):\n%s", diff)
	}

	state := sess.Wizard.Snapshot()
	if state.Page != model.PageConfirmation || state.Submission.Status != model.SubmissionSucceeded {
		t.Fatalf("unexpected state page=%v status=%v", state.Page, state.Submission.Status)
	}
	if body := b.get("/").Body.String(); !strings.Contains(body, "req-42") {
		t.Fatalf("expected confirmation id in page")
	}

	form := url.Values{
		render.CSRFFieldName: {sess.CSRF},
		render.PageFieldName: {model.PageConfirmation.String()},
	}
	if rec := b.post("/start-over", form); rec.Code != http.StatusSeeOther {
		t.Fatalf("start over: status %d", rec.Code)
	}
	if page := sess.Wizard.Snapshot().Page; page != model.PageContact {
		t.Fatalf("expected contact page after start over, got %v", page)
	}
}

func TestServer_DetailsPreviousKeepsInput(t *testing.T) {
	srv := newTestServer(t)
	b := newBrowser(t, srv)
	sess := b.session(srv)

	b.post("/contact", contactForm(sess))
	form := detailsForm(sess, "previous")
	form.Set("installationTimeframe", "")
	b.post("/details", form)

	state := sess.Wizard.Snapshot()
	if state.Page != model.PageContact {
		t.Fatalf("expected contact page, got %v", state.Page)
	}
	if state.InstallAddress != "1 Main St" {
		t.Fatalf("expected address to be kept, got %q", state.InstallAddress)
	}
}

func TestServer_SubmitWithoutGateway(t *testing.T) {
	srv := newTestServer(t)
	b := newBrowser(t, srv)
	sess := b.session(srv)

	b.post("/contact", contactForm(sess))
	rec := b.post("/details", detailsForm(sess, "submit"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestServer_LocaleFromQuery(t *testing.T) {
	translator, err := render.NewI18nTranslator()
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	srv := newTestServer(t, WithTranslator(translator))
	b := newBrowser(t, srv)

	rec := b.get("/?lang=es")
	if !strings.Contains(rec.Body.String(), `lang="es"`) {
		t.Fatalf("expected spanish page")
	}
	if got := b.session(srv).Locale(); got != "es" {
		t.Fatalf("expected session locale es, got %q", got)
	}
}

func TestServer_NegotiatesJSONFromAccept(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON document, got %q", ct)
	}
	var doc jsonview.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Page != model.PageContact.String() {
		t.Fatalf("unexpected page %q", doc.Page)
	}

	req = httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(""))
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a JSON client without session, got %d", rec.Code)
	}
}

func TestServer_AddressSuggestionsRequireSession(t *testing.T) {
	resolver := address.NewStaticResolver("1 Main St, Springfield, IL, USA", "9 Elm Rd, Shelbyville, IL, USA")
	srv := newTestServer(t, WithAddressResolver(resolver, address.DefaultCountry))

	anon := &browser{t: t, handler: srv.Handler()}
	if rec := anon.get("/api/addresses?q=main"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without session, got %d", rec.Code)
	}

	b := newBrowser(t, srv)
	rec := b.get("/api/addresses?q=main")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Data []address.Suggestion `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Value != "1 Main St, Springfield, IL, USA" {
		t.Fatalf("unexpected suggestions %+v", payload.Data)
	}
}

func TestServer_ResolveAddress(t *testing.T) {
	resolver := address.NewStaticResolver("1 Main St, Springfield, IL, USA")
	srv := newTestServer(t, WithAddressResolver(resolver, address.DefaultCountry))
	b := newBrowser(t, srv)
	sess := b.session(srv)

	b.post("/contact", contactForm(sess))
	form := detailsForm(sess, "")
	form.Set("installAddress", "1 main")
	if rec := b.post("/address/resolve", form); rec.Code != http.StatusSeeOther {
		t.Fatalf("resolve: status %d", rec.Code)
	}
	if got := sess.Wizard.Snapshot().InstallAddress; got != "1 Main St, Springfield, IL, USA" {
		t.Fatalf("address not resolved: %q", got)
	}
}

func TestServer_ServesStylesheet(t *testing.T) {
	srv := newTestServer(t)
	b := &browser{t: t, handler: srv.Handler()}

	rec := b.get(html.DefaultBaseStylesheet)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".rentalform__card") {
		t.Fatalf("unexpected stylesheet body")
	}
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)
	b := &browser{t: t, handler: srv.Handler()}

	if rec := b.get("/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before serving, got %d", rec.Code)
	}

	srv.ready.Store(true)
	rec := b.get("/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Status   string       `json:"status"`
		Sessions SessionStats `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("unexpected status %q", payload.Status)
	}
}

func TestSessionStore_ExpiresIdleSessions(t *testing.T) {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Minute, nil)
	store.now = func() time.Time { return now }

	stale, err := store.Create("en")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	now = now.Add(45 * time.Second)
	fresh, err := store.Create("en")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now = now.Add(30 * time.Second)
	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("expected one expired session, got %d", removed)
	}
	if _, ok := store.Get(stale.ID); ok {
		t.Fatalf("stale session must be gone")
	}
	if _, ok := store.Get(fresh.ID); !ok {
		t.Fatalf("fresh session must survive")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(fresh.ID); ok {
		t.Fatalf("session must expire on access")
	}
	want := SessionStats{Active: 0, Created: 2, Expired: 2}
	if diff := cmp.Diff(want, store.Stats()); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_ValidToken(t *testing.T) {
	sess := &Session{CSRF: "abc"}
	if !sess.ValidToken("abc") || sess.ValidToken("abd") || sess.ValidToken("") {
		t.Fatalf("unexpected token comparison")
	}
}
