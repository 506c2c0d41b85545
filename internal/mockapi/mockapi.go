// Package mockapi is a stand-in for the rental requests API. It validates
// bodies against the same contract the gateway uses and answers with the
// documented success and failure shapes.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/atomic"

	"github.com/goliatone/go-rentalform/pkg/gateway"
)

// DuplicateMessage is answered with 409 when the same customer asks twice
// for the same address.
const DuplicateMessage = "Duplicate request"

// Option configures a Server.
type Option func(*Server)

// WithContract replaces the embedded contract.
func WithContract(contract *gateway.Contract) Option {
	return func(s *Server) {
		if contract != nil {
			s.contract = contract
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the createdAt clock.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLatency delays every answer, handy for exercising the in-flight state.
func WithLatency(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.latency = d
		}
	}
}

// Server accepts rental requests in memory.
type Server struct {
	contract *gateway.Contract
	logger   *slog.Logger
	now      func() time.Time
	latency  time.Duration

	seq      atomic.Int64
	mu       sync.Mutex
	seen     map[string]string
	accepted []gateway.RentalRequest
}

// New builds a Server over the embedded contract unless one is given.
func New(options ...Option) (*Server, error) {
	s := &Server{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		seen:   make(map[string]string),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.contract == nil {
		contract, err := gateway.DefaultContract()
		if err != nil {
			return nil, fmt.Errorf("mockapi: %w", err)
		}
		s.contract = contract
	}
	return s, nil
}

// Accepted returns the requests accepted so far.
func (s *Server) Accepted() []gateway.RentalRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.RentalRequest(nil), s.accepted...)
}

// Handler returns the fasthttp request handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.handle
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	switch {
	case path == "/healthz":
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		return
	case path != s.contract.Path():
		writeJSON(ctx, fasthttp.StatusNotFound, gateway.ErrorBody{Message: "Not found"})
		return
	case !ctx.IsPost():
		ctx.Response.Header.Set("Allow", fasthttp.MethodPost)
		writeJSON(ctx, fasthttp.StatusMethodNotAllowed, gateway.ErrorBody{Message: "Method not allowed"})
		return
	}

	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	body := ctx.PostBody()
	if err := s.contract.ValidateRequest(body); err != nil {
		s.logger.Info("rejected rental request", "error", err)
		writeJSON(ctx, fasthttp.StatusBadRequest, validationBody(err))
		return
	}

	var req gateway.RentalRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, gateway.ErrorBody{Message: "Invalid request body"})
		return
	}

	created, ok := s.accept(req)
	if !ok {
		s.logger.Info("duplicate rental request", "email", req.CustomerInfo.Email)
		writeJSON(ctx, fasthttp.StatusConflict, gateway.ErrorBody{Message: DuplicateMessage})
		return
	}
	s.logger.Info("accepted rental request", "id", created.ID, "email", req.CustomerInfo.Email)
	writeJSON(ctx, fasthttp.StatusCreated, created)
}

func (s *Server) accept(req gateway.RentalRequest) (gateway.Created, bool) {
	key := strings.ToLower(strings.TrimSpace(req.CustomerInfo.Email)) + "|" +
		strings.ToLower(strings.TrimSpace(req.InstallAddress))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[key]; dup {
		return gateway.Created{}, false
	}

	n := s.seq.Inc()
	created := gateway.Created{
		ID:         fmt.Sprintf("RR-%06d", n),
		CreatedAt:  s.now().UTC().Format(time.RFC3339),
		Message:    "Rental request submitted successfully",
		CustomerID: fmt.Sprintf("CUS-%06d", n),
		JobID:      fmt.Sprintf("JOB-%06d", n),
	}
	s.seen[key] = created.ID
	s.accepted = append(s.accepted, req)
	return created, true
}

func validationBody(err error) gateway.ErrorBody {
	body := gateway.ErrorBody{Message: "Validation failed"}
	var contractErr *gateway.ContractError
	if !errors.As(err, &contractErr) {
		return body
	}
	fields := make(map[string]any, len(contractErr.Issues))
	for _, issue := range contractErr.Issues {
		if issue.Path == "" {
			continue
		}
		fields[issue.Path] = issue.Message
	}
	if len(fields) > 0 {
		body.Errors = fields
	}
	return body
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		ctx.Error(fasthttp.StatusMessage(fasthttp.StatusInternalServerError), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}

// Serve answers on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &fasthttp.Server{
		Handler:      s.handle,
		Name:         "rentalform-mockapi",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("mock rental API listening", "addr", ln.Addr().String(), "path", s.contract.Path())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("mockapi: shutdown: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mockapi: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}
