package wizard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/validation"
)

var (
	// ErrFormLocked is returned for edits after the request was accepted.
	ErrFormLocked = errors.New("wizard: form is locked after submission")
	// ErrSubmissionInFlight is returned when Submit is called while a
	// previous submission is still awaiting a response.
	ErrSubmissionInFlight = errors.New("wizard: submission already in flight")
	// ErrAlreadySubmitted is returned when Submit is called after the
	// request was accepted.
	ErrAlreadySubmitted = errors.New("wizard: request already submitted")
	// ErrWrongPage is returned when an operation is not available on the
	// current page.
	ErrWrongPage = errors.New("wizard: operation not available on this page")
	// ErrInvalid is returned by Submit when validation failed. The field
	// errors are published on the state.
	ErrInvalid = errors.New("wizard: form has errors")
	// ErrNoGateway is returned by Submit when no gateway was configured.
	ErrNoGateway = errors.New("wizard: gateway is not configured")
)

// Fallback messages for failed submissions.
var (
	MsgSubmitGeneric = validation.Message{ID: "submission.error.generic", Default: "An unexpected error occurred"}
	MsgSubmitTimeout = validation.Message{ID: "submission.error.timeout", Default: "The request timed out. Please try again."}
)

// Gateway delivers a completed form to the rental service.
type Gateway interface {
	Submit(ctx context.Context, state model.FormState) (model.Confirmation, error)
}

// GatewayFunc adapts a function into a Gateway.
type GatewayFunc func(ctx context.Context, state model.FormState) (model.Confirmation, error)

// Submit calls fn.
func (fn GatewayFunc) Submit(ctx context.Context, state model.FormState) (model.Confirmation, error) {
	return fn(ctx, state)
}

// Gateway errors may implement these to steer the failure message.
type (
	userMessager interface{ UserMessage() string }
	timeouter    interface{ Timeout() bool }
	fieldErrorer interface{ FieldErrors() model.Errors }
	formErrorer  interface{ FormErrors() []string }
)

// Option customises a Wizard.
type Option func(*Wizard)

// WithGateway sets the submission gateway.
func WithGateway(gateway Gateway) Option {
	return func(w *Wizard) {
		w.gateway = gateway
	}
}

// WithValidator sets the validator used for section checks and messages.
func WithValidator(v *validation.Validator) Option {
	return func(w *Wizard) {
		if v != nil {
			w.validator = v
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithInitialState seeds the wizard with state instead of an empty form.
func WithInitialState(state model.FormState) Option {
	return func(w *Wizard) {
		w.store = NewStoreFrom(state)
	}
}

// Wizard orchestrates one rental request form.
type Wizard struct {
	mu        sync.Mutex
	store     *Store
	gateway   Gateway
	validator *validation.Validator
	logger    *slog.Logger
}

// New constructs a Wizard on the contact page.
func New(options ...Option) *Wizard {
	w := &Wizard{
		store:     NewStore(),
		validator: validation.New(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w
}

// Snapshot returns a deep copy of the current state.
func (w *Wizard) Snapshot() model.FormState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.State()
}

// SetLocale switches the locale validation and failure messages use.
func (w *Wizard) SetLocale(locale string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.validator = w.validator.WithLocale(locale)
}

// Change applies a single field change. Edits are refused while a
// submission is in flight and after it was accepted.
func (w *Wizard) Change(change model.Change) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	return w.store.SetField(change)
}

// ApplyChanges applies changes in order, stopping at the first error.
func (w *Wizard) ApplyChanges(changes ...model.Change) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	for _, change := range changes {
		if err := w.store.SetField(change); err != nil {
			return err
		}
	}
	return nil
}

// ToggleMobilityAid flips one mobility aid.
func (w *Wizard) ToggleMobilityAid(aid model.Aid) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	w.store.ToggleMobilityAid(aid)
	return nil
}

// editable reports why the form cannot be edited right now. Callers hold mu.
func (w *Wizard) editable() error {
	switch {
	case w.store.state.Page == model.PageConfirmation:
		return ErrFormLocked
	case w.store.state.Submission.Status == model.SubmissionInFlight:
		return ErrSubmissionInFlight
	}
	return nil
}

// Next validates the contact page and advances to the details page. On
// validation errors the page is unchanged and the errors are published. It
// reports whether the wizard advanced; it is a no-op on other pages.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.store.state.Page != model.PageContact {
		return false
	}
	errs := w.validator.ValidateContact(w.store.state)
	if !errs.Empty() {
		w.store.ReplaceErrors(errs)
		w.logger.Debug("contact section invalid", "fields", len(errs))
		return false
	}
	w.store.ReplaceErrors(nil)
	w.store.Advance()
	return true
}

// Previous goes back from the details page to the contact page. It is a
// no-op elsewhere and while a submission is in flight.
func (w *Wizard) Previous() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.store.state.Page != model.PageDetails || w.store.state.Submission.Status == model.SubmissionInFlight {
		return false
	}
	w.store.Retreat()
	return true
}

// Submit validates the whole form and sends it through the gateway. The
// returned submission is the final state of this attempt. A non-nil error
// means the attempt was rejected before the gateway was called; gateway
// failures are reported as a Failed submission.
func (w *Wizard) Submit(ctx context.Context) (model.Submission, error) {
	w.mu.Lock()
	state := &w.store.state
	switch {
	case state.Submission.Status == model.SubmissionInFlight:
		w.mu.Unlock()
		return model.InFlight(), ErrSubmissionInFlight
	case state.Submission.Status == model.SubmissionSucceeded:
		sub := state.Submission.Clone()
		w.mu.Unlock()
		return sub, ErrAlreadySubmitted
	case state.Page != model.PageDetails:
		sub := state.Submission.Clone()
		w.mu.Unlock()
		return sub, ErrWrongPage
	case w.gateway == nil:
		sub := state.Submission.Clone()
		w.mu.Unlock()
		return sub, ErrNoGateway
	}

	errs := w.validator.ValidateForm(*state)
	w.store.ReplaceErrors(errs)
	if !errs.Empty() {
		sub := state.Submission.Clone()
		w.mu.Unlock()
		w.logger.Debug("submission blocked by validation", "fields", len(errs))
		return sub, ErrInvalid
	}

	if err := w.store.SetSubmission(model.InFlight()); err != nil {
		w.mu.Unlock()
		return model.Submission{}, err
	}
	snapshot := w.store.State()
	generation := w.store.Generation()
	gateway := w.gateway
	validator := w.validator
	w.mu.Unlock()

	w.logger.Info("submitting rental request", "email", snapshot.Contact.Email)
	confirmation, err := gateway.Submit(ctx, snapshot)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.store.Generation() != generation {
		w.logger.Warn("discarding submission result for a reset form")
		return w.store.state.Submission.Clone(), nil
	}

	if err != nil {
		var forms []string
		var fm formErrorer
		if errors.As(err, &fm) {
			forms = fm.FormErrors()
		}
		message := failureMessage(validator, err, forms)
		var fe fieldErrorer
		if errors.As(err, &fe) {
			if fields := fe.FieldErrors(); !fields.Empty() {
				w.store.ReplaceErrors(fields)
			}
		}
		_ = w.store.SetSubmission(model.Failed(message, forms...))
		w.logger.Warn("rental request failed", "error", err, "message", message)
		return w.store.state.Submission.Clone(), nil
	}

	_ = w.store.SetSubmission(model.Succeeded(confirmation))
	w.store.state.Page = model.PageConfirmation
	w.logger.Info("rental request accepted", "id", confirmation.ID)
	return w.store.state.Submission.Clone(), nil
}

// StartOver discards the accepted request and returns to an empty contact
// page. It is only available on the confirmation page.
func (w *Wizard) StartOver() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.store.state.Page != model.PageConfirmation {
		return ErrWrongPage
	}
	w.store.Reset()
	return nil
}

// failureMessage prefers the server's message, then its first form-level
// error, then a timeout or generic fallback.
func failureMessage(v *validation.Validator, err error, forms []string) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	for _, msg := range forms {
		if msg = strings.TrimSpace(msg); msg != "" {
			return msg
		}
	}
	var to timeouter
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &to) && to.Timeout()) {
		return v.Message(MsgSubmitTimeout)
	}
	return v.Message(MsgSubmitGeneric)
}
