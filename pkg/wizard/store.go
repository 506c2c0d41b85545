package wizard

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/validation"
)

// ErrInvalidTransition is returned when a submission status change is not
// allowed from the current status.
var ErrInvalidTransition = errors.New("wizard: invalid submission transition")

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
	// markupPattern matches a complete tag or comment. A bare "<" is text.
	markupPattern = regexp.MustCompile(`<(?:/?[A-Za-z][^<>]*|!--[^>]*--)>`)
)

// sanitizeText strips markup from free text. Values without a complete tag
// are kept as typed, so "a<b@c.com" survives.
func sanitizeText(value string) string {
	if !markupPattern.MatchString(value) {
		return value
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(textPolicy.Sanitize(value))
}

// Store holds one FormState and the reducer operations over it. Store is not
// safe for concurrent use; Wizard serializes access.
type Store struct {
	state model.FormState
	// generation increments on Reset so late async results can be dropped.
	generation uint64
}

// NewStore returns a store holding the initial state.
func NewStore() *Store {
	return &Store{state: model.NewFormState()}
}

// NewStoreFrom returns a store seeded with a copy of state. The page is
// clamped and nil maps are allocated.
func NewStoreFrom(state model.FormState) *Store {
	s := &Store{state: state.Clone()}
	s.state.Page = s.state.Page.Clamp()
	return s
}

// State returns a deep copy of the current state.
func (s *Store) State() model.FormState {
	return s.state.Clone()
}

// Generation identifies the current form instance.
func (s *Store) Generation() uint64 {
	return s.generation
}

// SetField applies change. Text values have markup stripped and the phone is
// stored formatted. The field error is replaced by change.Err when set and
// cleared otherwise.
func (s *Store) SetField(change model.Change) error {
	value := change.Value
	if text, ok := value.(string); ok && change.Field.IsText() {
		text = sanitizeText(text)
		if change.Field == model.FieldPhone {
			text = validation.FormatPhone(text)
		}
		value = text
	}
	if err := change.Field.Apply(&s.state, value); err != nil {
		return err
	}

	if s.state.Errors == nil {
		s.state.Errors = model.Errors{}
	}
	if change.Err != nil {
		s.state.Errors[change.Field] = *change.Err
	} else {
		delete(s.state.Errors, change.Field)
	}
	return nil
}

// ToggleMobilityAid adds aid when absent and removes it when present.
func (s *Store) ToggleMobilityAid(aid model.Aid) {
	s.state.Details.MobilityAids = s.state.Details.MobilityAids.Toggle(aid)
	delete(s.state.Errors, model.FieldMobilityAids)
}

// Advance moves to the next page, staying on the last one.
func (s *Store) Advance() {
	s.state.Page = (s.state.Page + 1).Clamp()
}

// Retreat moves to the previous page, staying on the first one.
func (s *Store) Retreat() {
	s.state.Page = (s.state.Page - 1).Clamp()
}

// ReplaceErrors swaps the whole error map.
func (s *Store) ReplaceErrors(errs model.Errors) {
	s.state.Errors = errs.Clone()
}

// SetSubmission moves the submission to next when the transition is valid.
func (s *Store) SetSubmission(next model.Submission) error {
	if !s.state.Submission.CanTransition(next.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state.Submission.Status, next.Status)
	}
	s.state.Submission = next.Clone()
	return nil
}

// Reset restores the initial state.
func (s *Store) Reset() {
	s.state = model.NewFormState()
	s.generation++
}
