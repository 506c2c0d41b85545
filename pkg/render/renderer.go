package render

import (
	"context"
	"strings"

	"github.com/goliatone/go-rentalform/pkg/model"
)

// Renderer converts a wizard View into a byte representation (HTML, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View) ([]byte, error)
}

// View is everything a renderer needs to draw the current page. State is a
// snapshot; renderers must not retain it.
type View struct {
	State  model.FormState
	Locale string
	Hidden []HiddenField
	// Banner is a page-level message, usually the failed submission message.
	Banner string
	// FormErrors are server errors that could not be tied to a field.
	FormErrors     []string
	SubmitDisabled bool
	// SuggestURL enables the address autocomplete datalist when set.
	SuggestURL string
}

// NewView builds a View from a snapshot, deriving the banner and the
// submit-disabled flag from the submission state.
func NewView(state model.FormState, locale string, hidden ...HiddenField) View {
	view := View{
		State:          state,
		Locale:         strings.TrimSpace(locale),
		Hidden:         normalizeHidden(hidden),
		SubmitDisabled: state.Submission.Status == model.SubmissionInFlight,
	}
	if state.Submission.Status == model.SubmissionFailed {
		view.Banner = state.Submission.Message
		for _, msg := range state.Submission.FormErrors {
			if msg != view.Banner {
				view.FormErrors = append(view.FormErrors, msg)
			}
		}
	}
	return view
}

// Page is shorthand for the page being viewed.
func (v View) Page() model.Page {
	return v.State.Page.Clamp()
}
