package validation

import (
	"strings"

	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/render"
)

// Option configures a Validator.
type Option func(*Validator)

// WithTranslator localizes messages through t for locale. Missing keys fall
// back to the English defaults.
func WithTranslator(t render.Translator, locale string) Option {
	return func(v *Validator) {
		v.translator = t
		v.locale = strings.TrimSpace(locale)
	}
}

// Validator runs the section rules and renders their messages.
type Validator struct {
	translator render.Translator
	locale     string
}

// New builds a Validator. Without options messages are the English defaults.
func New(options ...Option) *Validator {
	v := &Validator{}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// WithLocale returns a copy of v rendering messages for locale.
func (v *Validator) WithLocale(locale string) *Validator {
	out := *v
	out.locale = strings.TrimSpace(locale)
	return &out
}

// Locale reports the locale messages are rendered for.
func (v *Validator) Locale() string {
	return v.locale
}

// ValidateContact checks the contact section.
func (v *Validator) ValidateContact(state model.FormState) model.Errors {
	return v.validate(state, model.SectionFields(model.SectionContact))
}

// ValidateDetails checks the service details and the install address.
func (v *Validator) ValidateDetails(state model.FormState) model.Errors {
	return v.validate(state, model.SectionFields(model.SectionDetails))
}

// ValidateForm is the union of ValidateContact and ValidateDetails.
func (v *Validator) ValidateForm(state model.FormState) model.Errors {
	return v.validate(state, model.Fields())
}

// ValidateSection dispatches to the validator for the section shown on page.
// The confirmation page has nothing to validate.
func (v *Validator) ValidateSection(page model.Page, state model.FormState) model.Errors {
	switch page {
	case model.PageContact:
		return v.ValidateContact(state)
	case model.PageDetails:
		return v.ValidateDetails(state)
	default:
		return model.Errors{}
	}
}

// ValidateField checks a single field and returns its rendered message.
func (v *Validator) ValidateField(field model.FieldID, state model.FormState) (string, bool) {
	rule, ok := rules[field]
	if !ok {
		return "", false
	}
	msg, failed := rule(state)
	if !failed {
		return "", false
	}
	return v.Message(msg), true
}

// Message renders msg for the validator locale.
func (v *Validator) Message(msg Message) string {
	if v == nil || v.translator == nil {
		return msg.Default
	}
	return render.Localize(v.translator, v.locale, msg.ID, msg.Default)
}

func (v *Validator) validate(state model.FormState, fields []model.FieldID) model.Errors {
	errs := model.Errors{}
	for _, field := range fields {
		if message, failed := v.ValidateField(field, state); failed {
			errs[field] = message
		}
	}
	return errs
}

var defaultValidator = New()

// ValidateContact checks the contact section using English messages.
func ValidateContact(state model.FormState) model.Errors {
	return defaultValidator.ValidateContact(state)
}

// ValidateDetails checks the service details and install address using
// English messages.
func ValidateDetails(state model.FormState) model.Errors {
	return defaultValidator.ValidateDetails(state)
}

// ValidateForm checks every section using English messages.
func ValidateForm(state model.FormState) model.Errors {
	return defaultValidator.ValidateForm(state)
}

// ValidateField checks one field using English messages.
func ValidateField(field model.FieldID, state model.FormState) (string, bool) {
	return defaultValidator.ValidateField(field, state)
}
