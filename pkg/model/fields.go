package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnknownField is returned when a field identifier cannot be resolved.
	ErrUnknownField = errors.New("model: unknown field")
	// ErrInvalidValue is returned when a value has the wrong type for a field.
	ErrInvalidValue = errors.New("model: invalid value")
)

// Section groups the fields shown on one wizard page.
type Section string

const (
	SectionContact Section = "contact"
	SectionDetails Section = "details"
)

// FieldID identifies one field of the FormState. The string form is the
// dotted path (one level of nesting).
type FieldID string

const (
	FieldFirstName         FieldID = "contact.firstName"
	FieldLastName          FieldID = "contact.lastName"
	FieldEmail             FieldID = "contact.email"
	FieldPhone             FieldID = "contact.phone"
	FieldKnowsLength       FieldID = "serviceDetails.knowsLength"
	FieldEstimatedLength   FieldID = "serviceDetails.estimatedLength"
	FieldKnowsDuration     FieldID = "serviceDetails.knowsDuration"
	FieldEstimatedDuration FieldID = "serviceDetails.estimatedDuration"
	FieldTimeframe         FieldID = "serviceDetails.installationTimeframe"
	FieldMobilityAids      FieldID = "serviceDetails.mobilityAids"
	FieldInstallAddress    FieldID = "installAddress"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindBool
	kindInt
	kindTimeframe
	kindAids
)

type fieldSpec struct {
	section Section
	kind    fieldKind
	// form is the flat input name used by HTML posts.
	form string
	// wire is the path inside the rental requests API payload.
	wire  string
	label string
	apply func(*FormState, any) error
}

var fieldOrder = []FieldID{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldKnowsLength,
	FieldEstimatedLength,
	FieldKnowsDuration,
	FieldEstimatedDuration,
	FieldTimeframe,
	FieldMobilityAids,
	FieldInstallAddress,
}

var fieldSpecs = map[FieldID]fieldSpec{
	FieldFirstName: {
		section: SectionContact, kind: kindText, form: "firstName", wire: "customerInfo.firstName", label: "First Name",
		apply: textSetter(func(s *FormState, v string) { s.Contact.FirstName = v }),
	},
	FieldLastName: {
		section: SectionContact, kind: kindText, form: "lastName", wire: "customerInfo.lastName", label: "Last Name",
		apply: textSetter(func(s *FormState, v string) { s.Contact.LastName = v }),
	},
	FieldEmail: {
		section: SectionContact, kind: kindText, form: "email", wire: "customerInfo.email", label: "Email Address",
		apply: textSetter(func(s *FormState, v string) { s.Contact.Email = v }),
	},
	FieldPhone: {
		section: SectionContact, kind: kindText, form: "phone", wire: "customerInfo.phone", label: "Phone Number",
		apply: textSetter(func(s *FormState, v string) { s.Contact.Phone = v }),
	},
	FieldKnowsLength: {
		section: SectionDetails, kind: kindBool, form: "knowRampLength", wire: "rampDetails.knowRampLength",
		label: "Do you know how long of a ramp you need?",
		apply: boolSetter(func(s *FormState, v bool) { s.Details.KnowsLength = v }),
	},
	FieldEstimatedLength: {
		section: SectionDetails, kind: kindInt, form: "estimatedRampLength", wire: "rampDetails.rampLength",
		label: "Estimated ramp length required (in feet)",
		apply: intSetter(func(s *FormState, v *int) { s.Details.EstimatedLength = v }),
	},
	FieldKnowsDuration: {
		section: SectionDetails, kind: kindBool, form: "knowRentalDuration", wire: "rampDetails.knowRentalDuration",
		label: "Do you know how long you need the ramp?",
		apply: boolSetter(func(s *FormState, v bool) { s.Details.KnowsDuration = v }),
	},
	FieldEstimatedDuration: {
		section: SectionDetails, kind: kindInt, form: "estimatedRentalDuration", wire: "rampDetails.rentalDuration",
		label: "Estimated rental duration (in months)",
		apply: intSetter(func(s *FormState, v *int) { s.Details.EstimatedDuration = v }),
	},
	FieldTimeframe: {
		section: SectionDetails, kind: kindTimeframe, form: "installationTimeframe", wire: "rampDetails.installTimeframe",
		label: "How soon do you need it installed?",
		apply: setTimeframe,
	},
	FieldMobilityAids: {
		section: SectionDetails, kind: kindAids, form: "mobilityAids", wire: "rampDetails.mobilityAids",
		label: "Mobility aids to be used with the ramp",
		apply: setAids,
	},
	FieldInstallAddress: {
		section: SectionDetails, kind: kindText, form: "installAddress", wire: "installAddress", label: "Installation Address",
		apply: textSetter(func(s *FormState, v string) { s.InstallAddress = v }),
	},
}

// Fields returns every field identifier in display order.
func Fields() []FieldID {
	return append([]FieldID(nil), fieldOrder...)
}

// SectionFields returns the fields of one section in display order.
func SectionFields(section Section) []FieldID {
	var out []FieldID
	for _, id := range fieldOrder {
		if fieldSpecs[id].section == section {
			out = append(out, id)
		}
	}
	return out
}

// ParseFieldID resolves a dotted path, a flat form name or an API wire path.
func ParseFieldID(raw string) (FieldID, error) {
	trimmed := strings.TrimSpace(raw)
	if _, ok := fieldSpecs[FieldID(trimmed)]; ok {
		return FieldID(trimmed), nil
	}
	for _, id := range fieldOrder {
		spec := fieldSpecs[id]
		if trimmed == spec.form || trimmed == spec.wire {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
}

// Valid reports whether f is a known field.
func (f FieldID) Valid() bool {
	_, ok := fieldSpecs[f]
	return ok
}

// Section returns the section the field is shown in.
func (f FieldID) Section() Section {
	return fieldSpecs[f].section
}

// FormName is the flat input name used by HTML form posts.
func (f FieldID) FormName() string {
	return fieldSpecs[f].form
}

// WirePath is the dotted path of the field inside the API payload.
func (f FieldID) WirePath() string {
	return fieldSpecs[f].wire
}

// Label is the default display label.
func (f FieldID) Label() string {
	return fieldSpecs[f].label
}

// IsText reports whether the field holds free text.
func (f FieldID) IsText() bool {
	spec, ok := fieldSpecs[f]
	return ok && spec.kind == kindText
}

// Apply writes value onto state. Accepted value types depend on the field:
// text fields take string, flags take bool or a yes/no string, numeric fields
// take int, *int or a numeric string (empty or unparsable strings clear the
// value), the timeframe takes Timeframe or string and mobility aids take
// AidSet, []Aid or []string.
func (f FieldID) Apply(state *FormState, value any) error {
	spec, ok := fieldSpecs[f]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
	if state == nil {
		return errors.New("model: state is nil")
	}
	if err := spec.apply(state, value); err != nil {
		return fmt.Errorf("model: field %s: %w", f, err)
	}
	return nil
}

// Change is a single write request against the FormState. When Err is set
// the message is recorded for the field, otherwise any existing error for the
// field is cleared.
type Change struct {
	Field FieldID
	Value any
	Err   *string
}

// Set builds a Change without an explicit error.
func Set(field FieldID, value any) Change {
	return Change{Field: field, Value: value}
}

// WithError attaches an explicit error message to the change.
func (c Change) WithError(message string) Change {
	c.Err = &message
	return c
}

func textSetter(assign func(*FormState, string)) func(*FormState, any) error {
	return func(s *FormState, value any) error {
		switch v := value.(type) {
		case string:
			assign(s, v)
		case nil:
			assign(s, "")
		default:
			return fmt.Errorf("%w: expected string, got %T", ErrInvalidValue, value)
		}
		return nil
	}
}

func boolSetter(assign func(*FormState, bool)) func(*FormState, any) error {
	return func(s *FormState, value any) error {
		switch v := value.(type) {
		case bool:
			assign(s, v)
		case string:
			parsed, ok := parseFlag(v)
			if !ok {
				return fmt.Errorf("%w: %q is not a yes/no value", ErrInvalidValue, v)
			}
			assign(s, parsed)
		default:
			return fmt.Errorf("%w: expected bool, got %T", ErrInvalidValue, value)
		}
		return nil
	}
}

func intSetter(assign func(*FormState, *int)) func(*FormState, any) error {
	return func(s *FormState, value any) error {
		switch v := value.(type) {
		case nil:
			assign(s, nil)
		case int:
			assign(s, IntPtr(v))
		case *int:
			assign(s, cloneInt(v))
		case int64:
			assign(s, IntPtr(int(v)))
		case float64:
			if v != math.Trunc(v) {
				assign(s, nil)
				return nil
			}
			assign(s, IntPtr(int(v)))
		case string:
			trimmed := strings.TrimSpace(v)
			parsed, err := strconv.Atoi(trimmed)
			if trimmed == "" || err != nil {
				assign(s, nil)
				return nil
			}
			assign(s, IntPtr(parsed))
		default:
			return fmt.Errorf("%w: expected number, got %T", ErrInvalidValue, value)
		}
		return nil
	}
}

func setTimeframe(s *FormState, value any) error {
	switch v := value.(type) {
	case Timeframe:
		s.Details.Timeframe = v
	case string:
		s.Details.Timeframe = Timeframe(strings.TrimSpace(v))
	case nil:
		s.Details.Timeframe = ""
	default:
		return fmt.Errorf("%w: expected timeframe, got %T", ErrInvalidValue, value)
	}
	return nil
}

func setAids(s *FormState, value any) error {
	switch v := value.(type) {
	case AidSet:
		s.Details.MobilityAids = v.Clone()
	case []Aid:
		s.Details.MobilityAids = NewAidSet(v...)
	case []string:
		set := make(AidSet, len(v))
		for _, raw := range v {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			set[ParseAid(raw)] = struct{}{}
		}
		s.Details.MobilityAids = set
	case nil:
		s.Details.MobilityAids = AidSet{}
	default:
		return fmt.Errorf("%w: expected mobility aids, got %T", ErrInvalidValue, value)
	}
	return nil
}

func parseFlag(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "on", "1":
		return true, true
	case "no", "n", "false", "off", "0", "":
		return false, true
	default:
		return false, false
	}
}
