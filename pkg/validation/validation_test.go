package validation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/render"
	"github.com/goliatone/go-rentalform/pkg/testsupport"
	"github.com/goliatone/go-rentalform/pkg/validation"
)

func TestFormatPhone_ProgressiveFormatting(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"5":                   "5",
		"555":                 "555",
		"5551":                "(555) 1",
		"555123":              "(555) 123",
		"5551234":             "(555) 123-4",
		"5551234567":          "(555) 123-4567",
		"555123456789":        "(555) 123-4567",
		"(555) 123-4567":      "(555) 123-4567",
		"+1 555.123.4567 ext": "(155) 512-3456",
		"abc":                 "",
	}
	for in, want := range cases {
		if got := validation.FormatPhone(in); got != want {
			t.Fatalf("FormatPhone(%q): want %q, got %q", in, want, got)
		}
	}
}

func TestFormatPhone_EveryLength(t *testing.T) {
	digits := "1234567890"
	for n := 0; n <= len(digits); n++ {
		got := validation.FormatPhone(digits[:n])
		var want string
		switch {
		case n < 4:
			want = digits[:n]
		case n < 7:
			want = "(" + digits[:3] + ") " + digits[3:n]
		default:
			want = "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:n]
		}
		if got != want {
			t.Fatalf("length %d: want %q, got %q", n, want, got)
		}
	}
}

func TestValidateContact_Valid(t *testing.T) {
	state := testsupport.ValidState(model.PageContact)
	if errs := validation.ValidateContact(state); !errs.Empty() {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateContact_InvalidEmailOnly(t *testing.T) {
	state := testsupport.ValidState(model.PageContact)
	state.Contact.Email = "not-an-email"

	want := model.Errors{model.FieldEmail: "Invalid email format"}
	if diff := cmp.Diff(want, validation.ValidateContact(state)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateContact_RequiredAndFormat(t *testing.T) {
	state := model.NewFormState()
	state.Contact.FirstName = "   "
	state.Contact.Phone = "(555) 123"

	want := model.Errors{
		model.FieldFirstName: "First name is required",
		model.FieldLastName:  "Last name is required",
		model.FieldEmail:     "Email is required",
		model.FieldPhone:     "Invalid phone number format",
	}
	if diff := cmp.Diff(want, validation.ValidateContact(state)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateDetails_ConditionalNumbers(t *testing.T) {
	state := testsupport.ValidState(model.PageDetails)
	state.Details.KnowsLength = true
	state.Details.EstimatedLength = model.IntPtr(0)
	state.Details.KnowsDuration = true
	state.Details.EstimatedDuration = nil

	want := model.Errors{
		model.FieldEstimatedLength:   "Please enter a valid ramp length",
		model.FieldEstimatedDuration: "Please enter a valid rental duration",
	}
	if diff := cmp.Diff(want, validation.ValidateDetails(state)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	state.Details.KnowsLength = false
	state.Details.KnowsDuration = false
	if errs := validation.ValidateDetails(state); !errs.Empty() {
		t.Fatalf("numbers must be ignored when their flag is off, got %v", errs)
	}
}

func TestValidateDetails_EnumsAndAddress(t *testing.T) {
	state := testsupport.ValidState(model.PageDetails)
	state.Details.Timeframe = "Whenever"
	state.Details.MobilityAids = model.NewAidSet(model.AidWheelchair, "crutches")
	state.InstallAddress = " "

	want := model.Errors{
		model.FieldTimeframe:      "Please select a valid installation timeframe",
		model.FieldMobilityAids:   "Please select valid mobility aids",
		model.FieldInstallAddress: "Installation address is required",
	}
	if diff := cmp.Diff(want, validation.ValidateDetails(state)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	state.Details.MobilityAids = model.AidSet{}
	if _, failed := validation.ValidateField(model.FieldMobilityAids, state); !failed {
		t.Fatalf("empty aid set must fail")
	}
}

func TestValidateForm_IsUnionOfSections(t *testing.T) {
	state := model.NewFormState()

	contact := validation.ValidateContact(state)
	details := validation.ValidateDetails(state)
	form := validation.ValidateForm(state)

	if diff := cmp.Diff(contact.Merge(details), form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if len(form) != 7 {
		t.Fatalf("expected 7 errors on an empty form, got %d: %v", len(form), form)
	}
}

func TestValidator_LocalizesMessages(t *testing.T) {
	translator, err := render.NewI18nTranslator()
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	v := validation.New(validation.WithTranslator(translator, "es"))

	state := testsupport.ValidState(model.PageContact)
	state.Contact.Email = ""

	want := model.Errors{model.FieldEmail: "El correo electrónico es obligatorio"}
	if diff := cmp.Diff(want, v.ValidateContact(state)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	english := v.WithLocale("en")
	if msg, _ := english.ValidateField(model.FieldEmail, state); msg != "Email is required" {
		t.Fatalf("unexpected english message %q", msg)
	}
	if v.Locale() != "es" {
		t.Fatalf("WithLocale must not mutate the receiver")
	}
}

func TestValidator_MissingKeyFallsBackToDefault(t *testing.T) {
	translator := render.TranslatorFunc(func(locale, key string, args ...any) (string, error) {
		return "", render.ErrMissingTranslator
	})
	v := validation.New(validation.WithTranslator(translator, "fr"))

	msg, failed := v.ValidateField(model.FieldInstallAddress, model.NewFormState())
	if !failed || msg != "Installation address is required" {
		t.Fatalf("unexpected result %q %v", msg, failed)
	}
}
