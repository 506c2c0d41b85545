package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-rentalform/pkg/model"
)

func TestParseFieldID_AcceptsPathFormAndWireNames(t *testing.T) {
	cases := map[string]model.FieldID{
		"contact.email":                  model.FieldEmail,
		"email":                          model.FieldEmail,
		"customerInfo.email":             model.FieldEmail,
		"estimatedRampLength":            model.FieldEstimatedLength,
		"rampDetails.installTimeframe":   model.FieldTimeframe,
		" installAddress ":               model.FieldInstallAddress,
		"serviceDetails.knowsDuration":   model.FieldKnowsDuration,
		"rampDetails.knowRentalDuration": model.FieldKnowsDuration,
	}
	for raw, want := range cases {
		got, err := model.ParseFieldID(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: want %s, got %s", raw, want, got)
		}
	}

	if _, err := model.ParseFieldID("contact.fax"); !errors.Is(err, model.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestFieldApply_CoercesValues(t *testing.T) {
	state := model.NewFormState()

	steps := []struct {
		field model.FieldID
		value any
	}{
		{model.FieldFirstName, "Ada"},
		{model.FieldKnowsLength, "yes"},
		{model.FieldEstimatedLength, "12"},
		{model.FieldKnowsDuration, true},
		{model.FieldEstimatedDuration, float64(3)},
		{model.FieldTimeframe, "Within 2 days"},
		{model.FieldMobilityAids, []string{"wheelchair", "Walker/cane", ""}},
	}
	for _, step := range steps {
		if err := step.field.Apply(&state, step.value); err != nil {
			t.Fatalf("apply %s: %v", step.field, err)
		}
	}

	if state.Contact.FirstName != "Ada" {
		t.Fatalf("unexpected first name %q", state.Contact.FirstName)
	}
	if !state.Details.KnowsLength || state.Details.EstimatedLength == nil || *state.Details.EstimatedLength != 12 {
		t.Fatalf("unexpected length details: %+v", state.Details)
	}
	if state.Details.EstimatedDuration == nil || *state.Details.EstimatedDuration != 3 {
		t.Fatalf("unexpected duration: %v", state.Details.EstimatedDuration)
	}
	if state.Details.Timeframe != model.TimeframeWithin2Days {
		t.Fatalf("unexpected timeframe %q", state.Details.Timeframe)
	}
	want := []model.Aid{model.AidWheelchair, model.AidWalkerCane}
	if diff := cmp.Diff(want, state.Details.MobilityAids.Slice()); diff != "" {
		t.Fatalf("aids mismatch (-want +got):\n%s", diff)
	}

	if err := model.FieldEstimatedLength.Apply(&state, "twelve"); err != nil {
		t.Fatalf("apply unparsable number: %v", err)
	}
	if state.Details.EstimatedLength != nil {
		t.Fatalf("expected unparsable number to clear the value")
	}

	if err := model.FieldFirstName.Apply(&state, 42); !errors.Is(err, model.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if err := model.FieldKnowsLength.Apply(&state, "maybe"); !errors.Is(err, model.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for flag, got %v", err)
	}
}

func TestAidSet_ToggleTwiceRestoresSet(t *testing.T) {
	set := model.NewAidSet(model.AidWheelchair)
	before := set.Clone()

	set = set.Toggle(model.AidWalkerCane)
	if !set.Has(model.AidWalkerCane) {
		t.Fatalf("expected walker_cane after first toggle")
	}
	set = set.Toggle(model.AidWalkerCane)

	if diff := cmp.Diff(before.Slice(), set.Slice()); diff != "" {
		t.Fatalf("set changed after double toggle (-want +got):\n%s", diff)
	}
}

func TestAidSet_JSONOrdersKnownAidsFirst(t *testing.T) {
	set := model.NewAidSet("custom", model.AidNone, model.AidWheelchair)
	payload, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(payload), `["wheelchair","none","custom"]`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}

	var decoded model.AidSet
	if err := json.Unmarshal([]byte(`["Wheelchair","wheelchair"]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 1 || !decoded.Has(model.AidWheelchair) {
		t.Fatalf("expected a single wheelchair entry, got %v", decoded)
	}
}

func TestSubmission_Transitions(t *testing.T) {
	if !model.Idle().CanTransition(model.SubmissionInFlight) {
		t.Fatalf("idle should move to in flight")
	}
	if model.Idle().CanTransition(model.SubmissionSucceeded) {
		t.Fatalf("idle must not jump to succeeded")
	}
	if !model.Failed("boom").CanTransition(model.SubmissionInFlight) {
		t.Fatalf("failed should allow resubmission")
	}
	done := model.Succeeded(model.Confirmation{ID: "1", CreatedAt: time.Unix(0, 0)})
	if done.CanTransition(model.SubmissionInFlight) {
		t.Fatalf("succeeded is terminal")
	}
}

func TestFormState_CloneDoesNotAlias(t *testing.T) {
	state := model.NewFormState()
	state.Details.EstimatedLength = model.IntPtr(10)
	state.Details.MobilityAids = model.NewAidSet(model.AidNone)
	state.Errors[model.FieldEmail] = "Email is required"

	clone := state.Clone()
	*clone.Details.EstimatedLength = 20
	clone.Details.MobilityAids.Toggle(model.AidWheelchair)
	delete(clone.Errors, model.FieldEmail)

	if *state.Details.EstimatedLength != 10 {
		t.Fatalf("length aliased")
	}
	if state.Details.MobilityAids.Has(model.AidWheelchair) {
		t.Fatalf("aids aliased")
	}
	if !state.Errors.Has(model.FieldEmail) {
		t.Fatalf("errors aliased")
	}
}

func TestPage_ParseAndClamp(t *testing.T) {
	if p, ok := model.ParsePage("details"); !ok || p != model.PageDetails {
		t.Fatalf("parse details: %v %v", p, ok)
	}
	if p, ok := model.ParsePage("2"); !ok || p != model.PageConfirmation {
		t.Fatalf("parse index: %v %v", p, ok)
	}
	if _, ok := model.ParsePage("review"); ok {
		t.Fatalf("unexpected page parsed")
	}
	if got := model.Page(7).Clamp(); got != model.LastPage {
		t.Fatalf("clamp high: %v", got)
	}
	if got := model.Page(-1).Clamp(); got != model.PageContact {
		t.Fatalf("clamp low: %v", got)
	}
}
