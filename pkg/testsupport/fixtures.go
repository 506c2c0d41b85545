// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"context"
	"time"

	"github.com/goliatone/go-rentalform/pkg/model"
)

// ConfirmationTime is the createdAt used by confirmation fixtures.
var ConfirmationTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// ValidContact returns a contact section that passes validation.
func ValidContact() model.Contact {
	return model.Contact{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "(555) 123-4567",
	}
}

// ValidDetails returns service details that pass validation.
func ValidDetails() model.ServiceDetails {
	return model.ServiceDetails{
		KnowsLength:     true,
		EstimatedLength: model.IntPtr(12),
		KnowsDuration:   false,
		Timeframe:       model.TimeframeWithin2Days,
		MobilityAids:    model.NewAidSet(model.AidWheelchair),
	}
}

// ValidState returns a fully valid FormState sitting on the given page.
func ValidState(page model.Page) model.FormState {
	state := model.NewFormState()
	state.Contact = ValidContact()
	state.Details = ValidDetails()
	state.InstallAddress = "1 Main St, Springfield, IL, USA"
	state.Page = page
	return state
}

// Confirmation returns the payload of an accepted request.
func Confirmation(id string) model.Confirmation {
	return model.Confirmation{
		ID:        id,
		CreatedAt: ConfirmationTime,
		Message:   "Rental request submitted successfully",
	}
}
