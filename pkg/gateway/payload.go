package gateway

import (
	"github.com/goliatone/go-rentalform/pkg/model"
)

// RentalRequest is the JSON body posted to the rental requests API.
type RentalRequest struct {
	CustomerInfo   CustomerInfo `json:"customerInfo"`
	RampDetails    RampDetails  `json:"rampDetails"`
	InstallAddress string       `json:"installAddress"`
}

// CustomerInfo is the contact block of a RentalRequest.
type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// RampDetails is the service block of a RentalRequest. RampLength and
// RentalDuration are only sent when their flag is set.
type RampDetails struct {
	KnowRampLength     bool     `json:"knowRampLength"`
	RampLength         *int     `json:"rampLength,omitempty"`
	KnowRentalDuration bool     `json:"knowRentalDuration"`
	RentalDuration     *int     `json:"rentalDuration,omitempty"`
	InstallTimeframe   string   `json:"installTimeframe"`
	MobilityAids       []string `json:"mobilityAids"`
}

// NewRentalRequest maps a FormState onto the wire payload.
func NewRentalRequest(state model.FormState) RentalRequest {
	details := state.Details
	req := RentalRequest{
		CustomerInfo: CustomerInfo{
			FirstName: state.Contact.FirstName,
			LastName:  state.Contact.LastName,
			Email:     state.Contact.Email,
			Phone:     state.Contact.Phone,
		},
		RampDetails: RampDetails{
			KnowRampLength:     details.KnowsLength,
			KnowRentalDuration: details.KnowsDuration,
			InstallTimeframe:   string(details.Timeframe),
			MobilityAids:       details.MobilityAids.Strings(),
		},
		InstallAddress: state.InstallAddress,
	}
	if details.KnowsLength && details.EstimatedLength != nil {
		v := *details.EstimatedLength
		req.RampDetails.RampLength = &v
	}
	if details.KnowsDuration && details.EstimatedDuration != nil {
		v := *details.EstimatedDuration
		req.RampDetails.RentalDuration = &v
	}
	return req
}

// FormState maps a wire payload back onto a FormState on the contact page.
func (r RentalRequest) FormState() model.FormState {
	state := model.NewFormState()
	state.Contact = model.Contact{
		FirstName: r.CustomerInfo.FirstName,
		LastName:  r.CustomerInfo.LastName,
		Email:     r.CustomerInfo.Email,
		Phone:     r.CustomerInfo.Phone,
	}
	aids := make([]model.Aid, 0, len(r.RampDetails.MobilityAids))
	for _, raw := range r.RampDetails.MobilityAids {
		aids = append(aids, model.ParseAid(raw))
	}
	state.Details = model.ServiceDetails{
		KnowsLength:       r.RampDetails.KnowRampLength,
		EstimatedLength:   r.RampDetails.RampLength,
		KnowsDuration:     r.RampDetails.KnowRentalDuration,
		EstimatedDuration: r.RampDetails.RentalDuration,
		Timeframe:         model.Timeframe(r.RampDetails.InstallTimeframe),
		MobilityAids:      model.NewAidSet(aids...),
	}
	state.InstallAddress = r.InstallAddress
	return state
}

// Created is the success body answered by the API.
type Created struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"createdAt"`
	Message    string `json:"message,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
	JobID      string `json:"jobId,omitempty"`
}

// ErrorBody is the failure body answered by the API. Errors holds field
// messages keyed by wire path, either flat or nested.
type ErrorBody struct {
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Errors  map[string]any `json:"errors,omitempty"`
}
