package validation

// Message is a validation failure: a stable ID for localization plus the
// English default text.
type Message struct {
	ID      string
	Default string
}

var (
	MsgFirstNameRequired      = Message{ID: "validation.firstName.required", Default: "First name is required"}
	MsgLastNameRequired       = Message{ID: "validation.lastName.required", Default: "Last name is required"}
	MsgEmailRequired          = Message{ID: "validation.email.required", Default: "Email is required"}
	MsgEmailFormat            = Message{ID: "validation.email.format", Default: "Invalid email format"}
	MsgPhoneRequired          = Message{ID: "validation.phone.required", Default: "Phone number is required"}
	MsgPhoneFormat            = Message{ID: "validation.phone.format", Default: "Invalid phone number format"}
	MsgRampLengthInvalid      = Message{ID: "validation.rampLength.invalid", Default: "Please enter a valid ramp length"}
	MsgRentalDurationInvalid  = Message{ID: "validation.rentalDuration.invalid", Default: "Please enter a valid rental duration"}
	MsgTimeframeInvalid       = Message{ID: "validation.installTimeframe.invalid", Default: "Please select a valid installation timeframe"}
	MsgMobilityAidsInvalid    = Message{ID: "validation.mobilityAids.invalid", Default: "Please select valid mobility aids"}
	MsgInstallAddressRequired = Message{ID: "validation.installAddress.required", Default: "Installation address is required"}
)
