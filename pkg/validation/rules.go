package validation

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-rentalform/pkg/model"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Rule checks one field of the state. ok is false when the field is valid.
type Rule func(state model.FormState) (msg Message, ok bool)

var rules = map[model.FieldID]Rule{
	model.FieldFirstName:         required(func(s model.FormState) string { return s.Contact.FirstName }, MsgFirstNameRequired),
	model.FieldLastName:          required(func(s model.FormState) string { return s.Contact.LastName }, MsgLastNameRequired),
	model.FieldEmail:             checkEmail,
	model.FieldPhone:             checkPhone,
	model.FieldEstimatedLength:   checkLength,
	model.FieldEstimatedDuration: checkDuration,
	model.FieldTimeframe:         checkTimeframe,
	model.FieldMobilityAids:      checkAids,
	model.FieldInstallAddress:    required(func(s model.FormState) string { return s.InstallAddress }, MsgInstallAddressRequired),
}

// RuleFor returns the rule attached to field. The yes/no flags have no rule
// of their own; they gate the numeric rules.
func RuleFor(field model.FieldID) (Rule, bool) {
	rule, ok := rules[field]
	return rule, ok
}

func required(get func(model.FormState) string, msg Message) Rule {
	return func(state model.FormState) (Message, bool) {
		if strings.TrimSpace(get(state)) == "" {
			return msg, true
		}
		return Message{}, false
	}
}

func checkEmail(state model.FormState) (Message, bool) {
	email := state.Contact.Email
	if strings.TrimSpace(email) == "" {
		return MsgEmailRequired, true
	}
	if !emailPattern.MatchString(email) {
		return MsgEmailFormat, true
	}
	return Message{}, false
}

func checkPhone(state model.FormState) (Message, bool) {
	phone := state.Contact.Phone
	if strings.TrimSpace(phone) == "" {
		return MsgPhoneRequired, true
	}
	if !IsFormattedPhone(phone) {
		return MsgPhoneFormat, true
	}
	return Message{}, false
}

func checkLength(state model.FormState) (Message, bool) {
	if state.Details.KnowsLength && !positive(state.Details.EstimatedLength) {
		return MsgRampLengthInvalid, true
	}
	return Message{}, false
}

func checkDuration(state model.FormState) (Message, bool) {
	if state.Details.KnowsDuration && !positive(state.Details.EstimatedDuration) {
		return MsgRentalDurationInvalid, true
	}
	return Message{}, false
}

func checkTimeframe(state model.FormState) (Message, bool) {
	if !state.Details.Timeframe.Valid() {
		return MsgTimeframeInvalid, true
	}
	return Message{}, false
}

func checkAids(state model.FormState) (Message, bool) {
	aids := state.Details.MobilityAids
	if len(aids) == 0 {
		return MsgMobilityAidsInvalid, true
	}
	for aid := range aids {
		if !aid.Valid() {
			return MsgMobilityAidsInvalid, true
		}
	}
	return Message{}, false
}

func positive(v *int) bool {
	return v != nil && *v > 0
}
