package html

import (
	"strconv"
	"time"

	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/render"
)

// templateData flattens the view into plain maps. The template engine
// round-trips values through JSON, so everything here is a string, bool,
// slice or map.
func (r *Renderer) templateData(view render.View) map[string]any {
	state := view.State
	data := map[string]any{
		"locale":          view.Locale,
		"page":            view.Page().String(),
		"hidden":          hiddenData(view.Hidden),
		"banner":          view.Banner,
		"form_errors":     view.FormErrors,
		"submit_disabled": view.SubmitDisabled,
		"suggest_url":     view.SuggestURL,
		"theme":           r.theme,
		"stylesheet":      r.stylesheet,
		"base_stylesheet": r.baseStylesheet,
		"actions": map[string]any{
			"contact":         r.actions.Contact,
			"details":         r.actions.Details,
			"start_over":      r.actions.StartOver,
			"resolve_address": r.actions.ResolveAddress,
		},
	}

	switch view.Page() {
	case model.PageContact:
		data["contact_fields"] = contactFields(state)
	case model.PageDetails:
		data["flag_groups"] = []map[string]any{
			flagGroup(state, model.FieldKnowsLength, state.Details.KnowsLength, "field.knowRampLength",
				model.FieldEstimatedLength, state.Details.EstimatedLength, "field.estimatedRampLength"),
			flagGroup(state, model.FieldKnowsDuration, state.Details.KnowsDuration, "field.knowRentalDuration",
				model.FieldEstimatedDuration, state.Details.EstimatedDuration, "field.estimatedRentalDuration"),
		}
		data["timeframe"] = timeframeData(state)
		data["aids"] = aidsData(state)
		data["address"] = map[string]any{
			"name":  model.FieldInstallAddress.FormName(),
			"value": state.InstallAddress,
			"error": state.Errors[model.FieldInstallAddress],
		}
	case model.PageConfirmation:
		data["confirmation"] = confirmationData(state.Submission.Confirmation)
	}
	return data
}

func hiddenData(fields []render.HiddenField) []map[string]any {
	out := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

var contactInputs = []struct {
	field        model.FieldID
	labelKey     string
	inputType    string
	autocomplete string
}{
	{model.FieldFirstName, "field.firstName", "text", "given-name"},
	{model.FieldLastName, "field.lastName", "text", "family-name"},
	{model.FieldEmail, "field.email", "email", "email"},
	{model.FieldPhone, "field.phone", "tel", "tel"},
}

func contactFields(state model.FormState) []map[string]any {
	values := map[model.FieldID]string{
		model.FieldFirstName: state.Contact.FirstName,
		model.FieldLastName:  state.Contact.LastName,
		model.FieldEmail:     state.Contact.Email,
		model.FieldPhone:     state.Contact.Phone,
	}
	out := make([]map[string]any, 0, len(contactInputs))
	for _, input := range contactInputs {
		out = append(out, map[string]any{
			"name":         input.field.FormName(),
			"label":        input.field.Label(),
			"label_key":    input.labelKey,
			"type":         input.inputType,
			"autocomplete": input.autocomplete,
			"value":        values[input.field],
			"error":        state.Errors[input.field],
		})
	}
	return out
}

func flagGroup(state model.FormState, flag model.FieldID, checked bool, flagKey string, amount model.FieldID, value *int, amountKey string) map[string]any {
	return map[string]any{
		"flag": map[string]any{
			"name":      flag.FormName(),
			"label":     flag.Label(),
			"label_key": flagKey,
			"checked":   checked,
		},
		"amount": map[string]any{
			"name":      amount.FormName(),
			"label":     amount.Label(),
			"label_key": amountKey,
			"value":     formatOptionalInt(value),
			"error":     state.Errors[amount],
		},
	}
}

func timeframeData(state model.FormState) map[string]any {
	options := make([]map[string]any, 0, len(model.Timeframes()))
	for _, tf := range model.Timeframes() {
		options = append(options, map[string]any{
			"value":    string(tf),
			"selected": tf == state.Details.Timeframe,
		})
	}
	return map[string]any{
		"name":    model.FieldTimeframe.FormName(),
		"error":   state.Errors[model.FieldTimeframe],
		"options": options,
	}
}

func aidsData(state model.FormState) map[string]any {
	options := make([]map[string]any, 0, len(model.Aids()))
	for _, aid := range model.Aids() {
		options = append(options, map[string]any{
			"value":   string(aid),
			"label":   aid.Label(),
			"checked": state.Details.MobilityAids.Has(aid),
		})
	}
	return map[string]any{
		"name":    model.FieldMobilityAids.FormName(),
		"error":   state.Errors[model.FieldMobilityAids],
		"options": options,
	}
}

func confirmationData(c *model.Confirmation) map[string]any {
	if c == nil {
		return map[string]any{}
	}
	return map[string]any{
		"id":          c.ID,
		"message":     c.Message,
		"created_at":  c.CreatedAt.Format(time.RFC3339),
		"customer_id": c.CustomerID,
		"job_id":      c.JobID,
	}
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
