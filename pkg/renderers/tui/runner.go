// Package tui drives the rental request wizard from an interactive terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/render"
	"github.com/goliatone/go-rentalform/pkg/validation"
	"github.com/goliatone/go-rentalform/pkg/wizard"
)

// Runner walks a Wizard through its pages with terminal prompts.
type Runner struct {
	wizard     *wizard.Wizard
	prompter   Prompter
	translator render.Translator
	locale     string
	validator  *validation.Validator
	resolver   wizard.AddressResolver
	country    string
	theme      Theme
	logger     *slog.Logger
}

// New builds a Runner around w. It prompts through survey unless
// WithPrompter says otherwise.
func New(w *wizard.Wizard, options ...Option) (*Runner, error) {
	if w == nil {
		return nil, ErrNoWizard
	}
	r := &Runner{
		wizard:   w,
		prompter: NewSurveyPrompter(nil),
		theme:    Theme{ErrorPrefix: "✗ "},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.validator == nil {
		r.validator = validation.New(validation.WithTranslator(r.translator, r.locale))
	}
	if r.locale != "" {
		w.SetLocale(r.locale)
	}
	return r, nil
}

type nextStep int

const (
	stepContinue nextStep = iota
	stepQuit
)

// Run prompts until the user declines another request or aborts. Prompt
// errors are returned as-is; ErrAborted signals an interrupt.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			step nextStep
			err  error
		)
		switch r.wizard.Snapshot().Page {
		case model.PageContact:
			err = r.contactPage(ctx)
		case model.PageDetails:
			step, err = r.detailsPage(ctx)
		default:
			step, err = r.confirmationPage(ctx)
		}
		if err != nil {
			return err
		}
		if step == stepQuit {
			return nil
		}
	}
}

var contactPrompts = []struct {
	field model.FieldID
	key   string
}{
	{model.FieldFirstName, "field.firstName"},
	{model.FieldLastName, "field.lastName"},
	{model.FieldEmail, "field.email"},
	{model.FieldPhone, "field.phone"},
}

func (r *Runner) contactPage(ctx context.Context) error {
	if err := r.info(ctx, r.t("page.contact.title", "Contact Information")); err != nil {
		return err
	}
	for _, p := range contactPrompts {
		if err := r.promptText(ctx, p.field, p.key); err != nil {
			return err
		}
	}
	if !r.wizard.Next() {
		return r.printErrors(ctx, r.wizard.Snapshot().Errors)
	}
	return nil
}

func (r *Runner) detailsPage(ctx context.Context) (nextStep, error) {
	if err := r.info(ctx, r.t("page.details.title", "Ramp Details")); err != nil {
		return stepContinue, err
	}
	if err := r.promptDetails(ctx); err != nil {
		return stepContinue, err
	}
	return r.submitLoop(ctx)
}

func (r *Runner) promptDetails(ctx context.Context) error {
	if err := r.promptAmount(ctx, model.FieldKnowsLength, "field.knowRampLength", model.FieldEstimatedLength, "field.estimatedRampLength"); err != nil {
		return err
	}
	if err := r.promptAmount(ctx, model.FieldKnowsDuration, "field.knowRentalDuration", model.FieldEstimatedDuration, "field.estimatedRentalDuration"); err != nil {
		return err
	}
	if err := r.promptTimeframe(ctx); err != nil {
		return err
	}
	if err := r.promptAids(ctx); err != nil {
		return err
	}
	if err := r.promptText(ctx, model.FieldInstallAddress, "field.installAddress"); err != nil {
		return err
	}
	return r.resolveAddress(ctx)
}

func (r *Runner) submitLoop(ctx context.Context) (nextStep, error) {
	submit := r.t("action.submit", "Submit Request")
	edit := r.t("action.editDetails", "Edit details")
	previous := r.t("action.previous", "Previous")
	quit := r.t("action.quit", "Quit")
	options := []string{submit, edit, previous, quit}

	for {
		idx, err := r.prompter.Choose(ctx, Question{
			Label:   r.t("prompt.action", "What would you like to do?"),
			Options: options,
		})
		if err != nil {
			return stepContinue, err
		}
		switch idx {
		case 1:
			return stepContinue, nil
		case 2:
			r.wizard.Previous()
			return stepContinue, nil
		case 3:
			return stepQuit, nil
		}

		sub, err := r.wizard.Submit(ctx)
		switch {
		case errors.Is(err, wizard.ErrInvalid):
			if err := r.printErrors(ctx, r.wizard.Snapshot().Errors); err != nil {
				return stepContinue, err
			}
			return stepContinue, nil
		case err != nil:
			return stepContinue, fmt.Errorf("tui: submit: %w", err)
		}

		if sub.Status == model.SubmissionSucceeded {
			return stepContinue, nil
		}
		r.logger.Debug("submission failed", "message", sub.Message)
		if err := r.errorf(ctx, "%s %s", r.t("submission.error.prefix", "Error:"), sub.Message); err != nil {
			return stepContinue, err
		}
		for _, msg := range sub.FormErrors {
			if msg == sub.Message {
				continue
			}
			if err := r.errorf(ctx, "%s", msg); err != nil {
				return stepContinue, err
			}
		}
		if errs := r.wizard.Snapshot().Errors; !errs.Empty() {
			if err := r.printErrors(ctx, errs); err != nil {
				return stepContinue, err
			}
		}
		options[0] = r.t("action.retry", "Retry")
	}
}

func (r *Runner) confirmationPage(ctx context.Context) (nextStep, error) {
	state := r.wizard.Snapshot()
	lines := []string{
		r.t("page.confirmation.title", "Thank You!"),
		r.t("page.confirmation.received", "Your rental request has been successfully submitted."),
		r.t("page.confirmation.followup", "Our team will review your request and reach out to you shortly."),
	}
	if c := state.Submission.Confirmation; c != nil && c.ID != "" {
		lines = append(lines, fmt.Sprintf("%s: %s", r.t("page.confirmation.reference", "Reference"), c.ID))
	}
	for _, line := range lines {
		if err := r.info(ctx, line); err != nil {
			return stepContinue, err
		}
	}

	again, err := r.prompter.Confirm(ctx, Question{
		Label: r.t("prompt.startOver", "Would you like to submit another request?"),
	}, false)
	if err != nil {
		return stepContinue, err
	}
	if !again {
		return stepQuit, nil
	}
	return stepContinue, r.wizard.StartOver()
}

// promptText asks for a text field until it validates.
func (r *Runner) promptText(ctx context.Context, field model.FieldID, key string) error {
	for {
		current := textValue(r.wizard.Snapshot(), field)
		value, err := r.prompter.Ask(ctx, Question{
			Label:   r.t(key, field.Label()),
			Default: current,
		})
		if err != nil {
			return err
		}
		if err := r.wizard.Change(model.Set(field, strings.TrimSpace(value))); err != nil {
			return err
		}
		if ok, err := r.checkField(ctx, field); ok || err != nil {
			return err
		}
	}
}

// promptAmount asks the yes/no flag and, when set, the numeric amount.
func (r *Runner) promptAmount(ctx context.Context, flag model.FieldID, flagKey string, amount model.FieldID, amountKey string) error {
	state := r.wizard.Snapshot()
	knows, err := r.prompter.Confirm(ctx, Question{
		Label: r.t(flagKey, flag.Label()),
	}, flagValue(state, flag))
	if err != nil {
		return err
	}
	if err := r.wizard.Change(model.Set(flag, knows)); err != nil {
		return err
	}
	if !knows {
		return r.wizard.Change(model.Set(amount, nil))
	}

	for {
		value, err := r.prompter.Ask(ctx, Question{
			Label:   r.t(amountKey, amount.Label()),
			Default: intValue(r.wizard.Snapshot(), amount),
		})
		if err != nil {
			return err
		}
		if err := r.wizard.Change(model.Set(amount, value)); err != nil {
			return err
		}
		if ok, err := r.checkField(ctx, amount); ok || err != nil {
			return err
		}
	}
}

func (r *Runner) promptTimeframe(ctx context.Context) error {
	current := r.wizard.Snapshot().Details.Timeframe
	timeframes := model.Timeframes()
	options := make([]string, len(timeframes))
	defaultIdx := 0
	for i, tf := range timeframes {
		options[i] = string(tf)
		if tf == current {
			defaultIdx = i
		}
	}

	for {
		idx, err := r.prompter.Choose(ctx, Question{
			Label:   r.t("field.installationTimeframe", model.FieldTimeframe.Label()),
			Options: options,
			Chosen:  []int{defaultIdx},
		})
		if err != nil {
			return err
		}
		value := ""
		if idx >= 0 && idx < len(timeframes) {
			value = string(timeframes[idx])
		}
		if err := r.wizard.Change(model.Set(model.FieldTimeframe, value)); err != nil {
			return err
		}
		if ok, err := r.checkField(ctx, model.FieldTimeframe); ok || err != nil {
			return err
		}
	}
}

func (r *Runner) promptAids(ctx context.Context) error {
	aids := model.Aids()
	options := make([]string, len(aids))
	for i, aid := range aids {
		options[i] = aid.Label()
	}

	for {
		current := r.wizard.Snapshot().Details.MobilityAids
		var defaults []int
		for i, aid := range aids {
			if current.Has(aid) {
				defaults = append(defaults, i)
			}
		}
		picked, err := r.prompter.ChooseMany(ctx, Question{
			Label:   r.t("field.mobilityAids", model.FieldMobilityAids.Label()),
			Options: options,
			Chosen:  defaults,
		})
		if err != nil {
			return err
		}
		selected := make([]model.Aid, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(aids) {
				selected = append(selected, aids[idx])
			}
		}
		if err := r.wizard.Change(model.Set(model.FieldMobilityAids, selected)); err != nil {
			return err
		}
		if ok, err := r.checkField(ctx, model.FieldMobilityAids); ok || err != nil {
			return err
		}
	}
}

func (r *Runner) resolveAddress(ctx context.Context) error {
	if r.resolver == nil {
		return nil
	}
	typed := r.wizard.Snapshot().InstallAddress
	if typed == "" {
		return nil
	}

	select {
	case <-r.wizard.ResolveAddress(ctx, r.resolver, typed, r.country):
	case <-ctx.Done():
		return ctx.Err()
	}

	resolved := r.wizard.Snapshot().InstallAddress
	if resolved == typed {
		return nil
	}
	return r.info(ctx, fmt.Sprintf("%s: %s", r.t("prompt.resolvedAddress", "Resolved address"), resolved))
}

// checkField validates one field against the current snapshot, printing the
// message when it fails.
func (r *Runner) checkField(ctx context.Context, field model.FieldID) (bool, error) {
	msg, failed := r.validator.ValidateField(field, r.wizard.Snapshot())
	if !failed {
		return true, nil
	}
	return false, r.errorf(ctx, "%s", msg)
}

func (r *Runner) printErrors(ctx context.Context, errs model.Errors) error {
	for _, field := range errs.Fields() {
		if err := r.errorf(ctx, "%s: %s", r.t(labelKey(field), field.Label()), errs[field]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.prompter.Print(ctx, r.theme.InfoPrefix+msg)
}

func (r *Runner) errorf(ctx context.Context, format string, args ...any) error {
	return r.prompter.Print(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

func (r *Runner) t(key, fallback string) string {
	return render.Localize(r.translator, r.locale, key, fallback)
}

func labelKey(field model.FieldID) string {
	return "field." + field.FormName()
}

func textValue(state model.FormState, field model.FieldID) string {
	switch field {
	case model.FieldFirstName:
		return state.Contact.FirstName
	case model.FieldLastName:
		return state.Contact.LastName
	case model.FieldEmail:
		return state.Contact.Email
	case model.FieldPhone:
		return state.Contact.Phone
	case model.FieldInstallAddress:
		return state.InstallAddress
	default:
		return ""
	}
}

func flagValue(state model.FormState, field model.FieldID) bool {
	if field == model.FieldKnowsDuration {
		return state.Details.KnowsDuration
	}
	return state.Details.KnowsLength
}

func intValue(state model.FormState, field model.FieldID) string {
	v := state.Details.EstimatedLength
	if field == model.FieldEstimatedDuration {
		v = state.Details.EstimatedDuration
	}
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
