package tui

import (
	"log/slog"

	"github.com/goliatone/go-rentalform/pkg/render"
	"github.com/goliatone/go-rentalform/pkg/validation"
	"github.com/goliatone/go-rentalform/pkg/wizard"
)

// Theme captures optional prefixes the runner applies when printing
// messages. Keep minimal to avoid coupling runner logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the Runner.
type Option func(*Runner)

// WithPrompter replaces the survey prompter, e.g. with a scripted one.
func WithPrompter(prompter Prompter) Option {
	return func(r *Runner) {
		if prompter != nil {
			r.prompter = prompter
		}
	}
}

// WithTranslator localizes prompts for locale.
func WithTranslator(t render.Translator, locale string) Option {
	return func(r *Runner) {
		r.translator = t
		r.locale = locale
	}
}

// WithValidator sets the validator used for inline re-prompting. It should
// match the one the wizard was built with.
func WithValidator(v *validation.Validator) Option {
	return func(r *Runner) {
		r.validator = v
	}
}

// WithAddressResolver resolves the typed install address before the submit
// step. country restricts the lookup.
func WithAddressResolver(resolver wizard.AddressResolver, country string) Option {
	return func(r *Runner) {
		r.resolver = resolver
		r.country = country
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}
