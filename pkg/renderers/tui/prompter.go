package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Question is one prompt shown to the user. Default seeds text answers and
// Chosen preselects options by index.
type Question struct {
	Label   string
	Help    string
	Default string
	Options []string
	Chosen  []int
}

// Prompter is the terminal seen by the Runner. Tests script it.
type Prompter interface {
	Ask(ctx context.Context, q Question) (string, error)
	Confirm(ctx context.Context, q Question, yes bool) (bool, error)
	Choose(ctx context.Context, q Question) (int, error)
	ChooseMany(ctx context.Context, q Question) ([]int, error)
	Print(ctx context.Context, line string) error
}

type surveyPrompter struct {
	out  io.Writer
	opts []survey.AskOpt
}

// NewSurveyPrompter prompts on the controlling terminal. Printed lines go to
// out, or stdout when out is nil. opts are passed to every survey question.
func NewSurveyPrompter(out io.Writer, opts ...survey.AskOpt) Prompter {
	if out == nil {
		out = os.Stdout
	}
	return &surveyPrompter{out: out, opts: opts}
}

func (p *surveyPrompter) Ask(ctx context.Context, q Question) (string, error) {
	var answer string
	err := p.ask(ctx, &survey.Input{Message: q.Label, Help: q.Help, Default: q.Default}, &answer)
	return answer, err
}

func (p *surveyPrompter) Confirm(ctx context.Context, q Question, yes bool) (bool, error) {
	answer := yes
	err := p.ask(ctx, &survey.Confirm{Message: q.Label, Help: q.Help, Default: yes}, &answer)
	return answer, err
}

func (p *surveyPrompter) Choose(ctx context.Context, q Question) (int, error) {
	prompt := &survey.Select{Message: q.Label, Help: q.Help, Options: q.Options}
	if len(q.Chosen) > 0 && q.Chosen[0] >= 0 && q.Chosen[0] < len(q.Options) {
		prompt.Default = q.Chosen[0]
	}
	answer := -1
	if err := p.ask(ctx, prompt, &answer); err != nil {
		return -1, err
	}
	return answer, nil
}

func (p *surveyPrompter) ChooseMany(ctx context.Context, q Question) ([]int, error) {
	prompt := &survey.MultiSelect{Message: q.Label, Help: q.Help, Options: q.Options}
	if len(q.Chosen) > 0 {
		prompt.Default = q.Chosen
	}
	var answer []int
	if err := p.ask(ctx, prompt, &answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (p *surveyPrompter) Print(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(p.out, line)
	return err
}

// ask runs one survey prompt. Ctrl+C surfaces as ErrAborted.
func (p *surveyPrompter) ask(ctx context.Context, prompt survey.Prompt, answer any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, answer, p.opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
