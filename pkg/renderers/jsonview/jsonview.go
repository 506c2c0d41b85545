// Package jsonview renders the wizard view as a JSON document for script
// clients that draw their own pages.
package jsonview

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/render"
)

// Name is the registry name of the JSON renderer.
const Name = "json"

// Document is the JSON shape of a rendered view.
type Document struct {
	Page           string              `json:"page"`
	Locale         string              `json:"locale,omitempty"`
	State          model.FormState     `json:"state"`
	Errors         map[string]string   `json:"errors"`
	Banner         string              `json:"banner,omitempty"`
	FormErrors     []string            `json:"formErrors,omitempty"`
	SubmitDisabled bool                `json:"submitDisabled"`
	Hidden         map[string]string   `json:"hidden,omitempty"`
	Confirmation   *model.Confirmation `json:"confirmation,omitempty"`
	Options        map[string][]Option `json:"options,omitempty"`
}

// Option is one selectable value for an enumerated field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Renderer encodes views with goccy/go-json.
type Renderer struct {
	indent bool
}

var _ render.Renderer = (*Renderer)(nil)

// New builds a JSON renderer. indent pretty-prints the output.
func New(indent bool) *Renderer {
	return &Renderer{indent: indent}
}

// Name identifies the renderer inside the registry.
func (r *Renderer) Name() string {
	return Name
}

// ContentType returns the MIME type for generated documents.
func (r *Renderer) ContentType() string {
	return "application/json; charset=utf-8"
}

// Render encodes the view.
func (r *Renderer) Render(_ context.Context, view render.View) ([]byte, error) {
	doc := NewDocument(view)
	var (
		payload []byte
		err     error
	)
	if r.indent {
		payload, err = json.MarshalIndent(doc, "", "  ")
	} else {
		payload, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: marshal view: %w", err)
	}
	return payload, nil
}

// NewDocument builds the JSON document for view. Field errors are keyed by
// flat form name.
func NewDocument(view render.View) Document {
	state := view.State.Clone()
	doc := Document{
		Page:           view.Page().String(),
		Locale:         view.Locale,
		State:          state,
		Errors:         state.Errors.ByFormName(),
		Banner:         view.Banner,
		FormErrors:     view.FormErrors,
		SubmitDisabled: view.SubmitDisabled,
		Hidden:         render.HiddenMap(view.Hidden),
		Confirmation:   state.Submission.Confirmation,
	}
	if view.Page() == model.PageDetails {
		doc.Options = detailOptions()
	}
	return doc
}

func detailOptions() map[string][]Option {
	timeframes := make([]Option, 0, len(model.Timeframes()))
	for _, tf := range model.Timeframes() {
		timeframes = append(timeframes, Option{Value: string(tf), Label: string(tf)})
	}
	aids := make([]Option, 0, len(model.Aids()))
	for _, aid := range model.Aids() {
		aids = append(aids, Option{Value: string(aid), Label: aid.Label()})
	}
	return map[string][]Option{
		model.FieldTimeframe.FormName():    timeframes,
		model.FieldMobilityAids.FormName(): aids,
	}
}
