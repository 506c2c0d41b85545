package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-rentalform/pkg/model"
)

// Hidden input names shared by page templates and the server.
const (
	CSRFFieldName = "_csrf"
	PageFieldName = "_page"
)

// HiddenField is a hidden input posted back with the page form.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden builds a HiddenField, formatting value with fmt.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken carries the session's anti-forgery token.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// PageField records the page a form was rendered for. The server rejects
// posts whose page the wizard has already left (back button, double submit).
func PageField(name string, page model.Page) HiddenField {
	return Hidden(name, page.String())
}

// HiddenMap indexes fields by name. Later fields win.
func HiddenMap(fields []HiddenField) map[string]string {
	var out map[string]string
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(fields))
		}
		out[field.Name] = field.Value
	}
	return out
}

// normalizeHidden drops unnamed fields, keeps the last value per name and
// orders the result by name so pages render the same on every request.
func normalizeHidden(fields []HiddenField) []HiddenField {
	byName := HiddenMap(fields)
	if len(byName) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(byName))
	for name, value := range byName {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
