package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-rentalform/pkg/model"
)

// ErrorMapping is a server error payload sorted into field messages and
// messages that belong to the form as a whole.
type ErrorMapping struct {
	Fields map[model.FieldID][]string
	Form   []string
}

// Errors returns one message per field, joining repeats with "; ".
func (m ErrorMapping) Errors() model.Errors {
	out := model.Errors{}
	for field, messages := range m.Fields {
		if len(messages) > 0 {
			out[field] = strings.Join(messages, "; ")
		}
	}
	return out
}

// payloadWrappers are envelope keys some APIs put in front of field paths.
var payloadWrappers = map[string]bool{
	"body": true, "request": true, "payload": true, "data": true, "attributes": true,
}

// MapErrorPayload attaches server messages to fields. Keys may be wire paths
// ("customerInfo.email"), JSON pointers ("/body/rampDetails/mobilityAids/0"),
// JSONPath ("$.customerInfo.phone") or flat form names ("email"). Keys that
// name no known field land in Form so nothing is dropped.
func MapErrorPayload(payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		messages := cleanMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		field, ok := fieldForKey(key)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[model.FieldID][]string)
		}
		mapping.Fields[field] = cleanMessages(append(mapping.Fields[field], messages...))
	}
	mapping.Form = cleanMessages(mapping.Form)
	return mapping
}

// cleanMessages trims, drops blanks and removes repeats, keeping order.
func cleanMessages(messages []string) []string {
	var out []string
	seen := make(map[string]bool, len(messages))
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message == "" || seen[message] {
			continue
		}
		seen[message] = true
		out = append(out, message)
	}
	return out
}

func fieldForKey(key string) (model.FieldID, bool) {
	segments := keySegments(key)
	for len(segments) > 0 && payloadWrappers[strings.ToLower(segments[0])] {
		segments = segments[1:]
	}
	// the longest prefix wins: rampDetails.mobilityAids.0 is mobilityAids
	for end := len(segments); end > 0; end-- {
		if field, err := model.ParseFieldID(strings.Join(segments[:end], ".")); err == nil {
			return field, true
		}
	}
	return "", false
}

// keySegments splits an error key on dots, slashes and brackets. Array
// indexes are dropped and JSON pointer escapes are undone.
func keySegments(key string) []string {
	key = strings.TrimLeft(strings.TrimSpace(key), "#$./")
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '.' || r == '/' || r == '[' || r == ']'
	})

	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := strconv.Atoi(part); err == nil {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		segments = append(segments, strings.ReplaceAll(part, "~0", "~"))
	}
	return segments
}
