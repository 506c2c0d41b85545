package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-rentalform/pkg/model"
	"github.com/goliatone/go-rentalform/pkg/render"
)

// ErrInvalidConfirmation is wrapped by ServerError when a 2xx body lacks the
// id or createdAt fields.
var ErrInvalidConfirmation = errors.New("gateway: confirmation payload is incomplete")

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gateway: network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError means no response arrived within the configured timeout.
type TimeoutError struct {
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("gateway: no response after %s", e.After)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Timeout reports true so callers can branch without knowing the type.
func (e *TimeoutError) Timeout() bool { return true }

// ServerError is a non-2xx answer, or a 2xx answer that could not be read.
type ServerError struct {
	Status  int
	Message string
	// Fields are server validation messages mapped onto form fields.
	Fields model.Errors
	// Form are server messages that could not be tied to a field.
	Form []string
	Err  error
}

func (e *ServerError) Error() string {
	text := e.Message
	if text == "" && e.Err != nil {
		text = e.Err.Error()
	}
	if text == "" {
		text = http.StatusText(e.Status)
	}
	return fmt.Sprintf("gateway: server answered %d: %s", e.Status, text)
}

func (e *ServerError) Unwrap() error { return e.Err }

// StatusCode exposes the HTTP status.
func (e *ServerError) StatusCode() int { return e.Status }

// UserMessage is the message the server asked to show, if any.
func (e *ServerError) UserMessage() string { return e.Message }

// FieldErrors returns the field-level messages.
func (e *ServerError) FieldErrors() model.Errors { return e.Fields.Clone() }

// FormErrors returns the messages that belong to no field.
func (e *ServerError) FormErrors() []string {
	if len(e.Form) == 0 {
		return nil
	}
	return append([]string(nil), e.Form...)
}

// ContractIssue is one request contract violation.
type ContractIssue struct {
	Path    string
	Message string
}

// ContractError means the outgoing body violates the API contract. The
// request is not sent.
type ContractError struct {
	Issues []ContractIssue
}

func (e *ContractError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "gateway: request violates contract: " + strings.Join(parts, "; ")
}

// FieldErrors maps the issues onto form fields.
func (e *ContractError) FieldErrors() model.Errors {
	payload := make(map[string][]string, len(e.Issues))
	for _, issue := range e.Issues {
		payload[issue.Path] = append(payload[issue.Path], issue.Message)
	}
	return render.MapErrorPayload(payload).Errors()
}

// newServerError reads an error body. Field messages may be flat
// ({"customerInfo.email": "..."}) or nested like the request
// ({"customerInfo": {"email": "..."}}).
func newServerError(status int, body ErrorBody) *ServerError {
	message := strings.TrimSpace(body.Message)
	if message == "" {
		message = strings.TrimSpace(body.Error)
	}

	flat := make(map[string][]string)
	flattenErrors("", body.Errors, flat)
	mapping := render.MapErrorPayload(flat)

	return &ServerError{
		Status:  status,
		Message: message,
		Fields:  mapping.Errors(),
		Form:    mapping.Form,
	}
}

func flattenErrors(prefix string, raw any, out map[string][]string) {
	switch v := raw.(type) {
	case nil:
	case string:
		out[prefix] = append(out[prefix], v)
	case []any:
		for _, item := range v {
			flattenErrors(prefix, item, out)
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			flattenErrors(path, v[k], out)
		}
	default:
		out[prefix] = append(out[prefix], fmt.Sprint(v))
	}
}
