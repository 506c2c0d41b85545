package model

import (
	"strings"
	"time"
)

// SubmissionStatus tags the Submission state.
type SubmissionStatus int

const (
	SubmissionIdle SubmissionStatus = iota
	SubmissionInFlight
	SubmissionSucceeded
	SubmissionFailed
)

func (s SubmissionStatus) String() string {
	switch s {
	case SubmissionIdle:
		return "idle"
	case SubmissionInFlight:
		return "in_flight"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets the status render as its slug in JSON snapshots.
func (s SubmissionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the slug produced by MarshalText.
func (s *SubmissionStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in_flight":
		*s = SubmissionInFlight
	case "succeeded":
		*s = SubmissionSucceeded
	case "failed":
		*s = SubmissionFailed
	default:
		*s = SubmissionIdle
	}
	return nil
}

// Confirmation is the payload returned by the rental requests API once a
// request has been accepted. ID and CreatedAt are always present.
type Confirmation struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	Message    string    `json:"message,omitempty"`
	CustomerID string    `json:"customerId,omitempty"`
	JobID      string    `json:"jobId,omitempty"`
}

// Submission is the tagged submission state. Confirmation is only set when
// Status is SubmissionSucceeded. Message and FormErrors only when it is
// SubmissionFailed.
type Submission struct {
	Status       SubmissionStatus `json:"status"`
	Confirmation *Confirmation    `json:"confirmation,omitempty"`
	Message      string           `json:"message,omitempty"`
	// FormErrors are server messages that could not be tied to a field.
	FormErrors []string `json:"formErrors,omitempty"`
}

// Idle returns the initial submission state.
func Idle() Submission { return Submission{Status: SubmissionIdle} }

// InFlight marks a request as sent and awaiting a response.
func InFlight() Submission { return Submission{Status: SubmissionInFlight} }

// Succeeded records an accepted request.
func Succeeded(c Confirmation) Submission {
	return Submission{Status: SubmissionSucceeded, Confirmation: &c}
}

// Failed records a rejected or undeliverable request. formErrors carries
// server messages that belong to no field.
func Failed(message string, formErrors ...string) Submission {
	sub := Submission{Status: SubmissionFailed, Message: message}
	for _, msg := range formErrors {
		if msg = strings.TrimSpace(msg); msg != "" {
			sub.FormErrors = append(sub.FormErrors, msg)
		}
	}
	return sub
}

// CanTransition reports whether moving from the current status to next is
// allowed: Idle -> InFlight -> {Succeeded | Failed}, Failed -> InFlight.
func (s Submission) CanTransition(next SubmissionStatus) bool {
	switch s.Status {
	case SubmissionIdle, SubmissionFailed:
		return next == SubmissionInFlight
	case SubmissionInFlight:
		return next == SubmissionSucceeded || next == SubmissionFailed
	default:
		return false
	}
}

// Clone copies the confirmation pointer target.
func (s Submission) Clone() Submission {
	out := s
	if s.Confirmation != nil {
		c := *s.Confirmation
		out.Confirmation = &c
	}
	if s.FormErrors != nil {
		out.FormErrors = append([]string(nil), s.FormErrors...)
	}
	return out
}
