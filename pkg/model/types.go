package model

import (
	"strconv"
	"strings"
)

// Page identifies a wizard page. The zero value is the contact page.
type Page int

const (
	PageContact Page = iota
	PageDetails
	PageConfirmation
)

// LastPage is the highest valid page index.
const LastPage = PageConfirmation

var pageNames = [...]string{
	PageContact:      "contact",
	PageDetails:      "details",
	PageConfirmation: "confirmation",
}

// String returns the page slug used in templates and logs.
func (p Page) String() string {
	if !p.Valid() {
		return "unknown"
	}
	return pageNames[p]
}

// Valid reports whether p indexes the page sequence.
func (p Page) Valid() bool {
	return p >= PageContact && p <= LastPage
}

// Clamp returns p limited to the valid page range.
func (p Page) Clamp() Page {
	if p < PageContact {
		return PageContact
	}
	if p > LastPage {
		return LastPage
	}
	return p
}

// ParsePage resolves a page slug (as produced by String) or its index.
func ParsePage(raw string) (Page, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	for idx, name := range pageNames {
		if trimmed == name || trimmed == strconv.Itoa(idx) {
			return Page(idx), true
		}
	}
	return PageContact, false
}

// Contact holds the customer's contact details. Phone is always stored in its
// formatted representation.
type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ServiceDetails describes the requested ramp. EstimatedLength (feet) and
// EstimatedDuration (months) are only meaningful when their Knows* flag is
// true.
type ServiceDetails struct {
	KnowsLength       bool      `json:"knowsLength"`
	EstimatedLength   *int      `json:"estimatedLength,omitempty"`
	KnowsDuration     bool      `json:"knowsDuration"`
	EstimatedDuration *int      `json:"estimatedDuration,omitempty"`
	Timeframe         Timeframe `json:"installationTimeframe"`
	MobilityAids      AidSet    `json:"mobilityAids"`
}

// FormState is the single source of truth for one wizard instance.
type FormState struct {
	Contact        Contact        `json:"contact"`
	Details        ServiceDetails `json:"serviceDetails"`
	InstallAddress string         `json:"installAddress"`
	Page           Page           `json:"currentPage"`
	Errors         Errors         `json:"errors,omitempty"`
	Submission     Submission     `json:"submission"`
}

// NewFormState returns the empty state a wizard starts with.
func NewFormState() FormState {
	return FormState{
		Details: ServiceDetails{
			MobilityAids: AidSet{},
		},
		Errors: Errors{},
	}
}

// Clone returns a deep copy so snapshots never alias the live state.
func (s FormState) Clone() FormState {
	out := s
	out.Details.EstimatedLength = cloneInt(s.Details.EstimatedLength)
	out.Details.EstimatedDuration = cloneInt(s.Details.EstimatedDuration)
	out.Details.MobilityAids = s.Details.MobilityAids.Clone()
	out.Errors = s.Errors.Clone()
	out.Submission = s.Submission.Clone()
	return out
}

// IntPtr is a small helper for building conditional numeric values.
func IntPtr(v int) *int {
	return &v
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
