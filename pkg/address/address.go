// Package address resolves free-text install addresses into formatted
// addresses and suggestion lists.
package address

import (
	"context"
	"errors"
	"strings"
)

// DefaultCountry restricts lookups to the service area.
const DefaultCountry = "us"

var (
	// ErrNotConfigured is returned when a resolver lacks its credentials.
	ErrNotConfigured = errors.New("address: resolver is not configured")
	// ErrNoMatch is returned by Resolve when nothing matches the query.
	ErrNoMatch = errors.New("address: no matching address")
)

// Query is a lookup request. Country is an ISO 3166-1 alpha-2 code; empty
// means unrestricted.
type Query struct {
	Text    string
	Country string
}

// Normalize trims the text and lowercases the country.
func (q Query) Normalize() Query {
	return Query{
		Text:    strings.TrimSpace(q.Text),
		Country: strings.ToLower(strings.TrimSpace(q.Country)),
	}
}

// Suggestion is one candidate address. Value is what gets written to the
// form; Label is what is shown.
type Suggestion struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Resolver looks up addresses.
type Resolver interface {
	Resolve(ctx context.Context, query Query) (string, error)
	Suggest(ctx context.Context, query Query, limit int) ([]Suggestion, error)
}
