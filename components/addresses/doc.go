// Package addresses serves install address autocomplete over HTTP.
//
// GET ?q=<text>&limit=<n> answers {"data":[{"value","label"}...]}. Lookups go
// to an address.Resolver restricted to one country. Short queries and
// resolver failures answer an empty list, so the page falls back to a plain
// text input.
package addresses
