// Package model defines the typed state of the rental request wizard. A
// FormState holds every collected value (contact details, ramp details and the
// installation address) together with the wizard position, the current field
// errors and the submission status.
//
// Fields are addressed through FieldID rather than free-form dotted paths. Each
// FieldID knows the section it belongs to, the flat name used by HTML form
// posts, the wire path used by the rental requests API and how to apply a raw
// value onto a FormState, so callers keep a single generic change entry point
// (Change) without giving up compile-time safety.
//
// Conditional values (estimated ramp length and rental duration) are pointers:
// nil means "not provided" and readers must handle that case explicitly. They
// only carry meaning when the paired Knows* flag is set.
package model
