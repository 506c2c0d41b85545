// Package validation holds the field and section rules of the rental
// request form. Rules are pure: they read a FormState and return messages
// keyed by FieldID. An empty result means the section is valid.
package validation
