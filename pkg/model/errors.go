package model

import "sort"

// Errors maps a field to its current human readable error. A missing key
// means the field is valid.
type Errors map[FieldID]string

// Has reports whether field currently has an error.
func (e Errors) Has(field FieldID) bool {
	_, ok := e[field]
	return ok
}

// Empty reports whether there are no errors.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Clone copies the map. A nil receiver yields an empty map.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Merge returns a new map containing e overlaid with other.
func (e Errors) Merge(other Errors) Errors {
	out := e.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Section filters the errors to the fields of one section.
func (e Errors) Section(section Section) Errors {
	out := Errors{}
	for k, v := range e {
		if k.Section() == section {
			out[k] = v
		}
	}
	return out
}

// ByFormName keys the errors by flat input name, which is what templates
// and HTML form posts use.
func (e Errors) ByFormName() map[string]string {
	out := make(map[string]string, len(e))
	for k, v := range e {
		out[k.FormName()] = v
	}
	return out
}

// Fields returns the erroring fields in display order.
func (e Errors) Fields() []FieldID {
	out := make([]FieldID, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	index := make(map[FieldID]int, len(fieldOrder))
	for i, id := range fieldOrder {
		index[id] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		return index[out[i]] < index[out[j]]
	})
	return out
}
