package forms

import "sort"

// Mode distinguishes create forms from edit forms.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Values holds the editable projection of a record. Every schema field is
// always present; optional fields hold "" rather than being absent.
type Values map[string]string

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Keys returns the field names in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Message is a translatable validation message.
type Message struct {
	Key   string `json:"key"`
	Param string `json:"param,omitempty"`
}

// FieldErrors maps a field name to its message.
type FieldErrors map[string]Message

// Merge copies every entry of other into e.
func (e FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		e[k] = v
	}
}
