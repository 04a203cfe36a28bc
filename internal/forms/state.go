package forms

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/podkrepi-bg/admin/internal/api"
)

// FieldStatus is the per-field state machine: pristine -> touched -> valid|invalid.
type FieldStatus string

const (
	StatusPristine FieldStatus = "pristine"
	StatusTouched  FieldStatus = "touched"
	StatusValid    FieldStatus = "valid"
	StatusInvalid  FieldStatus = "invalid"
)

// State is one mounted form instance. It lives from the request that renders
// the form until a successful submit, an explicit discard or expiry.
type State struct {
	ID        string          `json:"id"`
	Resource  string          `json:"resource"`
	Mode      Mode            `json:"mode"`
	RecordID  string          `json:"recordId,omitempty"`
	Values    Values          `json:"values"`
	Initial   Values          `json:"initial"`
	Touched   map[string]bool `json:"touched,omitempty"`
	Validated map[string]bool `json:"validated,omitempty"`
	Submitted bool            `json:"submitted"`
	Errors    FieldErrors     `json:"errors,omitempty"`
	MountedAt time.Time       `json:"mountedAt"`
}

// Mount creates a form instance, from record when editing or from defaults.
func Mount(s *Schema, mode Mode, recordID string, record api.Record) *State {
	var values Values
	if record != nil {
		values = s.FromRecord(record)
	} else {
		values = s.Defaults()
	}
	return &State{
		ID:        uuid.NewString(),
		Resource:  s.Resource(),
		Mode:      mode,
		RecordID:  recordID,
		Values:    values,
		Initial:   values.Clone(),
		Touched:   make(map[string]bool),
		Validated: make(map[string]bool),
		Errors:    make(FieldErrors),
		MountedAt: time.Now().UTC(),
	}
}

// Get returns the current value of a field.
func (st *State) Get(name string) string { return st.Values[name] }

// Set assigns a field value. Unknown names are ignored.
func (st *State) Set(name, value string) {
	if _, ok := st.Values[name]; ok {
		st.Values[name] = value
	}
}

// Apply copies posted form data onto the state. Fields the browser did not send
// (disabled selects) keep their value; unchecked checkboxes become "false".
func (st *State) Apply(s *Schema, posted url.Values) {
	for _, f := range s.Fields() {
		if f.kind == kindBool {
			switch posted.Get(f.name) {
			case "true", "on", "1":
				st.Values[f.name] = "true"
			default:
				st.Values[f.name] = "false"
			}
			continue
		}
		if vals, ok := posted[f.name]; ok && len(vals) > 0 {
			st.Values[f.name] = f.normalize(vals[0])
		}
	}
}

// Touch marks a field as visited.
func (st *State) Touch(name string) {
	if st.Touched == nil {
		st.Touched = make(map[string]bool)
	}
	st.Touched[name] = true
}

// Dirty reports whether the user changed the field since mount.
func (st *State) Dirty(name string) bool {
	return st.Values[name] != st.Initial[name]
}

// Reinitialize merges a refetched record into the form, keeping every value the
// user has changed since mount. The refetched values become the new baseline.
func (st *State) Reinitialize(s *Schema, record api.Record) {
	fresh := s.FromRecord(record)
	for name, value := range fresh {
		if !st.Dirty(name) {
			st.Values[name] = value
		}
	}
	st.Initial = fresh
}

// Validate runs the whole schema and stores the result.
func (st *State) Validate(s *Schema) FieldErrors {
	st.Errors = s.Validate(st.Mode, st.Values)
	if st.Validated == nil {
		st.Validated = make(map[string]bool)
	}
	for _, name := range s.Names() {
		st.Validated[name] = true
	}
	return st.Errors
}

// ValidateField touches and validates one field, as on blur.
func (st *State) ValidateField(s *Schema, name string) (Message, bool) {
	st.Touch(name)
	msg, ok := s.ValidateField(st.Mode, st.Values, name)
	if st.Errors == nil {
		st.Errors = make(FieldErrors)
	}
	if st.Validated == nil {
		st.Validated = make(map[string]bool)
	}
	st.Validated[name] = true
	if ok {
		delete(st.Errors, name)
	} else {
		st.Errors[name] = msg
	}
	return msg, ok
}

// ValidateFields validates a section of the form as if each field was blurred
// and returns the failures among them.
func (st *State) ValidateFields(s *Schema, names ...string) FieldErrors {
	errs := make(FieldErrors)
	for _, name := range names {
		if msg, ok := st.ValidateField(s, name); !ok {
			errs[name] = msg
		}
	}
	return errs
}

// Status reports the state machine position of a field.
func (st *State) Status(name string) FieldStatus {
	if !st.Touched[name] && !st.Submitted {
		return StatusPristine
	}
	if !st.Validated[name] {
		return StatusTouched
	}
	if _, bad := st.Errors[name]; bad {
		return StatusInvalid
	}
	return StatusValid
}

// ErrorFor returns the message to display for a field. Errors stay hidden until
// the field was touched or a submit was attempted.
func (st *State) ErrorFor(name string) (Message, bool) {
	if st.Status(name) != StatusInvalid {
		return Message{}, false
	}
	msg := st.Errors[name]
	return msg, true
}

// VisibleErrors returns only the errors that may be displayed.
func (st *State) VisibleErrors() FieldErrors {
	out := make(FieldErrors)
	for name := range st.Errors {
		if msg, ok := st.ErrorFor(name); ok {
			out[name] = msg
		}
	}
	return out
}
