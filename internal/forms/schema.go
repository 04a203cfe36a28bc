// Package forms implements the create/edit pipeline shared by every admin
// editor: declarative schemas, form instance state, reference lists, dependent
// selects and submission.
package forms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Input is the HTML control used to render a field.
type Input string

const (
	InputText     Input = "text"
	InputTextarea Input = "textarea"
	InputEmail    Input = "email"
	InputNumber   Input = "number"
	InputDate     Input = "date"
	InputSelect   Input = "select"
	InputCheckbox Input = "checkbox"
)

type valueKind int

const (
	kindString valueKind = iota
	kindNumber
	kindDate
	kindBool
)

type condition struct {
	field string
	value string
}

// Field declares one editable field and its constraints.
type Field struct {
	name         string
	label        string
	input        Input
	kind         valueKind
	required     bool
	requiredOn   Mode
	requiredWhen *condition
	trim         bool
	rules        []string
	after        string
	options      []string
	reference    string
	parent       string
	from         []string
	defaultValue string
}

func newField(name string, input Input, kind valueKind) *Field {
	return &Field{name: name, input: input, kind: kind}
}

// Text declares a single line string field.
func Text(name string) *Field { return newField(name, InputText, kindString) }

// TextArea declares a multi line string field.
func TextArea(name string) *Field { return newField(name, InputTextarea, kindString) }

// Email declares an e-mail field.
func Email(name string) *Field {
	f := newField(name, InputEmail, kindString)
	f.rules = append(f.rules, "email")
	f.trim = true
	return f
}

// Number declares a decimal field.
func Number(name string) *Field {
	f := newField(name, InputNumber, kindNumber)
	f.rules = append(f.rules, "decimal")
	return f
}

// Date declares a date-only field (YYYY-MM-DD).
func Date(name string) *Field {
	f := newField(name, InputDate, kindDate)
	f.rules = append(f.rules, "date")
	return f
}

// Bool declares a checkbox.
func Bool(name string) *Field {
	f := newField(name, InputCheckbox, kindBool)
	f.defaultValue = "false"
	f.rules = append(f.rules, "boolean")
	return f
}

// Enum declares a select over a fixed set of values.
func Enum(name string, values ...string) *Field {
	f := newField(name, InputSelect, kindString)
	f.options = append([]string(nil), values...)
	f.rules = append(f.rules, "oneof="+strings.Join(values, " "))
	return f
}

// Ref declares a select populated from a reference list.
func Ref(name, kind string) *Field {
	f := newField(name, InputSelect, kindString)
	f.reference = kind
	return f
}

// Label sets the translation key of the field label.
func (f *Field) Label(key string) *Field { f.label = key; return f }

// Required makes the field mandatory in every mode.
func (f *Field) Required() *Field { f.required = true; return f }

// RequiredOn makes the field mandatory only in the given mode.
func (f *Field) RequiredOn(mode Mode) *Field { f.requiredOn = mode; return f }

// RequiredWhen makes the field mandatory while another field holds value.
func (f *Field) RequiredWhen(field, value string) *Field {
	f.requiredWhen = &condition{field: field, value: value}
	return f
}

// Trim strips surrounding whitespace before validation and submission.
func (f *Field) Trim() *Field { f.trim = true; return f }

// Max bounds the length in characters.
func (f *Field) Max(n int) *Field { f.rules = append(f.rules, "max="+strconv.Itoa(n)); return f }

// Min requires at least n characters.
func (f *Field) Min(n int) *Field { f.rules = append(f.rules, "min="+strconv.Itoa(n)); return f }

// UUID requires a UUID-shaped value.
func (f *Field) UUID() *Field { f.rules = append(f.rules, "uuid"); return f }

// Positive requires a number greater than zero.
func (f *Field) Positive() *Field { f.rules = append(f.rules, "positive"); return f }

// NotPast rejects dates before today.
func (f *Field) NotPast() *Field { f.rules = append(f.rules, "notpast"); return f }

// NotFuture rejects dates after today.
func (f *Field) NotFuture() *Field { f.rules = append(f.rules, "notfuture"); return f }

// PersonName restricts the value to letters, spaces, apostrophes and dashes.
func (f *Field) PersonName() *Field { f.rules = append(f.rules, "personname"); return f }

// After requires the date to be on or after the date held by another field.
func (f *Field) After(field string) *Field { f.after = field; return f }

// DependsOn marks the field as a dependent select filtered by parent.
func (f *Field) DependsOn(parent string) *Field { f.parent = parent; return f }

// From lists record paths consulted when the flat key is missing, e.g. "sourceVault.id".
func (f *Field) From(paths ...string) *Field { f.from = append(f.from, paths...); return f }

// Default sets the value used by create forms.
func (f *Field) Default(v string) *Field { f.defaultValue = v; return f }

// Name returns the form and wire name.
func (f *Field) Name() string { return f.name }

// LabelKey returns the label translation key.
func (f *Field) LabelKey() string { return f.label }

// Input returns the control type.
func (f *Field) Input() Input { return f.input }

// Options returns the static enum values.
func (f *Field) Options() []string { return f.options }

// ReferenceKind returns the reference list kind, empty for non-reference fields.
func (f *Field) ReferenceKind() string { return f.reference }

// Parent returns the parent field of a dependent select.
func (f *Field) Parent() string { return f.parent }

// IsRequired reports whether the field is mandatory for mode and the current values.
func (f *Field) IsRequired(mode Mode, values Values) bool {
	if f.required {
		return true
	}
	if f.requiredOn != "" && f.requiredOn == mode {
		return true
	}
	if f.requiredWhen != nil && values[f.requiredWhen.field] == f.requiredWhen.value {
		return true
	}
	return false
}

func (f *Field) tag(mode Mode, values Values) string {
	parts := make([]string, 0, len(f.rules)+1)
	if f.IsRequired(mode, values) && f.kind != kindBool {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "omitempty")
	}
	parts = append(parts, f.rules...)
	return strings.Join(parts, ",")
}

func (f *Field) normalize(v string) string {
	if f.trim {
		return strings.TrimSpace(v)
	}
	return v
}

// Schema is the ordered set of fields of one editor.
type Schema struct {
	resource string
	fields   []*Field
	index    map[string]*Field
	validate *validator.Validate
	now      func() time.Time
}

// NewSchema builds a schema. Duplicate names or dangling field references are
// programming errors and panic.
func NewSchema(resource string, fields ...*Field) *Schema {
	s := &Schema{
		resource: resource,
		fields:   fields,
		index:    make(map[string]*Field, len(fields)),
		now:      time.Now,
	}
	for _, f := range fields {
		if _, dup := s.index[f.name]; dup {
			panic(fmt.Sprintf("forms: duplicate field %q in %s", f.name, resource))
		}
		if f.label == "" {
			f.label = resource + ".fields." + f.name
		}
		s.index[f.name] = f
	}
	for _, f := range fields {
		for _, ref := range []string{f.parent, f.after, condField(f.requiredWhen)} {
			if ref == "" {
				continue
			}
			if _, ok := s.index[ref]; !ok {
				panic(fmt.Sprintf("forms: field %q of %s refers to unknown field %q", f.name, resource, ref))
			}
		}
		if f.parent != "" && f.reference == "" {
			panic(fmt.Sprintf("forms: dependent field %q of %s has no reference list", f.name, resource))
		}
	}
	s.validate = newValidate(func() time.Time { return s.now() })
	return s
}

func condField(c *condition) string {
	if c == nil {
		return ""
	}
	return c.field
}

// WithClock replaces the clock used by the date range rules.
func (s *Schema) WithClock(now func() time.Time) *Schema {
	s.now = now
	return s
}

// Resource returns the resource name the schema belongs to.
func (s *Schema) Resource() string { return s.resource }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []*Field { return s.fields }

// Field looks a field up by name.
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.index[name]
	return f, ok
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// References returns the distinct reference kinds used by the schema.
func (s *Schema) References() []string {
	seen := make(map[string]bool)
	var kinds []string
	for _, f := range s.fields {
		if f.reference != "" && !seen[f.reference] {
			seen[f.reference] = true
			kinds = append(kinds, f.reference)
		}
	}
	return kinds
}

// Defaults returns the values of an empty create form.
func (s *Schema) Defaults() Values {
	values := make(Values, len(s.fields))
	for _, f := range s.fields {
		values[f.name] = f.defaultValue
	}
	return values
}

// Normalize restricts v to schema fields and fills the missing ones.
func (s *Schema) Normalize(v Values) Values {
	out := s.Defaults()
	for _, f := range s.fields {
		if val, ok := v[f.name]; ok {
			out[f.name] = f.normalize(val)
		}
	}
	return out
}

// Validate checks every field and returns the failures.
func (s *Schema) Validate(mode Mode, values Values) FieldErrors {
	errs := make(FieldErrors)
	for _, f := range s.fields {
		if msg, ok := s.check(f, mode, values); !ok {
			errs[f.name] = msg
		}
	}
	return errs
}

// ValidateField checks a single field against the full values, which conditional
// and cross-field rules need. ok is false when the field is invalid.
func (s *Schema) ValidateField(mode Mode, values Values, name string) (Message, bool) {
	f, found := s.index[name]
	if !found {
		return Message{Key: "validation.unknown-field"}, false
	}
	return s.check(f, mode, values)
}

func (s *Schema) check(f *Field, mode Mode, values Values) (Message, bool) {
	value := f.normalize(values[f.name])
	if err := s.validate.Var(value, f.tag(mode, values)); err != nil {
		return messageFor(err), false
	}
	if f.after != "" && value != "" {
		other := values[f.after]
		if other != "" && value < other {
			return Message{Key: "validation.after", Param: s.index[f.after].label}, false
		}
	}
	return Message{}, true
}
