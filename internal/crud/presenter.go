package crud

import (
	"github.com/podkrepi-bg/admin/internal/forms"
	"github.com/podkrepi-bg/admin/internal/grid"
)

// FormView is the template model of a create or edit form.
type FormView struct {
	ID          string
	Resource    string
	Mode        forms.Mode
	Action      string
	ValidateURL string
	DiscardURL  string
	CancelURL   string
	Pending     bool
	Fields      []FieldView
}

// FieldView is one rendered input.
type FieldView struct {
	Name     string
	Label    string
	Input    forms.Input
	Value    string
	Required bool
	Status   forms.FieldStatus
	Error    *forms.Message
	Parent   string
	Disabled bool
	Sentinel string
	Options  []OptionView
}

// Checked reports whether a checkbox is ticked.
func (f FieldView) Checked() bool { return f.Value == "true" }

// IsSelect reports whether the field renders a select.
func (f FieldView) IsSelect() bool { return f.Input == forms.InputSelect }

// OptionView is one select option.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

func buildForm(res Resource, st *forms.State, lists map[string]forms.List, pending bool) FormView {
	base := "/" + res.Name
	fv := FormView{
		ID:          st.ID,
		Resource:    res.Name,
		Mode:        st.Mode,
		Action:      base,
		ValidateURL: base + "/validate",
		DiscardURL:  "/forms/" + st.ID + "/discard",
		CancelURL:   base,
		Pending:     pending,
	}
	if st.Mode == forms.ModeEdit {
		fv.Action = base + "/" + st.RecordID
	}
	fv.Fields = BuildFields(res.Schema, st, lists)
	return fv
}

// BuildFields renders the named fields of st, or every field when names is
// empty.
func BuildFields(schema *forms.Schema, st *forms.State, lists map[string]forms.List, names ...string) []FieldView {
	fields := schema.Fields()
	if len(names) > 0 {
		fields = make([]*forms.Field, 0, len(names))
		for _, name := range names {
			if f, ok := schema.Field(name); ok {
				fields = append(fields, f)
			}
		}
	}
	out := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		name := f.Name()
		view := FieldView{
			Name:     name,
			Label:    f.LabelKey(),
			Input:    f.Input(),
			Value:    st.Get(name),
			Required: f.IsRequired(st.Mode, st.Values),
			Status:   st.Status(name),
			Parent:   f.Parent(),
		}
		if msg, ok := st.ErrorFor(name); ok {
			m := msg
			view.Error = &m
		}
		if f.Input() == forms.InputSelect {
			view.Sentinel = "form.select.none"
			if kind := f.ReferenceKind(); kind != "" {
				list, ok := lists[kind]
				if !ok {
					list = forms.List{Kind: kind, State: forms.ListUnavailable}
				}
				if f.Parent() != "" {
					list = forms.Filter(list, st.Get(f.Parent()))
				}
				view.Sentinel = list.SentinelLabel()
				view.Disabled = !list.Available()
				view.Options = referenceOptions(list, view.Value, f.Parent() == "")
			} else {
				view.Options = enumOptions(f.Options(), view.Value)
			}
		}
		out = append(out, view)
	}
	return out
}

// referenceOptions renders list options. A selected id missing from an
// independent list stays selectable so an edit does not silently drop it.
func referenceOptions(list forms.List, value string, keepUnknown bool) []OptionView {
	out := make([]OptionView, 0, len(list.Options)+1)
	for _, o := range list.Options {
		out = append(out, OptionView{Value: o.ID, Label: o.Label, Selected: o.ID == value})
	}
	if keepUnknown && value != "" && list.Available() && !list.Contains(value) {
		out = append(out, OptionView{Value: value, Label: value, Selected: true})
	}
	return out
}

func enumOptions(values []string, value string) []OptionView {
	out := make([]OptionView, 0, len(values))
	for _, v := range values {
		out = append(out, OptionView{Value: v, Label: v, Selected: v == value})
	}
	return out
}

// DetailView is the template model of a record page.
type DetailView struct {
	Resource string
	ID       string
	EditURL  string
	ListURL  string
	Rows     []DetailRow
}

// DetailRow is one label/value pair.
type DetailRow struct {
	Label string
	Cell  grid.Cell
}

// ListView is the template model of a grid page.
type ListView struct {
	Resource string
	Grid     grid.Grid
	Failed   bool
}
