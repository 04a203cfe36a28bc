// Package bootcamp defines the bootcamp intern editor.
package bootcamp

import (
	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/crud"
	"github.com/podkrepi-bg/admin/internal/forms"
	"github.com/podkrepi-bg/admin/internal/grid"
)

// Name is the route segment and translation prefix.
const Name = "bootcamp"

// Schema returns the intern form schema. The e-mail is only mandatory when an
// intern is created.
func Schema() *forms.Schema {
	return forms.NewSchema(Name,
		forms.Text("firstName").Required().Trim().Min(1).Max(50).PersonName(),
		forms.Text("lastName").Required().Trim().Min(1).Max(50).PersonName(),
		forms.Email("email").RequiredOn(forms.ModeCreate).Max(100),
	)
}

// Columns are shown in the intern grid.
func Columns() []grid.Column {
	return []grid.Column{
		grid.Col("bootcamp.fields.firstName", "firstName"),
		grid.Col("bootcamp.fields.lastName", "lastName"),
	}
}

// Detail lists the fields of the detail page.
func Detail() []grid.Column {
	return append(Columns(), grid.Col("bootcamp.fields.email", "email"))
}

// Resource binds the intern editor. Clicking a row opens the detail page.
func Resource() crud.Resource {
	return crud.Resource{
		Name:     Name,
		Endpoint: api.BootcampInterns,
		Schema:   Schema(),
		Columns:  Columns(),
		Detail:   Detail(),
		RowClick: true,
	}
}
