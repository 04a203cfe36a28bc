// Package expenses defines the expense editor.
package expenses

import (
	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/crud"
	"github.com/podkrepi-bg/admin/internal/forms"
	"github.com/podkrepi-bg/admin/internal/grid"
	"github.com/podkrepi-bg/admin/internal/references"
)

// Name is the route segment and translation prefix.
const Name = "expenses"

// Types are the expense categories the API accepts.
var Types = []string{
	"none", "internal", "operating", "administrative", "medical", "services", "groceries",
	"transport", "accommodation", "shipping", "utility", "rental", "legal", "bank",
	"advertising", "other",
}

// Statuses of an expense.
var Statuses = []string{"pending", "approved", "canceled"}

// Currencies accepted for expense amounts.
var Currencies = []string{"BGN", "EUR", "USD"}

// Schema returns the expense form schema.
func Schema() *forms.Schema {
	return forms.NewSchema(Name,
		forms.Enum("type", Types...).Required(),
		forms.Enum("status", Statuses...).Required().Default("pending"),
		forms.Enum("currency", Currencies...).Required(),
		forms.Number("amount").Required().Positive(),
		forms.Ref("vaultId", references.KindVaults).Required().UUID().From("vault.id"),
		forms.Bool("deleted"),
		forms.TextArea("description").Trim().Max(200),
		forms.Text("documentId").Trim().UUID().From("document.id"),
		forms.Ref("approvedById", references.KindPeople).UUID().From("approvedBy.id"),
	)
}

// Columns are shown in the expense grid.
func Columns() []grid.Column {
	return []grid.Column{
		grid.Col("expenses.fields.type", "type").As(grid.FormatEnum),
		grid.Col("expenses.fields.status", "status").As(grid.FormatEnum),
		grid.Col("expenses.fields.amount", "amount").As(grid.FormatAmount),
		grid.Col("expenses.fields.currency", "currency"),
		grid.Col("expenses.fields.vaultId", "vault.name", "vaultId"),
		grid.Col("expenses.fields.deleted", "deleted").As(grid.FormatBool),
	}
}

// Detail lists the fields of the detail page.
func Detail() []grid.Column {
	return append(Columns(),
		grid.Col("expenses.fields.description", "description"),
		grid.Col("expenses.fields.documentId", "documentId"),
		grid.Col("expenses.fields.approvedById", "approvedBy.firstName", "approvedBy.lastName").Joined(),
	)
}

// Resource binds the expense editor to the API.
func Resource() crud.Resource {
	return crud.Resource{
		Name:     Name,
		Endpoint: api.Expenses,
		Schema:   Schema(),
		Columns:  Columns(),
		Detail:   Detail(),
	}
}
