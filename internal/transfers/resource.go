// Package transfers defines the transfer editor: money moved between
// campaign vaults.
package transfers

import (
	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/crud"
	"github.com/podkrepi-bg/admin/internal/forms"
	"github.com/podkrepi-bg/admin/internal/grid"
	"github.com/podkrepi-bg/admin/internal/references"
)

// Name is the route segment and translation prefix.
const Name = "transfers"

// Transfer statuses.
const (
	StatusInitial    = "initial"
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusReconciled = "reconciled"
	StatusDeclined   = "declined"
	StatusCanceled   = "canceled"
)

// Statuses lists every transfer status in display order.
var Statuses = []string{StatusInitial, StatusPending, StatusApproved, StatusReconciled, StatusDeclined, StatusCanceled}

// Currencies accepted for transfer amounts.
var Currencies = []string{"BGN", "EUR", "USD"}

// Schema returns the transfer form schema. Each vault select only offers the
// vaults of the campaign chosen beside it.
func Schema() *forms.Schema {
	return forms.NewSchema(Name,
		forms.Enum("status", Statuses...).RequiredOn(forms.ModeEdit).Default(StatusInitial),
		forms.Enum("currency", Currencies...).Required(),
		forms.Number("amount").Required().Positive(),
		forms.Text("reason").Required().Trim().Min(1).Max(300),
		forms.Text("documentId").Trim().UUID(),
		forms.Date("targetDate").NotPast(),
		forms.Ref("approvedById", references.KindPeople).UUID().From("approvedBy.id"),
		forms.Ref("sourceCampaignId", references.KindCampaigns).Required().UUID().From("sourceCampaign.id"),
		forms.Ref("sourceVaultId", references.KindVaults).Required().UUID().DependsOn("sourceCampaignId").From("sourceVault.id"),
		forms.Ref("targetCampaignId", references.KindCampaigns).Required().UUID().From("targetCampaign.id"),
		forms.Ref("targetVaultId", references.KindVaults).Required().UUID().DependsOn("targetCampaignId").From("targetVault.id"),
	)
}

// Columns are shown in the transfer grid.
func Columns() []grid.Column {
	return []grid.Column{
		grid.Col("transfers.fields.status", "status").As(grid.FormatEnum),
		grid.Col("transfers.fields.amount", "amount").As(grid.FormatAmount),
		grid.Col("transfers.fields.currency", "currency"),
		grid.Col("transfers.fields.reason", "reason"),
		grid.Col("transfers.fields.sourceCampaignId", "sourceCampaign.title", "sourceCampaignId"),
		grid.Col("transfers.fields.targetCampaignId", "targetCampaign.title", "targetCampaignId"),
		grid.Col("transfers.fields.targetDate", "targetDate").As(grid.FormatDate),
	}
}

// Detail lists the fields of the detail page.
func Detail() []grid.Column {
	return []grid.Column{
		grid.Col("transfers.fields.status", "status").As(grid.FormatEnum),
		grid.Col("transfers.fields.amount", "amount").As(grid.FormatAmount),
		grid.Col("transfers.fields.currency", "currency"),
		grid.Col("transfers.fields.reason", "reason"),
		grid.Col("transfers.fields.documentId", "documentId"),
		grid.Col("transfers.fields.targetDate", "targetDate").As(grid.FormatDate),
		grid.Col("transfers.fields.approvedById", "approvedBy.firstName", "approvedBy.lastName").Joined(),
		grid.Col("transfers.fields.sourceCampaignId", "sourceCampaign.title", "sourceCampaignId"),
		grid.Col("transfers.fields.sourceVaultId", "sourceVault.name", "sourceVaultId"),
		grid.Col("transfers.fields.targetCampaignId", "targetCampaign.title", "targetCampaignId"),
		grid.Col("transfers.fields.targetVaultId", "targetVault.name", "targetVaultId"),
	}
}

// Resource binds the transfer editor to the API.
func Resource() crud.Resource {
	return crud.Resource{
		Name:     Name,
		Endpoint: api.Transfers,
		Schema:   Schema(),
		Columns:  Columns(),
		Detail:   Detail(),
	}
}
