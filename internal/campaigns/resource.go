// Package campaigns defines the campaign editor.
package campaigns

import (
	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/crud"
	"github.com/podkrepi-bg/admin/internal/forms"
	"github.com/podkrepi-bg/admin/internal/grid"
	"github.com/podkrepi-bg/admin/internal/references"
)

// Name is the route segment and translation prefix.
const Name = "campaigns"

// Campaign lifecycle states as the API names them.
const (
	StateDraft                   = "draft"
	StatePendingValidation       = "pending-validation"
	StateApproved                = "approved"
	StateRejected                = "rejected"
	StateActive                  = "active"
	StateActivePendingValidation = "active-pending-validation"
	StateSuspended               = "suspended"
	StateComplete                = "complete"
	StateDisabled                = "disabled"
	StateError                   = "error"
	StateDeleted                 = "deleted"
)

// States lists every campaign state in display order.
var States = []string{
	StateDraft, StatePendingValidation, StateApproved, StateRejected, StateActive,
	StateActivePendingValidation, StateSuspended, StateComplete, StateDisabled, StateError, StateDeleted,
}

// Currencies accepted for target amounts.
var Currencies = []string{"BGN", "EUR", "USD"}

// Schema returns the campaign form schema.
func Schema() *forms.Schema {
	return forms.NewSchema(Name,
		forms.Text("title").Required().Trim().Max(200),
		forms.Text("slug").Trim().Max(250),
		forms.TextArea("description").Required().Max(2000),
		forms.TextArea("essence").Max(500),
		forms.Ref("campaignTypeId", references.KindCampaignTypes).Required().UUID().From("campaignType.id"),
		forms.Ref("beneficiaryId", references.KindBeneficiaries).Required().UUID().From("beneficiary.id"),
		forms.Ref("coordinatorId", references.KindCoordinators).Required().UUID().From("coordinator.id"),
		forms.Number("targetAmount").Required().Positive(),
		forms.Enum("currency", Currencies...).Required().Default("BGN"),
		forms.Date("startDate").NotPast(),
		forms.Date("endDate").NotPast().After("startDate"),
		forms.Enum("state", States...).RequiredOn(forms.ModeEdit),
	)
}

// Columns are shown in the campaign grid.
func Columns() []grid.Column {
	return []grid.Column{
		grid.Col("campaigns.fields.title", "title"),
		grid.Col("campaigns.fields.state", "state").As(grid.FormatEnum),
		grid.Col("campaigns.fields.targetAmount", "targetAmount").As(grid.FormatAmount),
		grid.Col("campaigns.fields.currency", "currency"),
		grid.Col("campaigns.fields.startDate", "startDate").As(grid.FormatDate),
		grid.Col("campaigns.fields.endDate", "endDate").As(grid.FormatDate),
	}
}

// Detail lists the fields of the detail page.
func Detail() []grid.Column {
	return []grid.Column{
		grid.Col("campaigns.fields.title", "title"),
		grid.Col("campaigns.fields.slug", "slug"),
		grid.Col("campaigns.fields.description", "description"),
		grid.Col("campaigns.fields.essence", "essence"),
		grid.Col("campaigns.fields.campaignTypeId", "campaignType.name", "campaignTypeId"),
		grid.Col("campaigns.fields.beneficiaryId", "beneficiary.person.firstName", "beneficiary.person.lastName").Joined(),
		grid.Col("campaigns.fields.coordinatorId", "coordinator.person.firstName", "coordinator.person.lastName").Joined(),
		grid.Col("campaigns.fields.targetAmount", "targetAmount").As(grid.FormatAmount),
		grid.Col("campaigns.fields.currency", "currency"),
		grid.Col("campaigns.fields.startDate", "startDate").As(grid.FormatDate),
		grid.Col("campaigns.fields.endDate", "endDate").As(grid.FormatDate),
		grid.Col("campaigns.fields.state", "state").As(grid.FormatEnum),
	}
}

// Resource binds the campaign editor to the API.
func Resource() crud.Resource {
	return crud.Resource{
		Name:     Name,
		Endpoint: api.Campaigns,
		Schema:   Schema(),
		Columns:  Columns(),
		Detail:   Detail(),
	}
}
