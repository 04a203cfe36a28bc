// Package beneficiaries defines the beneficiary editor. A beneficiary is
// either a person or a company, and its city must belong to its country.
package beneficiaries

import (
	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/crud"
	"github.com/podkrepi-bg/admin/internal/forms"
	"github.com/podkrepi-bg/admin/internal/grid"
	"github.com/podkrepi-bg/admin/internal/references"
)

// Name is the route segment and translation prefix.
const Name = "beneficiaries"

// Legal entity types.
const (
	TypeIndividual = "individual"
	TypeCompany    = "company"
)

// Relations describe how the coordinator knows the beneficiary.
var Relations = []string{"none", "myself", "myorg", "parent", "spouse", "child", "sibling", "friend", "other"}

// Schema returns the beneficiary form schema. A person is required for
// individuals and a company for legal entities.
func Schema() *forms.Schema {
	return forms.NewSchema(Name,
		forms.Enum("type", TypeIndividual, TypeCompany).Required().Default(TypeIndividual),
		forms.Ref("personId", references.KindPeople).UUID().RequiredWhen("type", TypeIndividual).From("person.id"),
		forms.Ref("companyId", references.KindCompanies).UUID().RequiredWhen("type", TypeCompany).From("company.id"),
		forms.Ref("coordinatorId", references.KindCoordinators).Required().UUID().From("coordinator.id"),
		forms.Enum("coordinatorRelation", Relations...).Required(),
		forms.Ref("countryCode", references.KindCountries).Required().From("country.countryCode"),
		forms.Ref("cityId", references.KindCities).Required().UUID().DependsOn("countryCode").From("city.id"),
		forms.Email("email").Max(100),
		forms.TextArea("description").Trim().Max(2000),
	)
}

// Columns are shown in the beneficiary grid.
func Columns() []grid.Column {
	return []grid.Column{
		grid.Col("beneficiaries.fields.type", "type").As(grid.FormatEnum),
		grid.Col("beneficiaries.columns.name", "person.firstName", "person.lastName").Joined(),
		grid.Col("beneficiaries.fields.companyId", "company.companyName"),
		grid.Col("beneficiaries.fields.countryCode", "countryCode"),
		grid.Col("beneficiaries.fields.cityId", "city.name", "cityId"),
		grid.Col("beneficiaries.fields.email", "email"),
	}
}

// Detail lists the fields of the detail page.
func Detail() []grid.Column {
	return append(Columns(),
		grid.Col("beneficiaries.fields.coordinatorId", "coordinator.person.firstName", "coordinator.person.lastName").Joined(),
		grid.Col("beneficiaries.fields.coordinatorRelation", "coordinatorRelation").As(grid.FormatEnum),
		grid.Col("beneficiaries.fields.description", "description"),
	)
}

// Resource binds the beneficiary editor to the API.
func Resource() crud.Resource {
	return crud.Resource{
		Name:     Name,
		Endpoint: api.Beneficiaries,
		Schema:   Schema(),
		Columns:  Columns(),
		Detail:   Detail(),
	}
}
