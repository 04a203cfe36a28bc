package api

import (
	"net/http"
	"net/url"
	"strings"
)

// Endpoint describes the REST routes of one API resource. Paths may contain {id}.
type Endpoint struct {
	Name       string
	ListPath   string
	ViewPath   string
	CreatePath string
	EditPath   string
	EditMethod string
	DeletePath string
}

func (e Endpoint) expand(tpl, id string) string {
	return strings.ReplaceAll(tpl, "{id}", url.PathEscape(id))
}

func rest(name, base string) Endpoint {
	return Endpoint{
		Name:       name,
		ListPath:   base + "/list",
		ViewPath:   base + "/{id}",
		CreatePath: base,
		EditPath:   base + "/{id}",
		EditMethod: http.MethodPatch,
		DeletePath: base + "/{id}",
	}
}

// Podkrepi API resources used by the admin.
var (
	Campaigns = Endpoint{
		Name:       "campaign",
		ListPath:   "/campaign/list",
		ViewPath:   "/campaign/byId/{id}",
		CreatePath: "/campaign/create-campaign",
		EditPath:   "/campaign/{id}",
		EditMethod: http.MethodPatch,
		DeletePath: "/campaign/{id}",
	}
	// Account is the person record of the signed-in operator. Its paths take no id.
	Account = Endpoint{
		Name:     "account",
		ViewPath: "/account/me",
		EditPath: "/account/me",
	}
	Transfers       = rest("transfer", "/transfer")
	Expenses        = rest("expenses", "/expenses")
	Beneficiaries   = rest("beneficiary", "/beneficiary")
	BootcampInterns = rest("bootcamp-intern", "/bootcamp-intern")

	Vaults        = rest("vault", "/vault")
	People        = rest("person", "/person")
	Coordinators  = rest("coordinator", "/coordinator")
	CampaignTypes = rest("campaign-types", "/campaign-types")
	Companies     = rest("company", "/company")
	Countries     = rest("country", "/country")
	Cities        = rest("city", "/city")
)
