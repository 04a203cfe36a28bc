// Package references loads the option lists of relationship selects from the API.
package references

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/forms"
)

// Reference kinds understood by the Fetcher.
const (
	KindCampaigns     = "campaigns"
	KindVaults        = "vaults"
	KindPeople        = "people"
	KindBeneficiaries = "beneficiaries"
	KindCoordinators  = "coordinators"
	KindCampaignTypes = "campaign-types"
	KindCompanies     = "companies"
	KindCountries     = "countries"
	KindCities        = "cities"
)

// Lister is the part of the API client the fetcher needs.
type Lister interface {
	List(ctx context.Context, e api.Endpoint) api.Result
}

type source struct {
	endpoint api.Endpoint
	option   func(api.Record) forms.Option
}

var sources = map[string]source{
	KindCampaigns: {api.Campaigns, func(r api.Record) forms.Option {
		return forms.Option{ID: r.ID(), Label: r.String("title")}
	}},
	KindVaults: {api.Vaults, func(r api.Record) forms.Option {
		return forms.Option{ID: r.ID(), Label: r.String("name"), Parent: first(r, "campaignId", "campaign.id")}
	}},
	KindPeople: {api.People, func(r api.Record) forms.Option {
		return forms.Option{ID: r.ID(), Label: personName(r, "")}
	}},
	KindBeneficiaries: {api.Beneficiaries, func(r api.Record) forms.Option {
		label := personName(r, "person.")
		if label == "" {
			label = first(r, "company.companyName", "company.name")
		}
		return forms.Option{ID: r.ID(), Label: label}
	}},
	KindCoordinators: {api.Coordinators, func(r api.Record) forms.Option {
		return forms.Option{ID: r.ID(), Label: personName(r, "person.")}
	}},
	KindCampaignTypes: {api.CampaignTypes, func(r api.Record) forms.Option {
		return forms.Option{ID: r.ID(), Label: r.String("name")}
	}},
	KindCompanies: {api.Companies, func(r api.Record) forms.Option {
		return forms.Option{ID: r.ID(), Label: first(r, "companyName", "name")}
	}},
	KindCountries: {api.Countries, func(r api.Record) forms.Option {
		return forms.Option{ID: r.String("countryCode"), Label: r.String("name")}
	}},
}

// Fetcher implements forms.Fetcher over the API.
type Fetcher struct {
	api Lister
}

// NewFetcher constructs a Fetcher.
func NewFetcher(client Lister) *Fetcher {
	return &Fetcher{api: client}
}

// Kinds lists every kind the fetcher can load.
func Kinds() []string {
	kinds := make([]string, 0, len(sources)+1)
	for k := range sources {
		kinds = append(kinds, k)
	}
	kinds = append(kinds, KindCities)
	sort.Strings(kinds)
	return kinds
}

// FetchOptions loads the options of kind in API order.
func (f *Fetcher) FetchOptions(ctx context.Context, kind string) ([]forms.Option, error) {
	if kind == KindCities {
		return f.cities(ctx)
	}
	src, ok := sources[kind]
	if !ok {
		return nil, fmt.Errorf("references: unknown kind %q", kind)
	}
	records, err := f.list(ctx, src.endpoint)
	if err != nil {
		return nil, err
	}
	options := make([]forms.Option, 0, len(records))
	for _, r := range records {
		if o := src.option(r); o.ID != "" {
			options = append(options, o)
		}
	}
	return options, nil
}

// cities are keyed to their country by id while beneficiaries store the
// country code, so the parent is translated through the country list.
func (f *Fetcher) cities(ctx context.Context) ([]forms.Option, error) {
	var cities, countries []api.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cities, err = f.list(gctx, api.Cities)
		return err
	})
	g.Go(func() error {
		var err error
		countries, err = f.list(gctx, api.Countries)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	codes := make(map[string]string, len(countries))
	for _, c := range countries {
		codes[c.ID()] = c.String("countryCode")
	}
	options := make([]forms.Option, 0, len(cities))
	for _, c := range cities {
		parent := first(c, "countryCode", "country.countryCode")
		if parent == "" {
			parent = codes[first(c, "countryId", "country.id")]
		}
		options = append(options, forms.Option{ID: c.ID(), Label: c.String("name"), Parent: parent})
	}
	return options, nil
}

func (f *Fetcher) list(ctx context.Context, e api.Endpoint) ([]api.Record, error) {
	res := f.api.List(ctx, e)
	if !res.OK() {
		if res.Err != nil {
			return nil, fmt.Errorf("references: list %s: %w", e.Name, res.Err)
		}
		return nil, fmt.Errorf("references: list %s: %s (status %d)", e.Name, res.Kind, res.Status)
	}
	return res.Records, nil
}

func first(r api.Record, paths ...string) string {
	for _, p := range paths {
		if v := r.String(p); v != "" {
			return v
		}
	}
	return ""
}

func personName(r api.Record, prefix string) string {
	return strings.TrimSpace(r.String(prefix+"firstName") + " " + r.String(prefix+"lastName"))
}
