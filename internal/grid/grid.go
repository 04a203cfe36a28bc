// Package grid turns API records into paged, searchable table rows.
package grid

import (
	"strings"

	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/shared"
)

// Format selects how a cell is rendered.
type Format string

const (
	FormatText   Format = "text"
	FormatAmount Format = "amount"
	FormatDate   Format = "date"
	FormatBool   Format = "bool"
	FormatEnum   Format = "enum"
)

// Column describes one grid column. Paths are tried in order and the first
// non-empty value wins; several paths joined by a space form one cell when
// Join is set (e.g. first and last name).
type Column struct {
	Label  string
	Paths  []string
	Join   bool
	Format Format
}

// Col declares a text column reading path.
func Col(label string, paths ...string) Column {
	return Column{Label: label, Paths: paths, Format: FormatText}
}

// As sets the column format.
func (c Column) As(f Format) Column { c.Format = f; return c }

// Joined renders every path separated by a space.
func (c Column) Joined() Column { c.Join = true; return c }

func (c Column) value(r api.Record) string {
	if c.Join {
		parts := make([]string, 0, len(c.Paths))
		for _, p := range c.Paths {
			if v := r.String(p); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, " ")
	}
	for _, p := range c.Paths {
		if v := r.String(p); v != "" {
			return v
		}
	}
	return ""
}

// Cell is a rendered value.
type Cell struct {
	Value  string
	Format Format
}

// Row is one record with its actions.
type Row struct {
	ID        string
	Cells     []Cell
	DetailURL string
	EditURL   string
	DeleteURL string
	Pending   bool
}

// Options controls row actions, search and paging.
type Options struct {
	Base     string
	RowClick bool
	Filters  shared.ListFilters
	Pending  func(id string) bool
}

// Grid is the presentation model of a list page.
type Grid struct {
	Columns    []Column
	Rows       []Row
	Pagination shared.Pagination
	Search     string
	Base       string
	NewURL     string
}

// Build filters records by the search term, pages them and attaches
// edit/delete actions. Record order is preserved.
func Build(records []api.Record, columns []Column, opts Options) Grid {
	term := strings.ToLower(strings.TrimSpace(opts.Filters.Search))
	matched := make([]api.Record, 0, len(records))
	for _, r := range records {
		if term == "" || matches(r, columns, term) {
			matched = append(matched, r)
		}
	}

	p := shared.NewPagination(opts.Filters.Page, opts.Filters.PerPage, len(matched))
	start, end := p.Bounds()

	g := Grid{
		Columns:    columns,
		Pagination: p,
		Search:     opts.Filters.Search,
		Base:       opts.Base,
		NewURL:     opts.Base + "/new",
		Rows:       make([]Row, 0, end-start),
	}
	for _, r := range matched[start:end] {
		id := r.ID()
		row := Row{
			ID:        id,
			Cells:     make([]Cell, len(columns)),
			EditURL:   opts.Base + "/" + id + "/edit",
			DeleteURL: opts.Base + "/" + id + "/delete",
		}
		if opts.RowClick {
			row.DetailURL = opts.Base + "/" + id
		}
		if opts.Pending != nil {
			row.Pending = opts.Pending(id)
		}
		for i, c := range columns {
			row.Cells[i] = Cell{Value: c.value(r), Format: c.Format}
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func matches(r api.Record, columns []Column, term string) bool {
	for _, c := range columns {
		if strings.Contains(strings.ToLower(c.value(r)), term) {
			return true
		}
	}
	return false
}
