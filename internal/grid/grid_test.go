package grid

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/shared"
)

func interns(n int) []api.Record {
	out := make([]api.Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, api.Record{
			"id":        fmt.Sprintf("i%02d", i),
			"firstName": fmt.Sprintf("Intern%02d", i),
			"lastName":  "Petrov",
			"amount":    json.Number("10.5"),
		})
	}
	return out
}

var internColumns = []Column{
	Col("bootcamp.fields.firstName", "firstName", "lastName").Joined(),
	Col("bootcamp.fields.amount", "amount").As(FormatAmount),
}

func TestBuildPagesRecords(t *testing.T) {
	g := Build(interns(23), internColumns, Options{Base: "/bootcamp", Filters: shared.ListFilters{Page: 3}})

	require.Len(t, g.Rows, 3)
	assert.Equal(t, 3, g.Pagination.TotalPages)
	assert.Equal(t, "i21", g.Rows[0].ID)
	assert.False(t, g.Pagination.HasNext())
	assert.True(t, g.Pagination.HasPrev())
	assert.Equal(t, "/bootcamp/new", g.NewURL)
}

func TestBuildAttachesActions(t *testing.T) {
	g := Build(interns(1), internColumns, Options{
		Base:     "/bootcamp",
		RowClick: true,
		Pending:  func(id string) bool { return id == "i01" },
	})

	require.Len(t, g.Rows, 1)
	row := g.Rows[0]
	assert.Equal(t, "/bootcamp/i01", row.DetailURL)
	assert.Equal(t, "/bootcamp/i01/edit", row.EditURL)
	assert.Equal(t, "/bootcamp/i01/delete", row.DeleteURL)
	assert.True(t, row.Pending)
	assert.Equal(t, Cell{Value: "Intern01 Petrov", Format: FormatText}, row.Cells[0])
	assert.Equal(t, Cell{Value: "10.5", Format: FormatAmount}, row.Cells[1])
}

func TestBuildWithoutRowClickHasNoDetailLink(t *testing.T) {
	g := Build(interns(1), internColumns, Options{Base: "/expenses"})
	assert.Empty(t, g.Rows[0].DetailURL)
	assert.False(t, g.Rows[0].Pending)
}

func TestBuildSearchIsCaseInsensitive(t *testing.T) {
	g := Build(interns(12), internColumns, Options{Base: "/bootcamp", Filters: shared.ListFilters{Search: "intern1"}})
	require.Len(t, g.Rows, 3)
	assert.Equal(t, []string{"i10", "i11", "i12"}, []string{g.Rows[0].ID, g.Rows[1].ID, g.Rows[2].ID})
	assert.Equal(t, 3, g.Pagination.Total)
}

func TestBuildEmpty(t *testing.T) {
	g := Build(nil, internColumns, Options{Base: "/bootcamp"})
	assert.Empty(t, g.Rows)
	assert.Equal(t, 0, g.Pagination.TotalPages)
}

func TestColumnFallsBackAcrossPaths(t *testing.T) {
	c := Col("beneficiaries.fields.name", "person.firstName", "company.companyName")
	assert.Equal(t, "Acme", c.value(api.Record{"company": map[string]any{"companyName": "Acme"}}))
}
