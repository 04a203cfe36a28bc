package transfers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkrepi-bg/admin/internal/api"
	"github.com/podkrepi-bg/admin/internal/forms"
)

func schema() *forms.Schema {
	return Schema().WithClock(func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) })
}

func validValues(s *forms.Schema) forms.Values {
	v := s.Defaults()
	v["currency"] = "EUR"
	v["amount"] = "250"
	v["reason"] = "vault rebalance"
	v["sourceCampaignId"] = uuid.NewString()
	v["sourceVaultId"] = uuid.NewString()
	v["targetCampaignId"] = uuid.NewString()
	v["targetVaultId"] = uuid.NewString()
	return v
}

func TestCreateDefaultsToInitialStatus(t *testing.T) {
	s := schema()
	assert.Equal(t, StatusInitial, s.Defaults()["status"])
	assert.Empty(t, s.Validate(forms.ModeCreate, validValues(s)))
}

func TestStatusRequiredOnEdit(t *testing.T) {
	s := schema()
	v := validValues(s)
	v["status"] = ""
	assert.NotContains(t, s.Validate(forms.ModeCreate, v), "status")
	assert.Contains(t, s.Validate(forms.ModeEdit, v), "status")
}

func TestRejectsMalformedReferences(t *testing.T) {
	s := schema()
	v := validValues(s)
	v["approvedById"] = "someone"
	v["documentId"] = "doc-1"
	errs := s.Validate(forms.ModeCreate, v)
	require.Contains(t, errs, "approvedById")
	require.Contains(t, errs, "documentId")
	assert.Equal(t, "validation.uuid", errs["documentId"].Key)
}

func TestVaultsDependOnCampaigns(t *testing.T) {
	s := schema()
	source, _ := s.Field("sourceVaultId")
	target, _ := s.Field("targetVaultId")
	assert.Equal(t, "sourceCampaignId", source.Parent())
	assert.Equal(t, "targetCampaignId", target.Parent())
	assert.ElementsMatch(t, []string{"people", "campaigns", "vaults"}, s.References())
}

func TestRecordPathsFillFlatFields(t *testing.T) {
	s := schema()
	values := s.FromRecord(api.Record{
		"status":         "approved",
		"sourceCampaign": map[string]any{"id": "c1"},
		"targetVault":    map[string]any{"id": "v9"},
		"targetVaultId":  "v2",
	})
	assert.Equal(t, "c1", values["sourceCampaignId"])
	assert.Equal(t, "v2", values["targetVaultId"], "flat key wins over nested path")
	assert.ElementsMatch(t, s.Names(), values.Keys())
}

func TestResourceColumnsMatchDetail(t *testing.T) {
	res := Resource()
	assert.Equal(t, Name, res.Name)
	assert.Equal(t, api.Transfers, res.Endpoint)
	for _, c := range res.Columns {
		assert.NotEmpty(t, c.Paths, c.Label)
	}
	assert.False(t, res.RowClick)
}
