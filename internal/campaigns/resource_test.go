package campaigns

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkrepi-bg/admin/internal/forms"
)

func schema() *forms.Schema {
	return Schema().WithClock(func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) })
}

func validValues(s *forms.Schema) forms.Values {
	v := s.Defaults()
	v["title"] = "Help for Ivan"
	v["description"] = "Surgery costs"
	v["campaignTypeId"] = uuid.NewString()
	v["beneficiaryId"] = uuid.NewString()
	v["coordinatorId"] = uuid.NewString()
	v["targetAmount"] = "15000"
	return v
}

func TestCampaignValid(t *testing.T) {
	s := schema()
	assert.Equal(t, "BGN", s.Defaults()["currency"])
	assert.Empty(t, s.Validate(forms.ModeCreate, validValues(s)))
}

func TestCampaignTitleLength(t *testing.T) {
	s := schema()
	v := validValues(s)
	v["title"] = strings.Repeat("x", 201)
	errs := s.Validate(forms.ModeCreate, v)
	require.Contains(t, errs, "title")
	assert.Equal(t, forms.Message{Key: "validation.max", Param: "200"}, errs["title"])
}

func TestCampaignEndDateAfterStart(t *testing.T) {
	s := schema()
	v := validValues(s)
	v["startDate"] = "2026-06-01"
	v["endDate"] = "2026-05-01"
	errs := s.Validate(forms.ModeCreate, v)
	require.Contains(t, errs, "endDate")
	assert.Equal(t, "validation.after", errs["endDate"].Key)
	assert.Equal(t, "campaigns.fields.startDate", errs["endDate"].Param)

	v["endDate"] = "2026-06-01"
	assert.Empty(t, s.Validate(forms.ModeCreate, v))
}

func TestCampaignDatesNotInPast(t *testing.T) {
	s := schema()
	v := validValues(s)
	v["startDate"] = "2026-03-09"
	assert.Equal(t, "validation.notpast", s.Validate(forms.ModeCreate, v)["startDate"].Key)
}

func TestCampaignStateOnEdit(t *testing.T) {
	s := schema()
	v := validValues(s)
	assert.Contains(t, s.Validate(forms.ModeEdit, v), "state")
	v["state"] = StateActive
	assert.Empty(t, s.Validate(forms.ModeEdit, v))
	v["state"] = "running"
	assert.Equal(t, "validation.oneof", s.Validate(forms.ModeEdit, v)["state"].Key)
}
