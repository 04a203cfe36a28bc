package forms

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkrepi-bg/admin/internal/api"
)

func TestMountFromDefaults(t *testing.T) {
	s := transferSchema()
	st := Mount(s, ModeCreate, "", nil)

	require.NotEmpty(t, st.ID)
	assert.Equal(t, "transfers", st.Resource)
	assert.ElementsMatch(t, s.Names(), st.Values.Keys())
	assert.Equal(t, "false", st.Get("reconciled"))
	for _, name := range s.Names() {
		assert.Equal(t, StatusPristine, st.Status(name), name)
		assert.False(t, st.Dirty(name), name)
	}
}

func TestApplyKeepsAbsentFields(t *testing.T) {
	s := transferSchema()
	st := Mount(s, ModeEdit, "t1", api.Record{"approvedBy": map[string]any{"id": "p1"}, "reconciled": true})

	st.Apply(s, url.Values{"reason": {"  spaced  "}, "amount": {"10"}})

	assert.Equal(t, "p1", st.Get("approvedById"), "fields that were not posted keep their value")
	assert.Equal(t, "  spaced  ", st.Get("reason"), "trim happens at validation time")
	assert.Equal(t, "10", st.Get("amount"))
	assert.Equal(t, "false", st.Get("reconciled"), "unchecked checkboxes are not posted")
	assert.ElementsMatch(t, s.Names(), st.Values.Keys())
}

func TestApplyIgnoresUnknownFields(t *testing.T) {
	s := transferSchema()
	st := Mount(s, ModeCreate, "", nil)
	st.Apply(s, url.Values{"injected": {"x"}, "reconciled": {"on"}})

	_, ok := st.Values["injected"]
	assert.False(t, ok)
	assert.Equal(t, "true", st.Get("reconciled"))
}

func TestErrorsHiddenUntilTouchedOrSubmitted(t *testing.T) {
	s := transferSchema()
	st := Mount(s, ModeCreate, "", nil)
	st.Validate(s)

	require.Contains(t, st.Errors, "amount")
	assert.Empty(t, st.VisibleErrors())

	msg, ok := st.ValidateField(s, "amount")
	assert.False(t, ok)
	assert.Equal(t, "validation.required", msg.Key)
	assert.Equal(t, StatusInvalid, st.Status("amount"))
	assert.Len(t, st.VisibleErrors(), 1)

	st.Submitted = true
	assert.Equal(t, StatusInvalid, st.Status("reason"))
	assert.Equal(t, StatusValid, st.Status("documentId"))
}

func TestValidateFieldClearsFixedError(t *testing.T) {
	s := transferSchema()
	st := Mount(s, ModeCreate, "", nil)
	st.Set("amount", "-5")
	_, ok := st.ValidateField(s, "amount")
	require.False(t, ok)

	st.Set("amount", "5")
	_, ok = st.ValidateField(s, "amount")
	assert.True(t, ok)
	assert.NotContains(t, st.Errors, "amount")
	assert.Equal(t, StatusValid, st.Status("amount"))
}

func TestTouchedWithoutValidationIsTouched(t *testing.T) {
	s := transferSchema()
	st := Mount(s, ModeCreate, "", nil)
	st.Touch("reason")
	assert.Equal(t, StatusTouched, st.Status("reason"))
}

func TestReinitializePreservesDirtyValues(t *testing.T) {
	s := transferSchema()
	st := Mount(s, ModeEdit, "t1", api.Record{"reason": "old", "amount": "10", "currency": "BGN"})
	st.Set("reason", "typed by operator")

	st.Reinitialize(s, api.Record{"reason": "server", "amount": "20", "currency": "EUR"})

	assert.Equal(t, "typed by operator", st.Get("reason"))
	assert.Equal(t, "20", st.Get("amount"))
	assert.Equal(t, "EUR", st.Get("currency"))
	assert.False(t, st.Dirty("amount"))
	assert.True(t, st.Dirty("reason"))
}
