package bootcamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkrepi-bg/admin/internal/forms"
)

func TestEmailRequiredOnlyOnCreate(t *testing.T) {
	s := Schema()
	v := forms.Values{"firstName": "Maria", "lastName": "Ivanova-Petrova", "email": ""}
	assert.Contains(t, s.Validate(forms.ModeCreate, v), "email")
	assert.Empty(t, s.Validate(forms.ModeEdit, v))
}

func TestNamesAreLettersOnly(t *testing.T) {
	s := Schema()
	v := forms.Values{"firstName": "R2D2", "lastName": "Петров", "email": "r2@example.com"}
	errs := s.Validate(forms.ModeCreate, v)
	require.Contains(t, errs, "firstName")
	assert.Equal(t, "validation.personname", errs["firstName"].Key)
	assert.NotContains(t, errs, "lastName")
}

func TestRowClickOpensDetail(t *testing.T) {
	res := Resource()
	assert.True(t, res.RowClick)
	assert.Len(t, res.Detail, 3)
}
