package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podkrepi-bg/admin/internal/forms"
)

func TestBirthdayCannotBeInTheFuture(t *testing.T) {
	s := Schema().WithClock(func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) })

	msg, ok := s.ValidateField(forms.ModeEdit, forms.Values{"birthday": "2024-05-11"}, "birthday")
	assert.False(t, ok)
	assert.Equal(t, "validation.notfuture", msg.Key)

	_, ok = s.ValidateField(forms.ModeEdit, forms.Values{"birthday": "2024-05-10"}, "birthday")
	assert.True(t, ok)
	_, ok = s.ValidateField(forms.ModeEdit, forms.Values{"birthday": ""}, "birthday")
	assert.True(t, ok, "birthday is optional")
}

func TestNameFieldsAreRequiredLetters(t *testing.T) {
	errs := Schema().Validate(forms.ModeEdit, forms.Values{"firstName": "", "lastName": "R2D2", "birthday": ""})
	require.Contains(t, errs, "firstName")
	assert.Equal(t, "validation.required", errs["firstName"].Key)
	require.Contains(t, errs, "lastName")
	assert.Equal(t, "validation.personname", errs["lastName"].Key)
	assert.NotContains(t, errs, "birthday")
}

func TestSectionsCoverTheSchema(t *testing.T) {
	var all []string
	for _, key := range sectionOrder {
		fields, ok := Fields(key)
		require.True(t, ok)
		all = append(all, fields...)
	}
	assert.ElementsMatch(t, Schema().Names(), all)
	_, ok := Fields("email")
	assert.False(t, ok)
}
