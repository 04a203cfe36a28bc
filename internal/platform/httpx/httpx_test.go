package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := map[error]int{
		ErrNotFound:                            http.StatusNotFound,
		fmt.Errorf("load: %w", ErrFormExpired): http.StatusGone,
		ErrUnauthorized:                        http.StatusUnauthorized,
		errors.New("boom"):                     http.StatusInternalServerError,
	}
	for err, status := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, err)
		assert.Equal(t, status, rec.Code, err.Error())
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, status, body.Status)
		assert.Equal(t, "about:blank", body.Type)
	}
}

func TestInternalErrorsAreNotEchoed(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("redis: connection refused"))
	assert.NotContains(t, rec.Body.String(), "redis")
}

func TestJSONDisablesCaching(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]bool{"valid": true})
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())
}
