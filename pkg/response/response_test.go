package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/installment-ledger/pkg/errors"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{name: "validation", err: customError.WrapValidation("amount must be greater than 0"), expectedCode: http.StatusBadRequest, expectedBody: customError.ErrCodeValidation},
		{name: "loan not found", err: customError.WrapLoanNotFound("abc"), expectedCode: http.StatusNotFound, expectedBody: customError.ErrCodeLoanNotFound},
		{name: "duplicate week", err: customError.WrapDuplicateWeek("abc", 3, map[string]int{"week": 3}), expectedCode: http.StatusConflict, expectedBody: customError.ErrCodeDuplicateWeek},
		{name: "arithmetic", err: customError.WrapArithmeticInvariant("mismatch"), expectedCode: http.StatusInternalServerError, expectedBody: customError.ErrCodeArithmeticInvariant},
		{name: "database", err: customError.WrapDatabaseError(errors.New("pq: secret")), expectedCode: http.StatusInternalServerError, expectedBody: customError.ErrCodeDatabaseError},
		{name: "plain", err: errors.New("boom"), expectedCode: http.StatusInternalServerError, expectedBody: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			FromError(rec, tt.err)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			assert.NotContains(t, rec.Body.String(), "secret")
		})
	}
}

func TestFromError_ConflictDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	FromError(rec, customError.WrapDuplicateWeek("abc", 3, map[string]int{"week": 3}))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, map[string]interface{}{"week": float64(3)}, body.Details)
}

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
