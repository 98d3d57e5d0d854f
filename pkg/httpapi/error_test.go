package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/catalog-api/pkg/serrors"
)

func TestWriteError_Envelope(t *testing.T) {
	rr := httptest.NewRecorder()
	require.NoError(t, WriteError(rr, http.StatusBadRequest, "VALIDATION_ERROR", "validation_error", "bad", map[string]string{"request_id": "r1"}))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "VALIDATION_ERROR", env.Code)
	require.Equal(t, "validation_error", env.Kind)
	require.Equal(t, "bad", env.Message)
	require.Equal(t, "r1", env.Meta["request_id"])
}

func TestNotFoundHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NotFound().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Body.String(), `"/nope"`)
}

func TestWriteServiceError_UsesKindAndStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteServiceError(rr, "r2", serrors.NotFound("CATALOG_SERVICE_NOT_FOUND", "service not found"))

	require.Equal(t, http.StatusNotFound, rr.Code)
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "not_found", env.Kind)
	require.Equal(t, "CATALOG_SERVICE_NOT_FOUND", env.Code)
	require.Equal(t, "r2", env.Meta["request_id"])
}

func TestWriteServiceError_PlainErrorIs500(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteServiceError(rr, "", errors.New("db down"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "db down")
}
