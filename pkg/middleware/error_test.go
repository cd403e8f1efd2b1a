package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serve(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()

	logger := zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
	e := echo.New()
	e.HTTPErrorHandler = Error(logger)
	e.GET("/boom", func(c echo.Context) error {
		return err
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestError_StatusCarryingErrorsKeepTheirShape(t *testing.T) {
	t.Run("ecto http error", func(t *testing.T) {
		rec := serve(t, httperror.NewHTTPError(http.StatusNotFound, "Record not found"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Record not found", envelope(t, rec).Error)
	})

	t.Run("echo http error", func(t *testing.T) {
		rec := serve(t, echo.NewHTTPError(http.StatusMethodNotAllowed))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "Method Not Allowed", envelope(t, rec).Error)
	})
}

func TestError_UnknownErrorsCollapseToTheGenericTail(t *testing.T) {
	rec := serve(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, GenericErrorMessage, envelope(t, rec).Error)
}

func TestError_EnvelopeKeyIsCapitalized(t *testing.T) {
	rec := serve(t, httperror.NewHTTPError(http.StatusBadRequest, "No data to update"))

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "Error")
	assert.NotContains(t, body, "error")
}
