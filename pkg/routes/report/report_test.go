package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/poppy/pkg/middleware"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/schema"
)

type fakeRecords struct {
	counts map[string]models.Row
	err    error
}

func (f *fakeRecords) List(ctx context.Context, table schema.Table) ([]models.Row, error) {
	return nil, nil
}

func (f *fakeRecords) Insert(ctx context.Context, table schema.Table, body models.Row) (models.Row, error) {
	return nil, nil
}

func (f *fakeRecords) Update(ctx context.Context, table schema.Table, id string, body models.Row) (models.Row, error) {
	return nil, nil
}

func (f *fakeRecords) Delete(ctx context.Context, table schema.Table, id string) (models.Row, error) {
	return nil, nil
}

func (f *fakeRecords) Count(ctx context.Context, table schema.Table) (models.Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.counts[table.Name], nil
}

type fakeReports struct {
	rows []models.Row
	err  error
}

func (f *fakeReports) DonorDetails(ctx context.Context) ([]models.Row, error) {
	return f.rows, f.err
}

func (f *fakeReports) BloodInventoryStatus(ctx context.Context) ([]models.Row, error) {
	return f.rows, f.err
}

func (f *fakeReports) EmergencyRequestStatus(ctx context.Context) ([]models.Row, error) {
	return f.rows, f.err
}

func newTestServer(records *fakeRecords, reports *fakeReports) *echo.Echo {
	logger := zapadapter.NewZapEctoLogger(zap.NewNop(), nil)
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(logger)
	NewHandler(records, reports, logger).RegisterRoutes(e)
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCounts(t *testing.T) {
	records := &fakeRecords{counts: map[string]models.Row{
		"donors":     {"count": float64(12)},
		"donations":  {"count": float64(34)},
		"bloodbanks": {"count": float64(5)},
	}}
	e := newTestServer(records, &fakeReports{})

	cases := map[string]float64{
		"/count-donors":     12,
		"/count-donations":  34,
		"/count-bloodbanks": 5,
	}

	for path, want := range cases {
		rec := get(e, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)

		body := map[string]any{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, want, body["count"], path)
	}
}

func TestCounts_DatabaseFailure(t *testing.T) {
	records := &fakeRecords{err: errors.New(`relation "donors" does not exist`)}
	e := newTestServer(records, &fakeReports{})

	rec := get(e, "/count-donors")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["Error"], "does not exist")
}

func TestAggregations(t *testing.T) {
	reports := &fakeReports{rows: []models.Row{
		{"donor_name": "Jane", "total_donations": float64(3)},
	}}
	e := newTestServer(&fakeRecords{}, reports)

	for _, path := range []string{"/donor-details", "/blood-inventory-status", "/emergency-request-status"} {
		rec := get(e, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)

		var rows []models.Row
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 1, path)
		assert.Equal(t, "Jane", rows[0]["donor_name"], path)
	}
}

func TestAggregations_DatabaseFailure(t *testing.T) {
	reports := &fakeReports{err: errors.New("canceling statement due to statement timeout")}
	e := newTestServer(&fakeRecords{}, reports)

	rec := get(e, "/donor-details")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["Error"], "statement timeout")
}
