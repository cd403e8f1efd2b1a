// Package report exposes the count endpoints and the three fixed
// aggregation endpoints consumed by the dashboard charts.
package report

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	recordrepo "github.com/Ramsey-B/poppy/internal/repositories/record"
	reportrepo "github.com/Ramsey-B/poppy/internal/repositories/report"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/schema"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// Handler serves counts and aggregations.
type Handler struct {
	records recordrepo.RecordRepository
	reports reportrepo.ReportRepository
	logger  ectologger.Logger
}

// NewHandler creates a new report handler
func NewHandler(records recordrepo.RecordRepository, reports reportrepo.ReportRepository, logger ectologger.Logger) *Handler {
	return &Handler{
		records: records,
		reports: reports,
		logger:  logger,
	}
}

// RegisterRoutes registers the count and aggregation routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/count-donors", h.count("donors"))
	e.GET("/count-donations", h.count("donations"))
	e.GET("/count-bloodbanks", h.count("bloodbanks"))

	e.GET("/donor-details", h.aggregation("donor_details", h.reports.DonorDetails))
	e.GET("/blood-inventory-status", h.aggregation("blood_inventory_status", h.reports.BloodInventoryStatus))
	e.GET("/emergency-request-status", h.aggregation("emergency_request_status", h.reports.EmergencyRequestStatus))
}

func (h *Handler) count(tableName string) echo.HandlerFunc {
	table, _ := schema.Resolve(tableName)

	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ctx, span := tracing.StartSpan(ctx, "report_handler.Count")
		defer span.End()

		row, err := h.records.Count(ctx, table)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		return c.JSON(http.StatusOK, row)
	}
}

func (h *Handler) aggregation(name string, query func(ctx context.Context) ([]models.Row, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ctx, span := tracing.StartSpan(ctx, "report_handler."+name)
		defer span.End()

		rows, err := query(ctx)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		return c.JSON(http.StatusOK, rows)
	}
}
