// Package record exposes the generic CRUD surface: every managed table
// gets the same four routes, all funneled through one repository.
package record

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	recordrepo "github.com/Ramsey-B/poppy/internal/repositories/record"
	"github.com/Ramsey-B/poppy/pkg/events"
	"github.com/Ramsey-B/poppy/pkg/middleware"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/schema"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// Handler serves the per-table CRUD routes.
type Handler struct {
	repo    recordrepo.RecordRepository
	emitter *events.Emitter
	logger  ectologger.Logger
}

// NewHandler creates a new record handler
func NewHandler(repo recordrepo.RecordRepository, emitter *events.Emitter, logger ectologger.Logger) *Handler {
	return &Handler{
		repo:    repo,
		emitter: emitter,
		logger:  logger,
	}
}

// RegisterRoutes registers list/insert/update/delete routes for every
// managed table. Only registry tables get routes; anything else falls
// through to the static handler and 404s without touching the database.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	for _, table := range schema.Tables() {
		e.GET("/"+table.Name, h.list(table))
		e.POST("/"+table.Name, h.create(table))
		e.PUT("/"+table.Name+"/:id", h.update(table))
		e.DELETE("/"+table.Name+"/:id", h.delete(table))
	}
}

func (h *Handler) list(table schema.Table) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ctx, span := tracing.StartSpan(ctx, "record_handler.List")
		defer span.End()

		rows, err := h.repo.List(ctx, table)
		if err != nil {
			return repoError(err)
		}

		return c.JSON(http.StatusOK, rows)
	}
}

func (h *Handler) create(table schema.Table) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ctx, span := tracing.StartSpan(ctx, "record_handler.Create")
		defer span.End()

		body := models.Row{}
		if err := c.Bind(&body); err != nil {
			// Parse failures surface through the generic tail, matching
			// the contract the UI was built against.
			return httperror.NewHTTPError(http.StatusInternalServerError, middleware.GenericErrorMessage)
		}

		row, err := h.repo.Insert(ctx, table, body)
		if err != nil {
			return repoError(err)
		}

		h.emitter.RecordCreated(ctx, table, row)

		return c.JSON(http.StatusCreated, row)
	}
}

func (h *Handler) update(table schema.Table) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ctx, span := tracing.StartSpan(ctx, "record_handler.Update")
		defer span.End()

		id := c.Param("id")

		body := models.Row{}
		if err := c.Bind(&body); err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, middleware.GenericErrorMessage)
		}

		row, err := h.repo.Update(ctx, table, id, body)
		if err != nil {
			return repoError(err)
		}
		if row == nil {
			return httperror.NewHTTPError(http.StatusNotFound, "Record not found")
		}

		h.emitter.RecordUpdated(ctx, table, row)

		return c.JSON(http.StatusOK, row)
	}
}

func (h *Handler) delete(table schema.Table) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ctx, span := tracing.StartSpan(ctx, "record_handler.Delete")
		defer span.End()

		id := c.Param("id")

		row, err := h.repo.Delete(ctx, table, id)
		if err != nil {
			return repoError(err)
		}
		if row == nil {
			return httperror.NewHTTPError(http.StatusNotFound, "Record not found")
		}

		h.emitter.RecordDeleted(ctx, table, row)

		return c.JSON(http.StatusOK, models.DeletedResponse{
			Message: "Record deleted successfully",
			Deleted: row,
		})
	}
}

// repoError maps repository failures to HTTP errors: validation failures
// are the client's fault, everything else surfaces the driver message.
func repoError(err error) error {
	if errors.Is(err, recordrepo.ErrNoFields) {
		return httperror.NewHTTPError(http.StatusBadRequest, "No data to update")
	}

	var invalidCol *recordrepo.InvalidColumnError
	if errors.As(err, &invalidCol) {
		return httperror.NewHTTPError(http.StatusBadRequest, invalidCol.Error())
	}

	return httperror.NewHTTPError(http.StatusInternalServerError, err.Error())
}
