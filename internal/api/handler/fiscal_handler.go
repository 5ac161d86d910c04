package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

// FiscalHandler serves the fiscal calendar.
type FiscalHandler struct {
	service ports.FiscalService
}

func NewFiscalHandler(service ports.FiscalService) *FiscalHandler {
	return &FiscalHandler{service: service}
}

type createDeadlineRequest struct {
	Title       string `json:"title"       validate:"required"`
	Date        string `json:"date"        validate:"required,datetime=2006-01-02"`
	Type        string `json:"type"        validate:"required,oneof=TVA IS IR Declaration"`
	Description string `json:"description"`
	Urgent      bool   `json:"urgent"`
}

type deadlineResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Date        string            `json:"date"`
	Type        domain.FiscalType `json:"type" swaggertype:"string"`
	Description string            `json:"description"`
	Urgent      bool              `json:"urgent"`
}

type deadlineListResponse struct {
	Items []deadlineResponse `json:"items"`
	Total int                `json:"total"`
}

func toDeadlineResponse(d *domain.FiscalDeadline) deadlineResponse {
	return deadlineResponse{
		ID:          d.ID,
		Title:       d.Title,
		Date:        formatDate(d.Date),
		Type:        d.Type,
		Description: d.Description,
		Urgent:      d.Urgent,
	}
}

func toDeadlineList(ds []*domain.FiscalDeadline) deadlineListResponse {
	items := make([]deadlineResponse, 0, len(ds))
	for _, d := range ds {
		items = append(items, toDeadlineResponse(d))
	}
	return deadlineListResponse{Items: items, Total: len(items)}
}

// List handles GET /v1/fiscal-deadlines.
//
// @Summary      List fiscal deadlines
// @Tags         calendar
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  deadlineListResponse
// @Router       /v1/fiscal-deadlines [get]
func (h *FiscalHandler) List(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	ds, err := h.service.List(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDeadlineList(ds))
}

// Upcoming handles GET /v1/fiscal-deadlines/upcoming.
//
// @Summary      Next fiscal deadlines from today
// @Tags         calendar
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of deadlines (default 5)"
// @Success      200    {object}  deadlineListResponse
// @Router       /v1/fiscal-deadlines/upcoming [get]
func (h *FiscalHandler) Upcoming(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	ds, err := h.service.Upcoming(c.Request().Context(), id, queryInt(c, "limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDeadlineList(ds))
}

// Create handles POST /v1/fiscal-deadlines.
//
// @Summary      Add a fiscal deadline
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDeadlineRequest  true  "Deadline"
// @Success      201   {object}  deadlineResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/fiscal-deadlines [post]
func (h *FiscalHandler) Create(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req createDeadlineRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return err
	}
	d, err := h.service.Create(c.Request().Context(), id, domain.FiscalDeadlineInput{
		Title:       req.Title,
		Date:        date,
		Type:        domain.FiscalType(req.Type),
		Description: req.Description,
		Urgent:      req.Urgent,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDeadlineResponse(d))
}

// Delete handles DELETE /v1/fiscal-deadlines/:id.
//
// @Summary      Remove a fiscal deadline
// @Tags         calendar
// @Security     BearerAuth
// @Param        id   path  string  true  "Deadline id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/fiscal-deadlines/{id} [delete]
func (h *FiscalHandler) Delete(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
