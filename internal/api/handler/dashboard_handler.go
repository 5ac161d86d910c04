package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/core/ports"
	"github.com/cabinet-comptable/backoffice/internal/pkg/currency"
)

type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// revenue fields are omitted entirely for roles without financial access.
type dashboardResponse struct {
	ActiveClients     int64              `json:"active_clients"`
	TasksInProgress   int64              `json:"tasks_in_progress"`
	InvoicesThisMonth int64              `json:"invoices_this_month"`
	Revenue           *float64           `json:"revenue,omitempty"`
	RevenueDisplay    string             `json:"revenue_display,omitempty"`
	UpcomingDeadlines []deadlineResponse `json:"upcoming_deadlines"`
}

// Summary handles GET /v1/dashboard.
//
// @Summary      Home screen figures
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Summary(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	s, err := h.service.Summary(c.Request().Context(), id)
	if err != nil {
		return err
	}
	resp := dashboardResponse{
		ActiveClients:     s.ActiveClients,
		TasksInProgress:   s.TasksInProgress,
		InvoicesThisMonth: s.InvoicesThisMonth,
		Revenue:           s.Revenue,
		UpcomingDeadlines: toDeadlineList(s.UpcomingDeadlines).Items,
	}
	if s.Revenue != nil {
		resp.RevenueDisplay = currency.FormatMAD(*s.Revenue)
	}
	return c.JSON(http.StatusOK, resp)
}
