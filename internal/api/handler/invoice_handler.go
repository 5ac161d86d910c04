package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
	"github.com/cabinet-comptable/backoffice/internal/pkg/currency"
)

type InvoiceHandler struct {
	service ports.InvoiceService
}

func NewInvoiceHandler(service ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

type createInvoiceRequest struct {
	ClientID  string  `json:"client_id"  validate:"required"`
	Type      string  `json:"type"`
	IssueDate string  `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate   string  `json:"due_date"   validate:"omitempty,datetime=2006-01-02"`
	AmountHT  float64 `json:"amount_ht"  validate:"gt=0"`
}

type invoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// invoiceResponse carries raw amounts and their fr-MA display form.
type invoiceResponse struct {
	ID         string               `json:"id"`
	Numero     string               `json:"numero"`
	ClientID   string               `json:"client_id"`
	ClientName string               `json:"client_name"`
	Type       string               `json:"type"`
	IssueDate  string               `json:"issue_date"`
	DueDate    string               `json:"due_date"`
	AmountHT   float64              `json:"amount_ht"`
	AmountTVA  float64              `json:"amount_tva"`
	AmountTTC  float64              `json:"amount_ttc"`
	Display    invoiceAmountDisplay `json:"display"`
	Status     domain.InvoiceStatus `json:"status" swaggertype:"string"`
	CreatedAt  time.Time            `json:"created_at"`
}

type invoiceAmountDisplay struct {
	HT  string `json:"ht"`
	TVA string `json:"tva"`
	TTC string `json:"ttc"`
}

type invoiceListResponse struct {
	Items []invoiceResponse `json:"items"`
	Total int               `json:"total"`
}

func toInvoiceResponse(i *domain.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:         i.ID,
		Numero:     i.Numero,
		ClientID:   i.ClientID,
		ClientName: i.ClientName,
		Type:       i.Type,
		IssueDate:  formatDate(i.IssueDate),
		DueDate:    formatDate(i.DueDate),
		AmountHT:   i.AmountHT,
		AmountTVA:  i.AmountTVA,
		AmountTTC:  i.AmountTTC,
		Display: invoiceAmountDisplay{
			HT:  currency.FormatMAD(i.AmountHT),
			TVA: currency.FormatMAD(i.AmountTVA),
			TTC: currency.FormatMAD(i.AmountTTC),
		},
		Status:    i.Status,
		CreatedAt: i.CreatedAt.UTC(),
	}
}

// List handles GET /v1/invoices.
//
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Search over numero and client"
// @Success      200  {object}  invoiceListResponse
// @Router       /v1/invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	invoices, err := h.service.List(c.Request().Context(), id, c.QueryParam("q"))
	if err != nil {
		return err
	}
	items := make([]invoiceResponse, 0, len(invoices))
	for _, i := range invoices {
		items = append(items, toInvoiceResponse(i))
	}
	return c.JSON(http.StatusOK, invoiceListResponse{Items: items, Total: len(items)})
}

// Create handles POST /v1/invoices. TVA and TTC are computed from HT.
//
// @Summary      Issue an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInvoiceRequest  true  "Invoice"
// @Success      201   {object}  invoiceResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req createInvoiceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	issue, err := parseDate("issue_date", req.IssueDate)
	if err != nil {
		return err
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return err
	}
	inv, err := h.service.Create(c.Request().Context(), id, domain.InvoiceInput{
		ClientID:  req.ClientID,
		Type:      req.Type,
		IssueDate: issue,
		DueDate:   due,
		AmountHT:  req.AmountHT,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toInvoiceResponse(inv))
}

// SetStatus handles PUT /v1/invoices/:id/status.
//
// @Summary      Change the payment status
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Invoice id"
// @Param        body  body      invoiceStatusRequest  true  "Status"
// @Success      200   {object}  invoiceResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/invoices/{id}/status [put]
func (h *InvoiceHandler) SetStatus(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req invoiceStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	inv, err := h.service.SetStatus(c.Request().Context(), id, c.Param("id"), domain.InvoiceStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// Delete handles DELETE /v1/invoices/:id.
//
// @Summary      Delete an invoice
// @Tags         invoices
// @Security     BearerAuth
// @Param        id   path  string  true  "Invoice id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
