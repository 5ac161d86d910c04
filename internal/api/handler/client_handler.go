package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

// ClientHandler handles HTTP requests for the client book.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// revealFields maps the ?reveal= tokens to credential fields.
var revealFields = map[string]string{
	"dgi":                         domain.SecretDGIPassword,
	"damancom":                    domain.SecretDAMANCOMPassword,
	domain.SecretDGIPassword:      domain.SecretDGIPassword,
	domain.SecretDAMANCOMPassword: domain.SecretDAMANCOMPassword,
}

// List handles GET /v1/clients.
//
// @Summary      List clients, newest first
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Search over nom commercial and raison sociale"
// @Success      200  {object}  clientListResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	clients, err := h.service.Search(c.Request().Context(), id, c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientList(clients))
}

// Get handles GET /v1/clients/:id.
//
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Client id"
// @Success      200  {object}  clientResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	client, err := h.service.Get(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Create handles POST /v1/clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      clientRequest  true  "Client"
// @Success      201   {object}  clientResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req clientRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	client, err := h.service.Create(c.Request().Context(), id, toClientInput(req))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/clients/"+client.ID)
	return c.JSON(http.StatusCreated, toClientResponse(client))
}

// Update handles PATCH /v1/clients/:id. Absent fields are left unchanged.
//
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Client id"
// @Param        body  body      clientPatchRequest  true  "Fields to change"
// @Success      200   {object}  clientResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/clients/{id} [patch]
func (h *ClientHandler) Update(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req clientPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	client, err := h.service.Update(c.Request().Context(), id, c.Param("id"), toClientPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Delete handles DELETE /v1/clients/:id.
//
// @Summary      Delete a client
// @Tags         clients
// @Security     BearerAuth
// @Param        id   path  string  true  "Client id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Credentials handles GET /v1/clients/:id/credentials.
//
// @Summary      Credential card of a client
// @Description  Passwords are masked unless listed in reveal and the caller's role has credential access.
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Client id"
// @Param        reveal  query     string  false  "Comma separated: dgi, damancom"
// @Success      200     {object}  domain.ClientCredentialsView
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/clients/{id}/credentials [get]
func (h *ClientHandler) Credentials(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	clientID := c.Param("id")
	view, err := h.service.Credentials(c.Request().Context(), id, clientID, parseReveal(clientID, c.QueryParam("reveal")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func parseReveal(clientID, raw string) domain.RevealState {
	state := domain.RevealState{}
	for _, tok := range strings.Split(raw, ",") {
		if field, ok := revealFields[strings.ToLower(strings.TrimSpace(tok))]; ok {
			state[domain.RevealKey(clientID, field)] = true
		}
	}
	return state
}
