package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

// UserHandler is the user administration screen.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role"      validate:"required"`
	Phone    string `json:"phone"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type userListResponse struct {
	Items []userResponse `json:"items"`
	Total int            `json:"total"`
}

// List handles GET /v1/users.
//
// @Summary      List users, newest first
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userListResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	users, err := h.service.List(c.Request().Context(), id)
	if err != nil {
		return err
	}
	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, userListResponse{Items: items, Total: len(items)})
}

// Create handles POST /v1/users. The new user completes the account through
// /auth/signup.
//
// @Summary      Authorize a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User"
// @Success      201   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req createUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.service.Create(c.Request().Context(), id, domain.NewUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     domain.Role(req.Role),
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(u))
}

// SetActive handles PUT /v1/users/:id/active.
//
// @Summary      Activate or deactivate a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User id"
// @Param        body  body      setActiveRequest  true  "State"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id}/active [put]
func (h *UserHandler) SetActive(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req setActiveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.service.SetActive(c.Request().Context(), id, c.Param("id"), *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// ChangeRole handles PUT /v1/users/:id/role.
//
// @Summary      Change the role of a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      changeRoleRequest  true  "Role"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id}/role [put]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	var req changeRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.service.ChangeRole(c.Request().Context(), id, c.Param("id"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
