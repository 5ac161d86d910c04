package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/api/middleware"
	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	eval        *authz.Evaluator
}

func NewAuthHandler(authService ports.AuthService, eval *authz.Evaluator) *AuthHandler {
	return &AuthHandler{authService: authService, eval: eval}
}

type signUpRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8"`
	FullName string `json:"full_name"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Role      domain.Role `json:"role" swaggertype:"string"`
	Phone     string      `json:"phone,omitempty"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type capabilitiesResponse struct {
	Menus             []domain.MenuID    `json:"menus" swaggertype:"array,string"`
	Permissions       []string           `json:"permissions"`
	SecretFields      []domain.FieldKind `json:"secret_fields" swaggertype:"array,string"`
	SecretFieldAccess bool               `json:"secret_field_access"`
	AssignableRoles   []domain.Role      `json:"assignable_roles" swaggertype:"array,string"`
}

type meResponse struct {
	User         userResponse         `json:"user"`
	Capabilities capabilitiesResponse `json:"capabilities"`
}

func toUserResponse(u *domain.UserProfile) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

// SignUp sets the password of a profile created by an administrator.
//
// @Summary      Complete a pre-authorized account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Credentials"
// @Success      201   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.authService.SignUp(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(u))
}

// SignIn authenticates a user and returns a JWT.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC(),
		User:      toUserResponse(s.User),
	})
}

// SignOut revokes the presented token.
//
// @Summary      Sign out
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if _, err := actor(c); err != nil {
		return err
	}
	jti, _ := c.Get(middleware.TokenIDKey).(string)
	exp, _ := c.Get(middleware.TokenExpKey).(time.Time)
	if err := h.authService.SignOut(c.Request().Context(), jti, exp); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller with the menus and capabilities of their role.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return err
	}
	u, err := h.authService.Me(c.Request().Context(), id)
	if err != nil {
		return err
	}

	caps := h.eval.Capabilities(u.Role)
	assignable := []domain.Role{}
	for _, r := range h.eval.Registry().Roles() {
		if caps.CanManage(r) {
			assignable = append(assignable, r)
		}
	}
	return c.JSON(http.StatusOK, meResponse{
		User: toUserResponse(u),
		Capabilities: capabilitiesResponse{
			Menus:             h.eval.VisibleMenus(u.Role),
			Permissions:       caps.Permissions(),
			SecretFields:      caps.SecretFields(),
			SecretFieldAccess: caps.SecretFieldAccess(),
			AssignableRoles:   assignable,
		},
	})
}
