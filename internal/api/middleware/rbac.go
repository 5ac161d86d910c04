package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/api/metrics"
	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// RequirePermission lets the request through only when the caller's role may
// perform action on entity. It must run after Auth.
func RequirePermission(eval *authz.Evaluator, action domain.Action, entity domain.EntityKind) echo.MiddlewareFunc {
	label := string(entity) + ":" + string(action)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !eval.CanPerform(IdentityFrom(c).Role, action, entity) {
				metrics.AuthzDenialsTotal.WithLabelValues(label).Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireMenu gates a screen-level endpoint on menu visibility.
func RequireMenu(eval *authz.Evaluator, menu domain.MenuID) echo.MiddlewareFunc {
	label := "menu:" + string(menu)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !eval.CanView(IdentityFrom(c).Role, menu) {
				metrics.AuthzDenialsTotal.WithLabelValues(label).Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
