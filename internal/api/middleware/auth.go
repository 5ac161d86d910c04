package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

// Context keys set by Auth.
const (
	IdentityKey = "identity"
	TokenIDKey  = "token_id"
	TokenExpKey = "token_exp"
)

// Auth validates the JWT, rejects revoked tokens and injects the caller's
// domain.Identity into both the echo context and the request context.
// sessions may be nil, in which case revocation is not checked.
func Auth(jwtSecret string, sessions ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			}, jwt.WithExpirationRequired(), jwt.WithIssuedAt())
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			id := domain.Identity{
				UserID: stringClaim(claims, "sub"),
				Email:  stringClaim(claims, "email"),
				Role:   domain.Role(stringClaim(claims, "role")),
			}
			if !id.Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			jti := stringClaim(claims, "jti")

			if sessions != nil {
				ctx := c.Request().Context()
				if jti != "" {
					revoked, err := sessions.IsRevoked(ctx, jti)
					if err != nil {
						return err
					}
					if revoked {
						return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
					}
				}
				cutoff, err := sessions.RevokedBefore(ctx, id.UserID)
				if err != nil {
					return err
				}
				if !cutoff.IsZero() {
					iat, ok := issuedAt(claims)
					if !ok || !iat.After(cutoff.Truncate(time.Millisecond)) {
						return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
					}
				}
			}

			var exp time.Time
			if e, _ := claims.GetExpirationTime(); e != nil {
				exp = e.Time
			}

			c.Set(IdentityKey, id)
			c.Set(TokenIDKey, jti)
			c.Set(TokenExpKey, exp)
			c.SetRequest(c.Request().WithContext(domain.WithIdentity(c.Request().Context(), id)))

			return next(c)
		}
	}
}

// IdentityFrom returns the identity injected by Auth, or the zero Identity.
func IdentityFrom(c echo.Context) domain.Identity {
	id, _ := c.Get(IdentityKey).(domain.Identity)
	return id
}

// issuedAt reads iat to the millisecond. GetIssuedAt truncates to
// jwt.TimePrecision, which is a whole second by default.
func issuedAt(claims jwt.MapClaims) (time.Time, bool) {
	var sec float64
	switch v := claims["iat"].(type) {
	case float64:
		sec = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		sec = f
	default:
		return time.Time{}, false
	}
	return time.UnixMilli(int64(math.Round(sec * 1000))), true
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
