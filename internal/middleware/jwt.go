package middleware

import (
	"context"
	"net/http"
	"strings"

	"galleria/internal/common"
	"galleria/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims carries the role claim alongside the standard set.
type JWTCustomClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTConfig builds the echo-jwt configuration. Validated claims are
// copied into the request context so handlers and downstream middleware
// can read the user ID and role without touching the token again.
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			claims := new(JWTCustomClaims)
			token, err := jwt.ParseWithClaims(auth, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			sub := strings.TrimSpace(claims.Subject)
			userID, err := uuid.Parse(sub)
			if err != nil {
				return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject format")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return token, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok || role != models.RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}
