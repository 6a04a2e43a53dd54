package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Auth verifies the collaborator-issued bearer token and exposes its
// subject as user_id on the request context. Tokens are HMAC-signed; any
// other method is rejected.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(authz, "Bearer ")
			if !ok || tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token requerido")
			}

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "token inválido")
			}

			if sub, err := token.Claims.GetSubject(); err == nil {
				c.Set("user_id", sub)
			}

			return next(c)
		}
	}
}
