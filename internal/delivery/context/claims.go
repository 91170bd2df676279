package context

import (
	"jobportal/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// SetClaims stores the authenticated caller's claims.
func SetClaims(c echo.Context, claims *service.Claims) {
	c.Set(echoClaimsKey, claims)
}

// Claims returns the claims set by the auth middleware, or nil.
func Claims(c echo.Context) *service.Claims {
	claims, _ := c.Get(echoClaimsKey).(*service.Claims)

	return claims
}
