package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sincarebunch/barbershop-api/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// TokenVerifier checks an access token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (*utils.Claims, error)
}

// JWTAuth returns an Echo middleware that reads the access token from the
// access_token cookie, falling back to an Authorization Bearer header, and
// verifies it.  The claims end up under "claims"; the user id (uint64) and
// role (model.Role) are copied to "user_id" and "role" for handlers and
// the role guard.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := utils.GetAccessToken(c)
			if raw == "" {
				return utils.Failure(c, http.StatusUnauthorized, "Unauthorized")
			}
			claims, err := v.Verify(raw)
			if err != nil {
				return utils.Failure(c, http.StatusUnauthorized, "Unauthorized")
			}
			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, claims.ID)
			c.Set(RoleKey, claims.Role)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by JWTAuth.
func ClaimsFrom(c echo.Context) (*utils.Claims, bool) {
	cl, ok := c.Get(ClaimsKey).(*utils.Claims)
	return cl, ok && cl != nil
}
