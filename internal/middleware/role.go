package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sincarebunch/barbershop-api/internal/model"
	"github.com/sincarebunch/barbershop-api/internal/utils"
)

// RequireRole enforces that the authenticated user has one of roles.  It
// must run after JWTAuth; a request without a role in context is treated
// like one with the wrong role.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(RoleKey).(model.Role)
			if !ok || !allowed[role] {
				return utils.Failure(c, http.StatusForbidden, "Forbidden: Insufficient privileges.")
			}
			return next(c)
		}
	}
}
