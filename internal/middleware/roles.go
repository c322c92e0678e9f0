package middleware

import (
	"net/http"

	"ptime/internal/common"
	"ptime/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole gates a route to the given role set. It assumes
// ResolveProfile already ran; a request with no resolved identity is
// unauthenticated, one whose role is outside the set is forbidden.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			role, ok := common.GetRoleFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient role")
			}
			return next(c)
		}
	}
}
