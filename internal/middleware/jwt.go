package middleware

import (
	"errors"
	"net/http"

	"ptime/internal/common"
	"ptime/internal/repositories"
	"ptime/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// ResolveProfile runs after the echo-jwt layer has verified the token
// signature. It rejects revoked tokens, re-fetches the profile (a profile
// that no longer exists means the credential is dead, not forbidden) and
// attaches {id, email, role} to the request context. The role comes from
// the database row, not the token, so a stale token cannot carry a role
// the profile does not have.
func ResolveProfile(profileRepo repositories.ProfileRepository, tokenSvc services.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			claims, ok := token.Claims.(*services.AuthClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			if tokenSvc.IsRevoked(c.Request().Context(), claims.ID) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
			}

			profileID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject in token")
			}

			profile, err := profileRepo.GetByID(c.Request().Context(), profileID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Profile no longer exists")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve profile")
			}

			ctx := common.WithIdentity(c.Request().Context(), profile.ID, profile.Email, profile.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
