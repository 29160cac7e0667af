package middleware

import (
	"net/http"

	"panveliq/internal/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// RequirePermission gates a route on the caller effectively holding the
// named permission (role grant unless explicitly revoked, plus explicit
// custom grants).
func RequirePermission(db *gorm.DB, name string) echo.MiddlewareFunc {
	perms := services.NewPermissionService(db)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := GetUserID(c)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authenticated user")
			}

			if GetUserRole(c) == "admin" {
				return next(c)
			}

			ok, err := perms.HasPermission(userID, name)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve permissions")
			}
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}

			return next(c)
		}
	}
}
