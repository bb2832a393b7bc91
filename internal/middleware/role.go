package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/splitlease/message-curation/internal/service"
)

// RequireCurator aborts any request whose authenticated role may not use
// the curation console. The console treats a wrong role the same as a
// missing login: 401 with the standard error envelope, so the frontend's
// single unauthorized handler covers both. Assumes JWTAuth ran first and
// stored the role claim under "role".
func RequireCurator() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !service.CanModerate(role) {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "Unauthorized",
				})
			}
			return next(c)
		}
	}
}
