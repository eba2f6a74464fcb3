package records

import (
	"github.com/labstack/echo/v4"

	"github.com/emergent-company/emergent.relations/internal/config"
)

// RegisterRoutes registers record routes under the configured API prefix
func RegisterRoutes(e *echo.Echo, h *Handler, cfg *config.Config) {
	g := e.Group(cfg.Relations.APIPrefix)

	g.POST("/hydrate", h.Hydrate)
	g.GET("/:plural", h.List)
	g.GET("/:plural/:id", h.Get)
}
