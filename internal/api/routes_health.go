package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/pitchbase/internal/app"
	"github.com/charlesng35/pitchbase/internal/handlers"
	apperrors "github.com/charlesng35/pitchbase/pkg/errors"
	"github.com/charlesng35/pitchbase/pkg/response"
)

func registerHealthRoutes(r *gin.Engine, cfg *app.Config, h *handlers.HealthHandler) {
	if !cfg.Monitoring.Health.Enabled {
		r.GET("/health", disabledHealthHandler)
		r.GET("/health/live", disabledHealthHandler)
		r.GET("/health/ready", disabledHealthHandler)
		return
	}

	r.GET("/health", h.Health)
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
}

// disabledHealthHandler answers like an unknown route so probes cannot tell the checks exist.
func disabledHealthHandler(c *gin.Context) {
	response.Error(c, apperrors.ErrNotFound.WithMessage("route "+c.Request.URL.Path+" not found"))
}
