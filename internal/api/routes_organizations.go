package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/pitchbase/internal/handlers"
)

func registerOrganizationRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, h *handlers.OrganizationHandler) {
	orgs := r.Group("/organizations", requireAuth)
	{
		both(orgs, http.MethodGet, "", h.List)
		both(orgs, http.MethodPost, "", h.Create)
		orgs.GET("/:id", h.Get)
		orgs.PATCH("/:id", h.Update)
		orgs.DELETE("/:id", h.Delete)
	}
}
