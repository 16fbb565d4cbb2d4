package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/pitchbase/internal/handlers"
)

func registerProfileRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, h *handlers.ProfileHandler) {
	profiles := r.Group("/profiles", requireAuth)
	both(profiles, http.MethodPost, "", h.Create)
	both(profiles, http.MethodGet, "", h.Get)
	both(profiles, http.MethodDelete, "", h.Delete)
}
