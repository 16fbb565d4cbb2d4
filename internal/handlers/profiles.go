package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/pitchbase/internal/models"
	"github.com/charlesng35/pitchbase/internal/services"
	"github.com/charlesng35/pitchbase/pkg/response"
)

// ProfileHandler exposes the caller's own profile.
type ProfileHandler struct {
	svc *services.ProfileService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(svc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// ProfileResponse is the public representation of a profile.
type ProfileResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

func toProfileResponse(profile *models.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        profile.ID,
		Email:     profile.Email,
		Name:      profile.Name,
		AvatarURL: profile.AvatarURL,
	}
}

// POST /profiles/
func (h *ProfileHandler) Create(c *gin.Context) {
	identity, err := currentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.svc.ResolveOrCreate(requestContext(c), identity, signupAttribution(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, toProfileResponse(profile))
}

// GET /profiles/
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, ok := h.currentProfile(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, toProfileResponse(profile))
}

// DELETE /profiles/
func (h *ProfileHandler) Delete(c *gin.Context) {
	profile, ok := h.currentProfile(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(requestContext(c), profile); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func (h *ProfileHandler) currentProfile(c *gin.Context) (*models.Profile, bool) {
	return resolveProfile(c, h.svc)
}

// resolveProfile loads the caller's profile, writing the error response when it cannot.
func resolveProfile(c *gin.Context, svc *services.ProfileService) (*models.Profile, bool) {
	identity, err := currentIdentity(c)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}

	profile, err := svc.Current(requestContext(c), identity)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return profile, true
}
