package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/pitchbase/internal/models"
	"github.com/charlesng35/pitchbase/internal/services"
	appErrors "github.com/charlesng35/pitchbase/pkg/errors"
	"github.com/charlesng35/pitchbase/pkg/response"
)

// OrganizationHandler serves the organizations the caller belongs to.
type OrganizationHandler struct {
	profiles *services.ProfileService
	svc      *services.OrganizationService
}

// NewOrganizationHandler constructs an OrganizationHandler.
func NewOrganizationHandler(profiles *services.ProfileService, svc *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{profiles: profiles, svc: svc}
}

type createOrganizationRequest struct {
	Name *string `json:"name" validate:"required"`
}

type updateOrganizationRequest struct {
	Name *string `json:"name"`
}

// OrganizationResponse is the public representation of an organization.
type OrganizationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toOrganizationResponse(org *models.Organization) OrganizationResponse {
	return OrganizationResponse{ID: org.ID, Name: org.Name}
}

// GET /organizations/
func (h *OrganizationHandler) List(c *gin.Context) {
	profile, ok := resolveProfile(c, h.profiles)
	if !ok {
		return
	}

	page, ok := pageRequest(c)
	if !ok {
		return
	}

	result, err := h.svc.ListFor(requestContext(c), profile, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OrganizationResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toOrganizationResponse(&result.Items[i]))
	}
	response.Success(c, http.StatusOK, response.NewPage(items, int(result.Total), result.Page.Page, result.Page.Size))
}

// GET /organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	profile, ok := resolveProfile(c, h.profiles)
	if !ok {
		return
	}

	org, err := h.svc.Get(requestContext(c), profile, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toOrganizationResponse(org))
}

// POST /organizations/
func (h *OrganizationHandler) Create(c *gin.Context) {
	profile, ok := resolveProfile(c, h.profiles)
	if !ok {
		return
	}

	var body createOrganizationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	org, err := h.svc.Create(requestContext(c), profile, *body.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toOrganizationResponse(org))
}

// PATCH /organizations/:id
func (h *OrganizationHandler) Update(c *gin.Context) {
	profile, ok := resolveProfile(c, h.profiles)
	if !ok {
		return
	}

	var body updateOrganizationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	org, err := h.svc.Update(requestContext(c), profile, c.Param("id"), services.UpdateOrganizationInput{
		Name: body.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, toOrganizationResponse(org))
}

// DELETE /organizations/:id
func (h *OrganizationHandler) Delete(c *gin.Context) {
	profile, ok := resolveProfile(c, h.profiles)
	if !ok {
		return
	}

	if err := h.svc.Delete(requestContext(c), profile, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func pageRequest(c *gin.Context) (services.PageRequest, bool) {
	var details []appErrors.FieldError

	page, fieldErr := parseIntQuery(c, "page", services.DefaultPage)
	if fieldErr != nil {
		details = append(details, *fieldErr)
	}
	size, fieldErr := parseIntQuery(c, "size", services.DefaultPageSize)
	if fieldErr != nil {
		details = append(details, *fieldErr)
	}
	if len(details) > 0 {
		response.Error(c, appErrors.NewValidation(details...))
		return services.PageRequest{}, false
	}

	req := services.PageRequest{Page: page, Size: size}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return services.PageRequest{}, false
	}
	return req, true
}
