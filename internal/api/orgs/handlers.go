// Package orgs implements the organization CRUD endpoints behind the auth
// gate. All four verbs live on /api/organizations: GET reads (one by ?id=,
// all without), POST creates, PUT and DELETE carry the target id in the body.
package orgs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orgboard/orgboard/internal/api/response"
	"github.com/orgboard/orgboard/internal/services"
	"github.com/orgboard/orgboard/internal/validation"
)

// Handlers handles the /api/organizations endpoints.
type Handlers struct {
	orgs *services.OrganizationService
}

// NewHandlers creates a new organization handler set.
func NewHandlers(orgs *services.OrganizationService) *Handlers {
	return &Handlers{orgs: orgs}
}

type createRequest struct {
	Name   string  `json:"name"`
	Domain *string `json:"domain"`
}

type updateRequest struct {
	ID     string                    `json:"id"`
	Name   *string                   `json:"name"`
	Domain validation.OptionalString `json:"domain"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

// @Summary      Create organization
// @Tags         Organizations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      201  {object}  response.Envelope
// @Failure      409  {object}  response.Envelope  "Name already exists"
// @Router       /api/organizations [post]
// CreateHandler creates an organization.
// POST /api/organizations
func (h *Handlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := response.Start()

		var req createRequest
		if err := validation.DecodeStrict(c.Request.Body, &req); err != nil {
			resp.Fail(c, http.StatusBadRequest,
				"Invalid request parameters", response.CodeValidationError, response.CategoryValidation)
			return
		}
		if errs := validation.CheckRequired(nil, "name", req.Name); len(errs) > 0 {
			resp.FailDetails(c, http.StatusBadRequest,
				"Invalid request parameters", response.CodeValidationError, response.CategoryValidation, errs)
			return
		}

		org, err := h.orgs.Create(c.Request.Context(), req.Name, req.Domain)
		if err != nil {
			if err == services.ErrDuplicateOrganizationName {
				resp.Fail(c, http.StatusConflict,
					"Organization name already exists", response.CodeDuplicateOrgName, response.CategoryConflict)
				return
			}
			resp.Fail(c, http.StatusInternalServerError,
				"An error occurred while creating the organization", response.CodeCreateOrgError, response.CategorySystem)
			return
		}

		resp.OK(c, http.StatusCreated, "Organization created successfully", gin.H{
			"organization": org,
		})
	}
}

// @Summary      Get organizations
// @Description  Fetch one organization by ?id=, or all when id is absent.
// @Tags         Organizations
// @Security     Bearer
// @Produce      json
// @Param        id  query  string  false  "Organization ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope  "Organization not found"
// @Router       /api/organizations [get]
// GetHandler fetches one organization when ?id= is present, otherwise all.
// GET /api/organizations?id=<uuid>
func (h *Handlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := response.Start()

		if id := c.Query("id"); id != "" {
			org, err := h.orgs.Get(c.Request.Context(), id)
			if err != nil {
				if err == services.ErrOrganizationNotFound {
					resp.Fail(c, http.StatusNotFound,
						"Organization not found", response.CodeOrgNotFound, response.CategoryNotFound)
					return
				}
				resp.Fail(c, http.StatusInternalServerError,
					"An error occurred while fetching the organization", response.CodeFetchOrgError, response.CategorySystem)
				return
			}
			resp.OK(c, http.StatusOK, "Organization fetched successfully", gin.H{
				"organization": org,
			})
			return
		}

		organizations, err := h.orgs.List(c.Request.Context())
		if err != nil {
			resp.Fail(c, http.StatusInternalServerError,
				"An error occurred while fetching organizations", response.CodeFetchOrgsError, response.CategorySystem)
			return
		}
		resp.OK(c, http.StatusOK, "Organizations fetched successfully", gin.H{
			"organizations": organizations,
		})
	}
}

// @Summary      Update organization
// @Description  Partially update an organization. An absent name keeps the
// @Description  stored value. The domain field is tri-state: absent leaves it
// @Description  unchanged, null clears it.
// @Tags         Organizations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope  "Organization not found"
// @Failure      409  {object}  response.Envelope  "Name already exists"
// @Router       /api/organizations [put]
// UpdateHandler updates an organization identified by the body id.
// PUT /api/organizations
func (h *Handlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := response.Start()

		var req updateRequest
		if err := validation.DecodeStrict(c.Request.Body, &req); err != nil {
			resp.Fail(c, http.StatusBadRequest,
				"Invalid request parameters", response.CodeValidationError, response.CategoryValidation)
			return
		}
		var errs validation.Errors
		errs = validation.CheckRequired(errs, "id", req.ID)
		if req.Name != nil {
			errs = validation.CheckRequired(errs, "name", *req.Name)
		}
		if len(errs) > 0 {
			resp.FailDetails(c, http.StatusBadRequest,
				"Invalid request parameters", response.CodeValidationError, response.CategoryValidation, errs)
			return
		}

		org, err := h.orgs.Update(c.Request.Context(), req.ID, req.Name, req.Domain)
		if err != nil {
			switch err {
			case services.ErrOrganizationNotFound:
				resp.Fail(c, http.StatusNotFound,
					"Organization not found", response.CodeOrgNotFound, response.CategoryNotFound)
			case services.ErrDuplicateOrganizationName:
				resp.Fail(c, http.StatusConflict,
					"Organization name already exists", response.CodeDuplicateOrgName, response.CategoryConflict)
			default:
				resp.Fail(c, http.StatusInternalServerError,
					"An error occurred while updating the organization", response.CodeUpdateOrgError, response.CategorySystem)
			}
			return
		}

		resp.OK(c, http.StatusOK, "Organization updated successfully", gin.H{
			"organization": org,
		})
	}
}

// @Summary      Delete organization
// @Tags         Organizations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope  "Organization not found"
// @Router       /api/organizations [delete]
// DeleteHandler removes an organization identified by the body id.
// DELETE /api/organizations
func (h *Handlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := response.Start()

		var req deleteRequest
		if err := validation.DecodeStrict(c.Request.Body, &req); err != nil {
			resp.Fail(c, http.StatusBadRequest,
				"Invalid request parameters", response.CodeValidationError, response.CategoryValidation)
			return
		}
		if errs := validation.CheckRequired(nil, "id", req.ID); len(errs) > 0 {
			resp.FailDetails(c, http.StatusBadRequest,
				"Invalid request parameters", response.CodeValidationError, response.CategoryValidation, errs)
			return
		}

		if err := h.orgs.Delete(c.Request.Context(), req.ID); err != nil {
			if err == services.ErrOrganizationNotFound {
				resp.Fail(c, http.StatusNotFound,
					"Organization not found", response.CodeOrgNotFound, response.CategoryNotFound)
				return
			}
			resp.Fail(c, http.StatusInternalServerError,
				"An error occurred while deleting the organization", response.CodeDeleteOrgError, response.CategorySystem)
			return
		}

		resp.OK(c, http.StatusOK, "Organization deleted successfully", nil)
	}
}
