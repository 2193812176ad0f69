package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	organizationdomain "github.com/procurehq/procure/internal/organization/domain"
	"github.com/procurehq/procure/pkg/apperror"
)

type InviteOrganizationRequest struct {
	Email            string `json:"email"`
	OrganizationType string `json:"organization_type"`
	Name             string `json:"name"`
}

type UpdateOrganizationRequest struct {
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Zip     *string `json:"zip"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

func (s *Server) InviteOrganization(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, apperror.Unauthorized("missing session"))
		return
	}

	var req InviteOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		AbortWithError(c, apperror.BadRequest("email and name are required"))
		return
	}

	resp, err := s.organizationSvc.InviteOrganization(c.Request.Context(), callerID, organizationdomain.InviteOrganizationRequest{
		Email:            email,
		OrganizationType: strings.ToLower(strings.TrimSpace(req.OrganizationType)),
		Name:             name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) UpdateOrganization(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, apperror.Unauthorized("missing session"))
		return
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.UpdateOrganization(c.Request.Context(), callerID, organizationdomain.UpdateOrganizationRequest{
		ID:      c.Param("id"),
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListOrganizations(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, apperror.Unauthorized("missing session"))
		return
	}

	resp, err := s.organizationSvc.ListOrganizations(c.Request.Context(), callerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
