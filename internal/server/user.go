package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	userdomain "github.com/procurehq/procure/internal/user/domain"
	"github.com/procurehq/procure/pkg/apperror"
)

type InviteUserRequest struct {
	Email      string `json:"email"`
	DistrictID string `json:"district_id"`
}

func (s *Server) InviteUser(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, apperror.Unauthorized("missing session"))
		return
	}

	var req InviteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		AbortWithError(c, apperror.BadRequest("email is required"))
		return
	}

	svcReq := userdomain.InviteUserRequest{Email: email}
	if raw := strings.TrimSpace(req.DistrictID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, apperror.BadRequest("invalid district id"))
			return
		}
		svcReq.DistrictID = &id
	}

	resp, err := s.userSvc.InviteUser(c.Request.Context(), callerID, svcReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) BulkUploadUsers(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, apperror.Unauthorized("missing session"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, apperror.BadRequest("file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, apperror.BadRequest("file could not be read"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		AbortWithError(c, apperror.BadRequest("file could not be read"))
		return
	}

	if s.inviteLimiter != nil {
		token, locked, err := s.inviteLimiter.LockBulkUpload(c.Request.Context(), callerID.String())
		if err == nil && !locked {
			c.AbortWithStatusJSON(http.StatusConflict, errorResponse{Error: errorPayload{
				Type:    "conflict",
				Message: "a bulk upload is already in progress",
			}})
			return
		}
		if err == nil {
			defer func() {
				_ = s.inviteLimiter.UnlockBulkUpload(c.Request.Context(), callerID.String(), token)
			}()
		}
	}

	resp, err := s.userSvc.BulkUploadUsers(c.Request.Context(), callerID, userdomain.BulkUploadRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListUsers(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, apperror.Unauthorized("missing session"))
		return
	}

	var req userdomain.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.DistrictID = c.Query("district_id")
	req.CooperativeID = c.Query("cooperative_id")

	resp, err := s.userSvc.ListUsers(c.Request.Context(), callerID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) SearchUsers(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, apperror.Unauthorized("missing session"))
		return
	}

	var req userdomain.SearchUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Query = c.Query("q")

	resp, err := s.userSvc.SearchUsers(c.Request.Context(), callerID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GenerateBulkUserTemplate(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, apperror.Unauthorized("missing session"))
		return
	}

	tmpl, err := s.userSvc.GenerateBulkUserTemplate(c.Request.Context(), callerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tmpl.FileName))
	c.Data(http.StatusOK, tmpl.ContentType, tmpl.Data)
}

func (s *Server) GetEligibleBidManagers(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, apperror.Unauthorized("missing session"))
		return
	}

	resp, err := s.userSvc.GetEligibleBidManagers(c.Request.Context(), callerID, userdomain.EligibleBidManagersRequest{
		DistrictID: c.Query("district_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
