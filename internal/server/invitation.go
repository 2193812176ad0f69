package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invitationdomain "github.com/procurehq/procure/internal/invitation/domain"
	"github.com/procurehq/procure/pkg/apperror"
)

type AcceptInvitationRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Token     string `json:"token"`
}

func (s *Server) AcceptInvitation(c *gin.Context) {
	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	token := strings.TrimSpace(req.Token)
	if email == "" || token == "" || req.Password == "" {
		AbortWithError(c, apperror.BadRequest("email, password and token are required"))
		return
	}

	resp, err := s.invitationSvc.AcceptInvitation(c.Request.Context(), invitationdomain.AcceptInvitationRequest{
		Email:     email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Token:     token,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
