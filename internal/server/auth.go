package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/procurehq/procure/internal/auth/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authSvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.setSessionCookie(c, result.RawToken, result.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"user_id":    result.UserID.String(),
		"expires_at": result.ExpiresAt,
	})
}

func (s *Server) Logout(c *gin.Context) {
	if rawToken, err := c.Cookie(sessionCookieName); err == nil && rawToken != "" {
		if err := s.authSvc.Logout(c.Request.Context(), rawToken); err != nil {
			AbortWithError(c, err)
			return
		}
	}
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *Server) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err := s.authSvc.VerifyEmail(c.Request.Context(), authdomain.VerifyEmailRequest{
		Email: strings.TrimSpace(req.Email),
		Code:  strings.TrimSpace(req.Code),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

func (s *Server) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authSvc.RequestPasswordReset(c.Request.Context(), strings.TrimSpace(req.Email)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the address exists, a reset email has been sent"})
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err := s.authSvc.ResetPassword(c.Request.Context(), authdomain.ResetPasswordRequest{
		Email:       strings.TrimSpace(req.Email),
		Code:        strings.TrimSpace(req.Code),
		NewPassword: req.NewPassword,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
