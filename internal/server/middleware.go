package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/procurehq/procure/pkg/apperror"
)

const (
	sessionCookieName = "procure_session"
	contextUserIDKey  = "auth.user_id"
)

// AuthRequired resolves the acting user from the session cookie and stores
// its id on the context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, err := c.Cookie(sessionCookieName)
		if err != nil || rawToken == "" {
			AbortWithError(c, apperror.Unauthorized("missing session"))
			return
		}

		session, err := s.authSvc.Authenticate(c.Request.Context(), rawToken)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, session.UserID)
		c.Next()
	}
}

// InviteRateLimit throttles invitation endpoints per acting user. Runs after
// AuthRequired.
func (s *Server) InviteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.inviteLimiter == nil {
			c.Next()
			return
		}

		userID, ok := currentUserID(c)
		if !ok {
			AbortWithError(c, apperror.Unauthorized("missing session"))
			return
		}

		result, err := s.inviteLimiter.Allow(c.Request.Context(), userID.String())
		if err != nil {
			// redis trouble should not take the endpoint down
			c.Next()
			return
		}
		if !result.Allowed {
			retryAfter := result.RetryAfter.Round(time.Second)
			c.Header("Retry-After", retryAfter.String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
				Type:    "rate_limited",
				Message: "too many invitations, retry later",
			}})
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok
}

func (s *Server) setSessionCookie(c *gin.Context, rawToken string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt) / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, rawToken, maxAge, "/", "", s.cfg.AuthCookieSecure, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", s.cfg.AuthCookieSecure, true)
}
