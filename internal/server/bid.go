package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	biddomain "github.com/procurehq/procure/internal/bid/domain"
	"github.com/procurehq/procure/pkg/apperror"
)

func (s *Server) ListBids(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, apperror.Unauthorized("missing session"))
		return
	}

	resp, err := s.bidSvc.ListBids(c.Request.Context(), callerID, biddomain.ListBidsRequest{
		DistrictID: c.Query("district_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
