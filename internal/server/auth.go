package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type mintDevTokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
	OrgID  string `json:"org_id" binding:"required"`
}

// MintDevToken issues a short-lived token for local development and e2e
// tests. The route is not registered in production.
func (s *Server) MintDevToken(c *gin.Context) {
	var req mintDevTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	userID, err := snowflake.ParseString(req.UserID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	orgID, err := snowflake.ParseString(req.OrgID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	token, err := s.tokens.Generate(userID, orgID, 24*time.Hour)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token}})
}
