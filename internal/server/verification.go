package server

import (
	"net/http"
	"strconv"
	"strings"

	verificationdomain "github.com/astauriabidco-maker/fle-expert/internal/verification/domain"
	"github.com/gin-gonic/gin"
)

// VerifyCertificate is the anonymous endpoint behind the QR code on every
// issued certificate. Optional query parameters carry fields read off the
// printed certificate; when present they must match the stored session.
func (s *Server) VerifyCertificate(c *gin.Context) {
	presented := strings.ToLower(strings.TrimSpace(c.Param("hash")))

	claim := verificationdomain.Claim{
		UserID:  strings.TrimSpace(c.Query("user_id")),
		ISODate: strings.TrimSpace(c.Query("date")),
	}
	if raw := strings.TrimSpace(c.Query("score")); raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"data": verificationdomain.Result{Valid: false}})
			return
		}
		claim.Score = &score
	}

	result, err := s.verificationSvc.Verify(c.Request.Context(), presented, claim)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
