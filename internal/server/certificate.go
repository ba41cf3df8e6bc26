package server

import (
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// GetDiagnosticCertificate streams the rendered PDF. Content negotiation is
// deliberately simple: ?format=json returns the projection instead.
func (s *Server) GetDiagnosticCertificate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	sessionID, err := snowflake.ParseString(c.Param("sessionId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if c.Query("format") == "json" {
		cert, err := s.certificateSvc.Get(c.Request.Context(), sessionID, userID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": cert})
		return
	}

	reader, err := s.certificateSvc.Render(c.Request.Context(), sessionID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="diagnostic-certificate.pdf"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
