package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListAlerts(c *gin.Context) {
	org, ok := s.resolveOrg(c)
	if !ok {
		return
	}

	alerts, err := s.reactorSvc.Run(c.Request.Context(), org.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}
