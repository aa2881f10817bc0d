package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	rosterservice "github.com/platewise/platewise/internal/roster/service"
)

func (s *Server) AssessRoster(c *gin.Context) {
	if _, ok := s.resolveOrg(c); !ok {
		return
	}

	var req rosterservice.AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.WorkerID) == "" {
		AbortWithError(c, newValidationError("worker_id", "invalid_worker_id", "worker id is required"))
		return
	}

	assessment := s.rosterSvc.Assess(req)
	c.JSON(http.StatusOK, gin.H{"assessment": assessment})
}
