package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	costwatchdomain "github.com/platewise/platewise/internal/costwatch/domain"
)

type scanCostsRequest struct {
	// Entries are expected most recent first, as the price history API
	// returns them.
	Entries []costwatchdomain.CostEntry `json:"entries"`
}

func (s *Server) ScanCosts(c *gin.Context) {
	if _, ok := s.resolveOrg(c); !ok {
		return
	}

	var req scanCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	flagged := s.costwatchSvc.Detect(req.Entries)
	c.JSON(http.StatusOK, gin.H{
		"flagged_ids": flagged,
		"scanned":     len(req.Entries),
	})
}
