package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	snapshotdomain "github.com/platewise/platewise/internal/snapshot/domain"
	snapshotservice "github.com/platewise/platewise/internal/snapshot/service"
)

type generateSnapshotRequest struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	PeriodType  string `json:"period_type"`
}

const dateLayout = "2006-01-02"

func (s *Server) GenerateSnapshot(c *gin.Context) {
	org, ok := s.resolveOrg(c)
	if !ok {
		return
	}

	var req generateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	periodStart, err := time.Parse(dateLayout, strings.TrimSpace(req.PeriodStart))
	if err != nil {
		AbortWithError(c, newValidationError("period_start", "invalid_period", "expected YYYY-MM-DD"))
		return
	}
	periodEnd, err := time.Parse(dateLayout, strings.TrimSpace(req.PeriodEnd))
	if err != nil {
		AbortWithError(c, newValidationError("period_end", "invalid_period", "expected YYYY-MM-DD"))
		return
	}

	periodType := strings.ToLower(strings.TrimSpace(req.PeriodType))
	if periodType == "" {
		periodType = snapshotdomain.PeriodTypeDaily
	}

	snap, err := s.snapshotSvc.Generate(c.Request.Context(), snapshotservice.GenerateRequest{
		OrgID:       org.ID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		PeriodType:  periodType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

func (s *Server) GetLatestSnapshot(c *gin.Context) {
	org, ok := s.resolveOrg(c)
	if !ok {
		return
	}

	snap, err := s.snapshotSvc.Latest(c.Request.Context(), org.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if snap == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}
