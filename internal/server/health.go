package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	healthservice "github.com/platewise/platewise/internal/modulehealth/service"
)

func (s *Server) GetModuleHealth(c *gin.Context) {
	org, ok := s.resolveOrg(c)
	if !ok {
		return
	}

	records, err := s.healthSvc.ScoreOrg(c.Request.Context(), org.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stalest := healthservice.Stalest(records)
	stalestKeys := make([]string, 0, len(stalest))
	for _, rec := range stalest {
		stalestKeys = append(stalestKeys, rec.ModuleKey)
	}

	c.JSON(http.StatusOK, gin.H{
		"overall_score":   healthservice.Overall(records),
		"modules":         records,
		"stalest":         stalestKeys,
		"recommendations": healthservice.Recommendations(records),
	})
}
