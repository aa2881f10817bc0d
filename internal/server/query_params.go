package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	organizationdomain "github.com/platewise/platewise/internal/organization/domain"
)

func parseSnowflakeID(value string) (snowflake.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrInvalidRequest
	}
	id, err := snowflake.ParseString(value)
	if err != nil || id == 0 {
		return 0, ErrInvalidRequest
	}
	return id, nil
}

// resolveOrg parses the org_id path param and confirms the organization
// exists. Aborts the request on failure; callers must return when ok is
// false.
func (s *Server) resolveOrg(c *gin.Context) (*organizationdomain.Organization, bool) {
	orgID, err := parseSnowflakeID(c.Param("org_id"))
	if err != nil {
		AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid org id"))
		return nil, false
	}

	org, err := s.orgs.FindByID(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return org, true
}
