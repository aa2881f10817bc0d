package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// OperatingMode selects how module freshness is scored for a tenant.
// Integrated orgs sync POS/roster providers and report a per-module last-sync
// signal; standalone orgs are scored straight off their raw data tables.
type OperatingMode string

const (
	OperatingModeIntegrated OperatingMode = "integrated"
	OperatingModeStandalone OperatingMode = "standalone"
)

type Organization struct {
	ID            snowflake.ID  `gorm:"primaryKey"`
	Name          string        `gorm:"not null"`
	OperatingMode OperatingMode `gorm:"not null;default:standalone"`
	Active        bool          `gorm:"not null;default:true"`
	CreatedAt     time.Time     `gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime"`
}

func (Organization) TableName() string { return "organizations" }

var (
	ErrNotFound  = errors.New("organization_not_found")
	ErrInvalidID = errors.New("invalid_organization")
)
