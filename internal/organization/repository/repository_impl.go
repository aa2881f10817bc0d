package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/organization/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB *gorm.DB
}

type Repository struct {
	db *gorm.DB
}

func Provide(p Params) *Repository {
	return &Repository{db: p.DB}
}

func (r *Repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	var org domain.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *Repository) ListActiveIDs(ctx context.Context, limit int) ([]snowflake.ID, error) {
	if limit <= 0 {
		limit = 50
	}
	var ids []snowflake.ID
	if err := r.db.WithContext(ctx).Raw(
		`SELECT id FROM organizations WHERE active = ? ORDER BY id ASC LIMIT ?`,
		true,
		limit,
	).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
