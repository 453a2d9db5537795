package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campoverde/plano-api/internal/models"
)

// OrganizationRepository exposes the minimal organization lookups the plan
// engine needs. Organization CRUD lives in a separate service.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id uint) (models.Organization, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type organizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository instantiates a GORM-backed repository.
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) GetByID(ctx context.Context, id uint) (models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return models.Organization{}, err
	}

	return org, nil
}

func (r *organizationRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
