package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campoverde/plano-api/internal/models"
)

// OverrideRepository defines persistence operations for template-action
// overrides. At most one row exists per (organization, action definition).
type OverrideRepository interface {
	GetByAction(ctx context.Context, orgID uint, actionDefinitionID string) (models.ActionOverride, error)
	ListByOrganization(ctx context.Context, orgID uint) ([]models.ActionOverride, error)
	Save(ctx context.Context, override *models.ActionOverride) error
}

type overrideRepository struct {
	db *gorm.DB
}

// NewOverrideRepository instantiates a GORM-backed repository.
func NewOverrideRepository(db *gorm.DB) OverrideRepository {
	return &overrideRepository{db: db}
}

func (r *overrideRepository) GetByAction(ctx context.Context, orgID uint, actionDefinitionID string) (models.ActionOverride, error) {
	var override models.ActionOverride
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND action_definition_id = ?", orgID, actionDefinitionID).
		First(&override).Error
	if err != nil {
		return models.ActionOverride{}, err
	}

	return override, nil
}

func (r *overrideRepository) ListByOrganization(ctx context.Context, orgID uint) ([]models.ActionOverride, error) {
	var overrides []models.ActionOverride
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).Find(&overrides).Error; err != nil {
		return nil, err
	}

	return overrides, nil
}

func (r *overrideRepository) Save(ctx context.Context, override *models.ActionOverride) error {
	return r.db.WithContext(ctx).Save(override).Error
}
