package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campoverde/plano-api/internal/models"
)

// CustomActionRepository defines persistence operations for organization-created
// actions. Listing order is creation time ascending with the id as tie-break,
// which keeps merged trees stable across reloads.
type CustomActionRepository interface {
	GetByID(ctx context.Context, id uint) (models.CustomAction, error)
	ListByOrganization(ctx context.Context, orgID uint) ([]models.CustomAction, error)
	Create(ctx context.Context, action *models.CustomAction) error
	Save(ctx context.Context, action *models.CustomAction) error
	Delete(ctx context.Context, id uint) error
}

type customActionRepository struct {
	db *gorm.DB
}

// NewCustomActionRepository instantiates a GORM-backed repository.
func NewCustomActionRepository(db *gorm.DB) CustomActionRepository {
	return &customActionRepository{db: db}
}

func (r *customActionRepository) GetByID(ctx context.Context, id uint) (models.CustomAction, error) {
	var action models.CustomAction
	if err := r.db.WithContext(ctx).First(&action, id).Error; err != nil {
		return models.CustomAction{}, err
	}

	return action, nil
}

func (r *customActionRepository) ListByOrganization(ctx context.Context, orgID uint) ([]models.CustomAction, error) {
	var actions []models.CustomAction
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at ASC, id ASC").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}

	return actions, nil
}

func (r *customActionRepository) Create(ctx context.Context, action *models.CustomAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *customActionRepository) Save(ctx context.Context, action *models.CustomAction) error {
	return r.db.WithContext(ctx).Save(action).Error
}

func (r *customActionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomAction{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
