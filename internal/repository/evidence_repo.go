package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campoverde/plano-api/internal/models"
)

// EvidenceRepository defines persistence for evidence metadata rows. Listing
// is newest first.
type EvidenceRepository interface {
	GetByID(ctx context.Context, id uint) (models.Evidence, error)
	ListByOrganization(ctx context.Context, orgID uint) ([]models.Evidence, error)
	Create(ctx context.Context, evidence *models.Evidence) error
	Delete(ctx context.Context, id uint) error
}

type evidenceRepository struct {
	db *gorm.DB
}

// NewEvidenceRepository instantiates a GORM-backed repository.
func NewEvidenceRepository(db *gorm.DB) EvidenceRepository {
	return &evidenceRepository{db: db}
}

func (r *evidenceRepository) GetByID(ctx context.Context, id uint) (models.Evidence, error) {
	var evidence models.Evidence
	if err := r.db.WithContext(ctx).First(&evidence, id).Error; err != nil {
		return models.Evidence{}, err
	}

	return evidence, nil
}

func (r *evidenceRepository) ListByOrganization(ctx context.Context, orgID uint) ([]models.Evidence, error) {
	var items []models.Evidence
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *evidenceRepository) Create(ctx context.Context, evidence *models.Evidence) error {
	return r.db.WithContext(ctx).Create(evidence).Error
}

func (r *evidenceRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Evidence{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
