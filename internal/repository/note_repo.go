package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campoverde/plano-api/internal/models"
)

// NoteRepository defines persistence for the two collaborative notes of an
// organization. Each write replaces the row in a single statement; the later
// writer wins.
type NoteRepository interface {
	Get(ctx context.Context, orgID uint, kind string) (models.CollaborativeNote, error)
	Save(ctx context.Context, note *models.CollaborativeNote) error
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository instantiates a GORM-backed repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Get(ctx context.Context, orgID uint, kind string) (models.CollaborativeNote, error) {
	var note models.CollaborativeNote
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND kind = ?", orgID, kind).
		First(&note).Error
	if err != nil {
		return models.CollaborativeNote{}, err
	}

	return note, nil
}

func (r *noteRepository) Save(ctx context.Context, note *models.CollaborativeNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}
