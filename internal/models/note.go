package models

import "time"

// Note kinds. Each organization holds at most one note per kind.
const (
	NoteKindDraft     = "draft"
	NoteKindSynthesis = "synthesis"
)

// CollaborativeNote is a free-text field shared by an organization's
// coordinators. Writes overwrite in place; no history is kept.
type CollaborativeNote struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;uniqueIndex:idx_note_org_kind" json:"organization_id"`
	Kind           string    `gorm:"size:32;not null;uniqueIndex:idx_note_org_kind" json:"kind"`
	Text           *string   `gorm:"type:text" json:"text"`
	UpdatedBy      string    `gorm:"size:255" json:"updated_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsValidNoteKind reports whether kind names a known collaborative note.
func IsValidNoteKind(kind string) bool {
	return kind == NoteKindDraft || kind == NoteKindSynthesis
}
