package dto

import (
	"time"

	"github.com/campoverde/plano-api/internal/models"
)

// EvidenceResponse is the metadata of one uploaded evidence file.
type EvidenceResponse struct {
	ID          uint      `json:"id"`
	Type        string    `json:"type"`
	FileName    string    `json:"filename"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	MimeType    string    `json:"mime_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEvidenceResponse maps a persisted evidence row to its API shape.
func NewEvidenceResponse(e models.Evidence) EvidenceResponse {
	return EvidenceResponse{
		ID:          e.ID,
		Type:        e.Type,
		FileName:    e.FileName,
		Description: e.Description,
		URL:         e.URL,
		MimeType:    e.MimeType,
		SizeBytes:   e.SizeBytes,
		UploadedBy:  e.UploadedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// NewEvidenceResponseSlice maps a list of evidence rows.
func NewEvidenceResponseSlice(items []models.Evidence) []EvidenceResponse {
	responses := make([]EvidenceResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewEvidenceResponse(item))
	}
	return responses
}
