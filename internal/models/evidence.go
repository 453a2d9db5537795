package models

import "time"

// Evidence kinds accepted by the upload endpoint.
const (
	EvidenceTypePhoto          = "photo"
	EvidenceTypeAttendanceList = "attendance_list"
)

// Evidence is the metadata row for one uploaded proof-of-execution file. The
// byte payload lives in the external blob store, addressed by PublicID.
type Evidence struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	Type           string    `gorm:"size:32;not null" json:"type"`
	FileName       string    `gorm:"size:255;not null" json:"filename"`
	Description    *string   `gorm:"type:text" json:"description"`
	PublicID       string    `gorm:"size:255;not null" json:"-"`
	URL            string    `gorm:"size:512;not null" json:"url"`
	MimeType       string    `gorm:"size:64" json:"mime_type"`
	SizeBytes      int64     `json:"size_bytes"`
	UploadedBy     string    `gorm:"size:255" json:"uploaded_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsValidEvidenceType reports whether t names a known evidence kind.
func IsValidEvidenceType(t string) bool {
	return t == EvidenceTypePhoto || t == EvidenceTypeAttendanceList
}
