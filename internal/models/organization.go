package models

import "time"

// Organization is the owning unit for every plan customization. Rows are
// provisioned by the registration flow outside this service; the engine only
// checks existence.
type Organization struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
