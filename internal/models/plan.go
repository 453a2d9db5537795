package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActionOverride stores an organization's edits to one template action. The
// row is created lazily on the first edit and is never deleted afterwards,
// even when every field is cleared back to null.
type ActionOverride struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	OrganizationID     uint            `gorm:"not null;uniqueIndex:idx_override_org_action" json:"organization_id"`
	ActionDefinitionID string          `gorm:"size:64;not null;uniqueIndex:idx_override_org_action" json:"action_definition_id"`
	Title              *string         `gorm:"size:512" json:"title"`
	Responsible        *string         `gorm:"size:255" json:"responsible"`
	StartDate          *datatypes.Date `json:"start_date"`
	EndDate            *datatypes.Date `json:"end_date"`
	HowItWillBeDone    *string         `gorm:"type:text" json:"how_it_will_be_done"`
	Resources          *string         `gorm:"type:text" json:"resources"`
	Suppressed         bool            `gorm:"not null;default:false" json:"suppressed"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// CustomAction is an action created ad hoc by one organization, not backed by
// any template entry. Deleting it is a hard delete.
type CustomAction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrganizationID  uint            `gorm:"not null;index" json:"organization_id"`
	PlanType        string          `gorm:"size:64;not null;index" json:"plan_type"`
	GroupName       *string         `gorm:"size:255" json:"group_name"`
	Title           *string         `gorm:"size:512" json:"title"`
	Responsible     *string         `gorm:"size:255" json:"responsible"`
	StartDate       *datatypes.Date `json:"start_date"`
	EndDate         *datatypes.Date `json:"end_date"`
	HowItWillBeDone *string         `gorm:"type:text" json:"how_it_will_be_done"`
	Resources       *string         `gorm:"type:text" json:"resources"`
	Suppressed      bool            `gorm:"not null;default:false" json:"suppressed"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
