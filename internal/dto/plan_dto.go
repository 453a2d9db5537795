package dto

import "time"

// Action statuses derived for display.
const (
	StatusNotStarted = "not_started"
	StatusPending    = "pending"
	StatusCompleted  = "completed"
	StatusSuppressed = "suppressed"
)

// ActionResponse is one effective action in a merged plan tree. For
// template-backed actions the hint fields carry the catalog suggestions;
// editable fields stay null until the organization writes them.
type ActionResponse struct {
	Key             string  `json:"key"`
	Source          string  `json:"source"`
	Title           *string `json:"title"`
	Responsible     *string `json:"responsible"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	HowItWillBeDone *string `json:"how_it_will_be_done"`
	Resources       *string `json:"resources"`
	Suppressed      bool    `json:"suppressed"`
	Status          string  `json:"status"`
	HintTitle       string  `json:"hint_title,omitempty"`
	HintResponsible string  `json:"hint_responsible,omitempty"`
	HintHow         string  `json:"hint_how,omitempty"`
	HintResources   string  `json:"hint_resources,omitempty"`
}

// GroupResponse is one group of actions; Name is null for ungrouped actions.
type GroupResponse struct {
	Name    *string          `json:"name"`
	Actions []ActionResponse `json:"actions"`
}

// PlanResponse is one improvement dimension of the merged tree.
type PlanResponse struct {
	Type   string          `json:"type"`
	Title  string          `json:"title"`
	Groups []GroupResponse `json:"groups"`
}

// NoteResponse is one collaborative note with its audit stamp.
type NoteResponse struct {
	Text      *string    `json:"text"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NotesResponse groups the two collaborative notes of an organization.
type NotesResponse struct {
	Draft     NoteResponse `json:"draft"`
	Synthesis NoteResponse `json:"synthesis"`
}

// PlanViewResponse is the full read surface for one organization: every plan
// with effective actions and statuses, both notes and the evidence list.
type PlanViewResponse struct {
	OrganizationID uint               `json:"organization_id"`
	Plans          []PlanResponse     `json:"plans"`
	Notes          NotesResponse      `json:"notes"`
	Evidence       []EvidenceResponse `json:"evidence"`
}

// CustomActionCreateRequest creates an empty custom action in a plan/group.
type CustomActionCreateRequest struct {
	PlanType  string  `json:"plan_type" validate:"required"`
	GroupName *string `json:"group_name"`
}

// SuppressionRequest toggles an action's suppression flag, routed by key.
type SuppressionRequest struct {
	ActionKey  string `json:"action_key" validate:"required"`
	Suppressed *bool  `json:"suppressed" validate:"required"`
}

// NoteUpdateRequest overwrites one collaborative note in full.
type NoteUpdateRequest struct {
	Text *string `json:"text"`
}
