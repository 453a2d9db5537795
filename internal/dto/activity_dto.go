package dto

import "time"

// Activity verbs published after successful plan mutations.
const (
	ActivityOverrideUpdated    = "override_updated"
	ActivityCustomCreated      = "custom_action_created"
	ActivityCustomUpdated      = "custom_action_updated"
	ActivityCustomDeleted      = "custom_action_deleted"
	ActivitySuppressionChanged = "suppression_changed"
	ActivityNoteUpdated        = "note_updated"
	ActivityEvidenceUploaded   = "evidence_uploaded"
	ActivityEvidenceDeleted    = "evidence_deleted"
)

// ActivityEvent is the audit record broadcast on every plan mutation. It is
// best-effort: consumers must not rely on delivery.
type ActivityEvent struct {
	OrganizationID uint      `json:"organization_id"`
	Verb           string    `json:"verb"`
	ActionKey      string    `json:"action_key,omitempty"`
	NoteKind       string    `json:"note_kind,omitempty"`
	EvidenceID     uint      `json:"evidence_id,omitempty"`
	Actor          string    `json:"actor,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
