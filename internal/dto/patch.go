package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format for all plan dates. Dates are date-only
// values; time of day is never stored.
const DateLayout = "2006-01-02"

// NullableString distinguishes an absent JSON field (leave the stored value
// untouched) from an explicit null (clear the stored value). The zero value
// means absent.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON records that the field was present, whether null or not.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// NullableDate carries an optional date-only value with the same
// absent/null/value semantics as NullableString.
type NullableDate struct {
	Set   bool
	Value *time.Time
}

// UnmarshalJSON parses a YYYY-MM-DD string or null.
func (n *NullableDate) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	n.Value = &parsed
	return nil
}

// ActionPatchRequest is the partial update body shared by template-action
// overrides and custom actions. Absent fields are left untouched; explicit
// nulls clear. An end date earlier than the start date is accepted as-is.
type ActionPatchRequest struct {
	Title           NullableString `json:"title"`
	Responsible     NullableString `json:"responsible"`
	StartDate       NullableDate   `json:"start_date"`
	EndDate         NullableDate   `json:"end_date"`
	HowItWillBeDone NullableString `json:"how_it_will_be_done"`
	Resources       NullableString `json:"resources"`
	Suppressed      *bool          `json:"suppressed"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p ActionPatchRequest) IsEmpty() bool {
	return !p.Title.Set && !p.Responsible.Set && !p.StartDate.Set && !p.EndDate.Set &&
		!p.HowItWillBeDone.Set && !p.Resources.Set && p.Suppressed == nil
}
