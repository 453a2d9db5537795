package service

import (
	"time"

	"github.com/campoverde/plano-api/internal/dto"
)

// civilDate collapses a timestamp to its calendar day, comparable with <.
// Stored plan dates are date-only values, so they are read without zone
// conversion; only "today" is evaluated in the deployment time zone.
func civilDate(t time.Time) int {
	year, month, day := t.Date()
	return year*10000 + int(month)*100 + day
}

// deriveStatus maps an effective action's suppression flag and dates to its
// display status. Suppression wins over everything; an action is completed
// only when both dates are set and the end date is strictly before today.
func deriveStatus(suppressed bool, start, end *time.Time, today time.Time) string {
	if suppressed {
		return dto.StatusSuppressed
	}
	if start == nil && end == nil {
		return dto.StatusNotStarted
	}
	if start != nil && end != nil && civilDate(*end) < civilDate(today) {
		return dto.StatusCompleted
	}
	return dto.StatusPending
}
