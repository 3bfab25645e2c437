package types

import (
	"time"

	"github.com/google/uuid"
)

// ActivityCategory groups narration entries for display.
type ActivityCategory string

const (
	ActivityAnalysis ActivityCategory = "ANALYSIS"
	ActivitySignal   ActivityCategory = "SIGNAL"
	ActivityResult   ActivityCategory = "RESULT"
	ActivityUpdate   ActivityCategory = "UPDATE"
	ActivitySummary  ActivityCategory = "SUMMARY"
)

// ActivityLogEntry is an append-only, human readable narration line.
type ActivityLogEntry struct {
	ID        string           `json:"id" yaml:"id"`
	AccountID string           `json:"account_id" yaml:"account_id"`
	Timestamp time.Time        `json:"timestamp" yaml:"timestamp"`
	Message   string           `json:"message" yaml:"message"`
	Category  ActivityCategory `json:"category" yaml:"category"`
}

// NewActivity creates an entry with a fresh id.
func NewActivity(accountID string, category ActivityCategory, message string, at time.Time) ActivityLogEntry {
	return ActivityLogEntry{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Timestamp: at,
		Message:   message,
		Category:  category,
	}
}
