package model

import (
	"time"

	"github.com/google/uuid"
)

// EmailLogID is a UUID-based identifier for EmailLog
type EmailLogID string

// NewEmailLogID generates a new UUID v4 EmailLogID
func NewEmailLogID() EmailLogID {
	return EmailLogID(uuid.New().String())
}

// EmailLog is an append-only record of one summary email dispatch. It exists
// to answer "was a summary for this standup sent within the trailing window"
// and is never mutated after creation.
type EmailLog struct {
	ID         EmailLogID
	StandupID  StandupID
	LabID      string
	Recipients []string
	MessageID  string // provider-assigned identifier
	SentAt     time.Time
}

// Clone returns a deep copy of the email log entry
func (e *EmailLog) Clone() *EmailLog {
	copied := *e
	if e.Recipients != nil {
		copied.Recipients = make([]string, len(e.Recipients))
		copy(copied.Recipients, e.Recipients)
	}
	return &copied
}
