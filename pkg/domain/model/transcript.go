package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

const (
	// DefaultRetentionDays is the retention window applied at creation
	DefaultRetentionDays = 30

	// MinExtensionDays and MaxExtensionDays bound a single retention extension
	MinExtensionDays = 1
	MaxExtensionDays = 365
)

// Transcript is a retained transcript archive entry. It is owned one-to-one
// by a Standup but lifecycled independently: the retention cleanup worker
// physically deletes it once ExpiresAt has passed.
type Transcript struct {
	StandupID StandupID
	LabID     string
	Text      string
	WordCount int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Validate checks the archive entry invariants
func (t *Transcript) Validate() error {
	if t.StandupID == "" {
		return goerr.New("transcript standup ID is required")
	}
	if t.LabID == "" {
		return goerr.New("transcript lab ID is required")
	}
	if !t.ExpiresAt.After(t.CreatedAt) {
		return goerr.New("transcript expiry must be after creation",
			goerr.V("created_at", t.CreatedAt),
			goerr.V("expires_at", t.ExpiresAt))
	}
	return nil
}

// Expired reports whether the entry is past its retention window at now
func (t *Transcript) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Clone returns a copy of the transcript entry
func (t *Transcript) Clone() *Transcript {
	copied := *t
	return &copied
}

// CountWords counts whitespace-separated words in transcript text
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ValidateExtensionDays checks a retention extension request against the
// allowed range
func ValidateExtensionDays(days int) error {
	if days < MinExtensionDays || days > MaxExtensionDays {
		return goerr.Wrap(types.ErrValidation, "retention extension out of range",
			goerr.V("days", days),
			goerr.V("min", MinExtensionDays),
			goerr.V("max", MaxExtensionDays))
	}
	return nil
}
