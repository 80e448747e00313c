package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

// StandupID is a UUID-based identifier for Standup
type StandupID string

// NewStandupID generates a new UUID v4 StandupID
func NewStandupID() StandupID {
	return StandupID(uuid.New().String())
}

// Standup represents one recorded team status meeting instance.
// TranscriptID points at the paired transcript archive entry; Analysis is set
// only after a transcript has been attached.
type Standup struct {
	ID           StandupID
	LabID        string
	Date         time.Time
	Participants []string
	AudioRef     string // opaque locator into the audio store, empty until recording completes
	TranscriptID string
	Analysis     *AnalysisResult
	Status       types.StandupStatus
	DeletedAt    *time.Time // soft delete marker, physical deletion never happens here
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the standup has not been soft-deleted
func (s *Standup) Active() bool {
	return s.DeletedAt == nil
}

// HasTranscript reports whether a transcript archive entry is attached
func (s *Standup) HasTranscript() bool {
	return s.TranscriptID != ""
}

// Clone returns a deep copy of the standup
func (s *Standup) Clone() *Standup {
	copied := *s
	if s.Participants != nil {
		copied.Participants = make([]string, len(s.Participants))
		copy(copied.Participants, s.Participants)
	}
	if s.Analysis != nil {
		copied.Analysis = s.Analysis.Clone()
	}
	if s.DeletedAt != nil {
		deletedAt := *s.DeletedAt
		copied.DeletedAt = &deletedAt
	}
	return &copied
}

// ActionItem is a single follow-up extracted from a standup transcript
type ActionItem struct {
	Task     string
	Assignee string // empty when the transcript does not name anyone
}

// Blocker is a reported impediment with its severity
type Blocker struct {
	Issue    string
	Severity types.BlockerSeverity
}

// AnalysisResult is the structured insight extracted from a transcript.
// All slices are always non-nil on a successful analysis.
type AnalysisResult struct {
	Summary     string
	ActionItems []ActionItem
	Blockers    []Blocker
	Updates     []string
}

// EnsureDefaults replaces nil slices with empty ones and normalizes blocker
// severities. A degraded provider response yields empty fields, not a failure.
func (r *AnalysisResult) EnsureDefaults() {
	if r.ActionItems == nil {
		r.ActionItems = []ActionItem{}
	}
	if r.Blockers == nil {
		r.Blockers = []Blocker{}
	}
	if r.Updates == nil {
		r.Updates = []string{}
	}
	for i := range r.Blockers {
		r.Blockers[i].Severity = r.Blockers[i].Severity.Normalize()
	}
}

// Clone returns a deep copy of the analysis result
func (r *AnalysisResult) Clone() *AnalysisResult {
	copied := &AnalysisResult{Summary: r.Summary}
	if r.ActionItems != nil {
		copied.ActionItems = make([]ActionItem, len(r.ActionItems))
		copy(copied.ActionItems, r.ActionItems)
	}
	if r.Blockers != nil {
		copied.Blockers = make([]Blocker, len(r.Blockers))
		copy(copied.Blockers, r.Blockers)
	}
	if r.Updates != nil {
		copied.Updates = make([]string, len(r.Updates))
		copy(copied.Updates, r.Updates)
	}
	return copied
}
