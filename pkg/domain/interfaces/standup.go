package interfaces

import (
	"context"
	"time"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
)

// StandupPatch carries the mutable fields of an update. Nil fields are left
// untouched.
type StandupPatch struct {
	Date         *time.Time
	Participants *[]string
}

// StandupRepository defines the interface for Standup data access.
// Update, Cancel, AttachTranscript and AttachAnalysis must be applied
// atomically per standup: when two callers race the same transition, exactly
// one wins and the loser observes types.ErrAlreadyProcessed /
// types.ErrInvalidState.
type StandupRepository interface {
	// Create creates a new standup, generating an ID when absent
	Create(ctx context.Context, labID string, s *model.Standup) (*model.Standup, error)

	// Get retrieves a standup by ID. Soft-deleted standups are still returned;
	// callers decide whether they care.
	Get(ctx context.Context, labID string, id model.StandupID) (*model.Standup, error)

	// List retrieves standups of a lab with optional filtering
	List(ctx context.Context, labID string, opts ...ListStandupOption) ([]*model.Standup, error)

	// Update applies the patch to an existing standup. Only the patched
	// fields are written; status, transcript link and analysis are never
	// touched here.
	Update(ctx context.Context, labID string, id model.StandupID, patch StandupPatch) (*model.Standup, error)

	// Cancel transitions the standup to Cancelled. Valid from any
	// non-terminal state; all other fields are left as stored.
	Cancel(ctx context.Context, labID string, id model.StandupID) (*model.Standup, error)

	// AttachTranscript records the transcript reference and audio locator and
	// transitions the standup to Processing. Valid only from Scheduled or
	// InProgress with no transcript attached yet.
	AttachTranscript(ctx context.Context, labID string, id model.StandupID, transcriptID string, audioRef string) (*model.Standup, error)

	// AttachAnalysis stores the analysis result and transitions the standup to
	// Completed. Valid only from Processing.
	AttachAnalysis(ctx context.Context, labID string, id model.StandupID, result *model.AnalysisResult) (*model.Standup, error)

	// SoftDelete flags the standup inactive. Rejected with types.ErrConflict
	// while the standup is Processing.
	SoftDelete(ctx context.Context, labID string, id model.StandupID, at time.Time) error
}
