package interfaces

import (
	"context"
	"time"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
)

// SearchQuery describes a transcript archive search
type SearchQuery struct {
	Term           string
	LabID          string // empty searches all labs
	Limit          int
	Offset         int
	IncludeExpired bool
	Now            time.Time // expiry cutoff reference when IncludeExpired is false
}

// TranscriptStats is an aggregate over archive entries
type TranscriptStats struct {
	TotalCount   int
	ExpiredCount int
	TotalWords   int64
	TotalBytes   int64
}

// TranscriptRepository defines the interface for transcript archive access.
// Save must enforce the one-to-one invariant with Standup atomically: for
// concurrent saves of the same standup ID exactly one wins, the rest observe
// types.ErrAlreadyExists.
type TranscriptRepository interface {
	// Save stores a new archive entry keyed by the owning standup ID
	Save(ctx context.Context, t *model.Transcript) (*model.Transcript, error)

	// GetByStandupID retrieves the archive entry of a standup
	GetByStandupID(ctx context.Context, standupID model.StandupID) (*model.Transcript, error)

	// ExtendRetention pushes ExpiresAt forward by the given number of days,
	// additive on the current expiry. The read-modify-write is atomic.
	ExtendRetention(ctx context.Context, standupID model.StandupID, days int) (*model.Transcript, error)

	// Search performs a case-insensitive content match, paginated, ordered by
	// CreatedAt descending. Returns the page and the total match count.
	Search(ctx context.Context, q *SearchQuery) ([]*model.Transcript, int, error)

	// ListExpiring returns entries whose ExpiresAt falls within [from, to]
	ListExpiring(ctx context.Context, labID string, from, to time.Time) ([]*model.Transcript, error)

	// ListExpired returns entries with ExpiresAt <= now, across all labs
	ListExpired(ctx context.Context, now time.Time) ([]*model.Transcript, error)

	// Stats aggregates archive counts and sizes, optionally scoped to one lab
	Stats(ctx context.Context, labID string, now time.Time) (*TranscriptStats, error)

	// Delete removes an entry and reports whether one was actually removed.
	// Deleting an absent entry is not an error.
	Delete(ctx context.Context, standupID model.StandupID) (bool, error)
}
