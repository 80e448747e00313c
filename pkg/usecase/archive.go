package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

// DefaultExpiringSoonDays is the threshold used when none is requested
const DefaultExpiringSoonDays = 7

type ArchiveUseCase struct {
	repo interfaces.Repository
	labs *model.LabRegistry
	now  func() time.Time
}

func NewArchiveUseCase(repo interfaces.Repository, labs *model.LabRegistry, now func() time.Time) *ArchiveUseCase {
	return &ArchiveUseCase{
		repo: repo,
		labs: labs,
		now:  now,
	}
}

func (uc *ArchiveUseCase) Get(ctx context.Context, standupID model.StandupID) (*model.Transcript, error) {
	entry, err := uc.repo.Transcript().GetByStandupID(ctx, standupID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get transcript", goerr.V(types.StandupIDKey, standupID))
	}
	return entry, nil
}

// Search runs a case-insensitive content match over archived transcripts.
// Expired entries are excluded unless the query asks for them.
func (uc *ArchiveUseCase) Search(ctx context.Context, q *interfaces.SearchQuery) ([]*model.Transcript, int, error) {
	if q.Term == "" {
		return nil, 0, goerr.Wrap(types.ErrValidation, "search term is required")
	}
	if q.Now.IsZero() {
		q.Now = uc.now()
	}

	page, total, err := uc.repo.Transcript().Search(ctx, q)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "transcript search failed", goerr.V("term", q.Term))
	}
	return page, total, nil
}

// ExtendRetention pushes the expiry forward by days, additive on the current
// expiry date
func (uc *ArchiveUseCase) ExtendRetention(ctx context.Context, standupID model.StandupID, days int) (*model.Transcript, error) {
	if err := model.ValidateExtensionDays(days); err != nil {
		return nil, err
	}

	extended, err := uc.repo.Transcript().ExtendRetention(ctx, standupID, days)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extend retention",
			goerr.V(types.StandupIDKey, standupID),
			goerr.V("days", days))
	}
	return extended, nil
}

// ExpiringSoon lists entries whose expiry falls within the threshold window
func (uc *ArchiveUseCase) ExpiringSoon(ctx context.Context, labID string, daysThreshold int) ([]*model.Transcript, error) {
	if daysThreshold <= 0 {
		daysThreshold = DefaultExpiringSoonDays
	}

	now := uc.now()
	entries, err := uc.repo.Transcript().ListExpiring(ctx, labID, now, now.AddDate(0, 0, daysThreshold))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list expiring transcripts", goerr.V(types.LabIDKey, labID))
	}
	return entries, nil
}

func (uc *ArchiveUseCase) Stats(ctx context.Context, labID string) (*interfaces.TranscriptStats, error) {
	stats, err := uc.repo.Transcript().Stats(ctx, labID, uc.now())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compute archive stats", goerr.V(types.LabIDKey, labID))
	}
	return stats, nil
}

// Delete removes an archive entry and reports whether one existed
func (uc *ArchiveUseCase) Delete(ctx context.Context, standupID model.StandupID) (bool, error) {
	removed, err := uc.repo.Transcript().Delete(ctx, standupID)
	if err != nil {
		return false, goerr.Wrap(err, "failed to delete transcript", goerr.V(types.StandupIDKey, standupID))
	}
	return removed, nil
}

// Export renders the transcript plus its metadata as a markdown document
func (uc *ArchiveUseCase) Export(ctx context.Context, labID string, standupID model.StandupID) (string, error) {
	entry, err := uc.repo.Transcript().GetByStandupID(ctx, standupID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get transcript for export", goerr.V(types.StandupIDKey, standupID))
	}

	standup, err := uc.repo.Standup().Get(ctx, labID, standupID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get standup for export", goerr.V(types.StandupIDKey, standupID))
	}

	labName := entry.LabID
	if uc.labs != nil {
		if lab, err := uc.labs.Get(entry.LabID); err == nil {
			labName = lab.Name
		}
	}

	return renderExport(standup, entry, labName), nil
}

func renderExport(standup *model.Standup, entry *model.Transcript, labName string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Standup Transcript: %s\n\n", labName)
	fmt.Fprintf(&sb, "- Date: %s\n", standup.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "- Participants: %s\n", strings.Join(standup.Participants, ", "))
	fmt.Fprintf(&sb, "- Word count: %d\n", entry.WordCount)
	fmt.Fprintf(&sb, "- Archived: %s\n", entry.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "- Expires: %s\n", entry.ExpiresAt.Format(time.RFC3339))

	if standup.Analysis != nil {
		fmt.Fprintf(&sb, "\n## Summary\n\n%s\n", standup.Analysis.Summary)
	}

	fmt.Fprintf(&sb, "\n## Transcript\n\n%s\n", entry.Text)

	return sb.String()
}
