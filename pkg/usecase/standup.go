package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/utils/logging"
)

type StandupUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func NewStandupUseCase(repo interfaces.Repository, now func() time.Time) *StandupUseCase {
	return &StandupUseCase{
		repo: repo,
		now:  now,
	}
}

// Create schedules a new standup. The date defaults to the current time.
func (uc *StandupUseCase) Create(ctx context.Context, labID string, date *time.Time, participants []string) (*model.Standup, error) {
	if labID == "" {
		return nil, goerr.Wrap(types.ErrValidation, "lab ID is required")
	}

	standup := &model.Standup{
		Participants: participants,
	}
	if date != nil {
		standup.Date = *date
	} else {
		standup.Date = uc.now()
	}

	created, err := uc.repo.Standup().Create(ctx, labID, standup)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create standup", goerr.V(types.LabIDKey, labID))
	}

	logging.From(ctx).Info("standup created",
		"standupID", created.ID,
		"labID", labID)

	return created, nil
}

func (uc *StandupUseCase) Get(ctx context.Context, labID string, id model.StandupID) (*model.Standup, error) {
	standup, err := uc.repo.Standup().Get(ctx, labID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get standup", goerr.V(types.StandupIDKey, id))
	}
	return standup, nil
}

func (uc *StandupUseCase) List(ctx context.Context, labID string, opts ...interfaces.ListStandupOption) ([]*model.Standup, error) {
	standups, err := uc.repo.Standup().List(ctx, labID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list standups", goerr.V(types.LabIDKey, labID))
	}
	return standups, nil
}

// StandupUpdate carries the mutable fields of an update request. Nil fields
// are left untouched.
type StandupUpdate struct {
	Date         *time.Time
	Participants *[]string
}

// Update applies ordinary field changes. Status transitions go through
// AttachTranscript, AttachAnalysis and Cancel instead. The repository writes
// only the patched fields, so a concurrent transition is never overwritten.
func (uc *StandupUseCase) Update(ctx context.Context, labID string, id model.StandupID, update StandupUpdate) (*model.Standup, error) {
	updated, err := uc.repo.Standup().Update(ctx, labID, id, interfaces.StandupPatch{
		Date:         update.Date,
		Participants: update.Participants,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update standup", goerr.V(types.StandupIDKey, id))
	}
	return updated, nil
}

// Cancel moves the standup to Cancelled. Valid from any non-terminal state.
// The check-and-set runs inside the repository so a transcript attached
// concurrently keeps its link on the cancelled standup.
func (uc *StandupUseCase) Cancel(ctx context.Context, labID string, id model.StandupID) (*model.Standup, error) {
	updated, err := uc.repo.Standup().Cancel(ctx, labID, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to cancel standup", goerr.V(types.StandupIDKey, id))
	}
	return updated, nil
}

// Delete soft-deletes the standup. Rejected while processing is in flight.
func (uc *StandupUseCase) Delete(ctx context.Context, labID string, id model.StandupID) error {
	if err := uc.repo.Standup().SoftDelete(ctx, labID, id, uc.now()); err != nil {
		return goerr.Wrap(err, "failed to delete standup", goerr.V(types.StandupIDKey, id))
	}
	return nil
}

// AttachTranscript archives the transcript and transitions the standup to
// Processing. The archive entry and the transition succeed or fail together:
// when the transition loses a race, the freshly saved entry is rolled back.
func (uc *StandupUseCase) AttachTranscript(ctx context.Context, labID string, id model.StandupID, text, audioRef string, retentionDays int) (*model.Standup, *model.Transcript, error) {
	if retentionDays <= 0 {
		retentionDays = model.DefaultRetentionDays
	}

	standup, err := uc.repo.Standup().Get(ctx, labID, id)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to get standup for transcript", goerr.V(types.StandupIDKey, id))
	}
	if standup.HasTranscript() {
		return nil, nil, goerr.Wrap(types.ErrAlreadyProcessed, "standup already has a transcript",
			goerr.V(types.StandupIDKey, id))
	}

	now := uc.now()
	entry := &model.Transcript{
		StandupID: id,
		LabID:     labID,
		Text:      text,
		WordCount: model.CountWords(text),
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, retentionDays),
	}

	saved, err := uc.repo.Transcript().Save(ctx, entry)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to archive transcript", goerr.V(types.StandupIDKey, id))
	}

	updated, err := uc.repo.Standup().AttachTranscript(ctx, labID, id, string(id), audioRef)
	if err != nil {
		// roll back the archive entry so the pair stays all-or-nothing
		if _, delErr := uc.repo.Transcript().Delete(ctx, id); delErr != nil {
			logging.From(ctx).Error("failed to roll back transcript after attach failure",
				"standupID", id,
				"error", delErr)
		}
		return nil, nil, goerr.Wrap(err, "failed to attach transcript", goerr.V(types.StandupIDKey, id))
	}

	return updated, saved, nil
}

// AttachAnalysis stores the analysis result and completes the standup
func (uc *StandupUseCase) AttachAnalysis(ctx context.Context, labID string, id model.StandupID, result *model.AnalysisResult) (*model.Standup, error) {
	updated, err := uc.repo.Standup().AttachAnalysis(ctx, labID, id, result)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to attach analysis", goerr.V(types.StandupIDKey, id))
	}

	logging.From(ctx).Info("standup analysis attached",
		"standupID", id,
		"actionItems", len(updated.Analysis.ActionItems),
		"blockers", len(updated.Analysis.Blockers))

	return updated, nil
}
