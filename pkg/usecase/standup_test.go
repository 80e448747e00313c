package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/repository/memory"
	"github.com/beakerhub/beakerhub/pkg/usecase"
)

var testNow = time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)

func newUseCases(opts ...usecase.Option) *usecase.UseCases {
	base := []usecase.Option{usecase.WithNowFunc(func() time.Time { return testNow })}
	return usecase.New(memory.New(), append(base, opts...)...)
}

func TestStandupCreate(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases()

	t.Run("date defaults to now", func(t *testing.T) {
		created, err := uc.Standup.Create(ctx, "lab-1", nil, []string{"alice"})
		gt.NoError(t, err).Required()
		gt.Value(t, created.Date).Equal(testNow)
		gt.Value(t, created.Status).Equal(types.StandupStatusScheduled)
	})

	t.Run("explicit date wins", func(t *testing.T) {
		date := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
		created, err := uc.Standup.Create(ctx, "lab-1", &date, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, created.Date).Equal(date)
	})

	t.Run("lab ID is required", func(t *testing.T) {
		_, err := uc.Standup.Create(ctx, "", nil, nil)
		gt.Value(t, err).NotNil()
	})
}

func TestStandupUpdate(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases()

	created, err := uc.Standup.Create(ctx, "lab-1", nil, []string{"alice"})
	gt.NoError(t, err).Required()

	participants := []string{"alice", "bob"}
	updated, err := uc.Standup.Update(ctx, "lab-1", created.ID, usecase.StandupUpdate{
		Participants: &participants,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, updated.Participants).Length(2)
	gt.Value(t, updated.Date).Equal(created.Date)
}

func TestStandupCancel(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases()

	created, err := uc.Standup.Create(ctx, "lab-1", nil, nil)
	gt.NoError(t, err).Required()

	cancelled, err := uc.Standup.Cancel(ctx, "lab-1", created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, cancelled.Status).Equal(types.StandupStatusCancelled)

	// cancelling a terminal standup fails
	_, err = uc.Standup.Cancel(ctx, "lab-1", created.ID)
	gt.Bool(t, errors.Is(err, types.ErrInvalidState)).True()
}

func TestCancelAfterAttachKeepsTranscript(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases()

	created, err := uc.Standup.Create(ctx, "lab-1", nil, nil)
	gt.NoError(t, err).Required()

	_, _, err = uc.Standup.AttachTranscript(ctx, "lab-1", created.ID, "we shipped", "", 0)
	gt.NoError(t, err).Required()

	// a cancel landing after the attach must not erase the transcript link
	cancelled, err := uc.Standup.Cancel(ctx, "lab-1", created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, cancelled.Status).Equal(types.StandupStatusCancelled)
	gt.Value(t, cancelled.TranscriptID).Equal(string(created.ID))

	archived, err := uc.Archive.Get(ctx, created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, archived.StandupID).Equal(created.ID)
}

func TestAttachTranscript(t *testing.T) {
	ctx := context.Background()

	t.Run("archives and transitions together", func(t *testing.T) {
		uc := newUseCases()
		created, err := uc.Standup.Create(ctx, "lab-1", nil, nil)
		gt.NoError(t, err).Required()

		standup, transcript, err := uc.Standup.AttachTranscript(ctx, "lab-1", created.ID,
			"yesterday we shipped the tracker", "audio/ref.wav", 0)
		gt.NoError(t, err).Required()

		gt.Value(t, standup.Status).Equal(types.StandupStatusProcessing)
		gt.Value(t, standup.AudioRef).Equal("audio/ref.wav")
		gt.Value(t, transcript.WordCount).Equal(5)
		gt.Value(t, transcript.ExpiresAt).Equal(testNow.AddDate(0, 0, model.DefaultRetentionDays))

		archived, err := uc.Archive.Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, archived.Text).Equal("yesterday we shipped the tracker")
	})

	t.Run("second attach is rejected", func(t *testing.T) {
		uc := newUseCases()
		created, err := uc.Standup.Create(ctx, "lab-1", nil, nil)
		gt.NoError(t, err).Required()

		_, _, err = uc.Standup.AttachTranscript(ctx, "lab-1", created.ID, "first", "", 0)
		gt.NoError(t, err).Required()

		_, _, err = uc.Standup.AttachTranscript(ctx, "lab-1", created.ID, "second", "", 0)
		gt.Bool(t, errors.Is(err, types.ErrAlreadyProcessed)).True()
	})

	t.Run("missing standup", func(t *testing.T) {
		uc := newUseCases()
		_, _, err := uc.Standup.AttachTranscript(ctx, "lab-1", model.NewStandupID(), "text", "", 0)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("cancelled standup rolls back the archive entry", func(t *testing.T) {
		uc := newUseCases()
		created, err := uc.Standup.Create(ctx, "lab-1", nil, nil)
		gt.NoError(t, err).Required()

		_, err = uc.Standup.Cancel(ctx, "lab-1", created.ID)
		gt.NoError(t, err).Required()

		_, _, err = uc.Standup.AttachTranscript(ctx, "lab-1", created.ID, "text", "", 0)
		gt.Bool(t, errors.Is(err, types.ErrInvalidState)).True()

		_, err = uc.Archive.Get(ctx, created.ID)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})
}

func TestAttachAnalysis(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases()

	created, err := uc.Standup.Create(ctx, "lab-1", nil, nil)
	gt.NoError(t, err).Required()

	_, _, err = uc.Standup.AttachTranscript(ctx, "lab-1", created.ID, "text", "", 0)
	gt.NoError(t, err).Required()

	completed, err := uc.Standup.AttachAnalysis(ctx, "lab-1", created.ID, &model.AnalysisResult{
		Summary: "all fine",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, completed.Status).Equal(types.StandupStatusCompleted)
	gt.Bool(t, completed.Analysis.ActionItems == nil).False()
	gt.Array(t, completed.Analysis.ActionItems).Length(0)
}

func TestStandupDelete(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases()

	created, err := uc.Standup.Create(ctx, "lab-1", nil, nil)
	gt.NoError(t, err).Required()

	_, _, err = uc.Standup.AttachTranscript(ctx, "lab-1", created.ID, "text", "", 0)
	gt.NoError(t, err).Required()

	// delete is rejected while processing
	err = uc.Standup.Delete(ctx, "lab-1", created.ID)
	gt.Bool(t, errors.Is(err, types.ErrConflict)).True()

	_, err = uc.Standup.AttachAnalysis(ctx, "lab-1", created.ID, &model.AnalysisResult{})
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Standup.Delete(ctx, "lab-1", created.ID))

	got, err := uc.Standup.Get(ctx, "lab-1", created.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, got.Active()).False()
}
