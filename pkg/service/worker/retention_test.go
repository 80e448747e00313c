package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/repository/memory"
	"github.com/beakerhub/beakerhub/pkg/service/worker"
)

func saveTranscript(t *testing.T, repo *memory.Repository, labID string, createdAt time.Time) *model.Transcript {
	t.Helper()

	tr := &model.Transcript{
		StandupID: model.NewStandupID(),
		LabID:     labID,
		Text:      "some notes",
		WordCount: 2,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.AddDate(0, 0, model.DefaultRetentionDays),
	}
	_, err := repo.Transcript().Save(context.Background(), tr)
	gt.NoError(t, err).Required()
	return tr
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	saveTranscript(t, repo, "lab-1", now.AddDate(0, 0, -40))
	saveTranscript(t, repo, "lab-1", now.AddDate(0, 0, -35))
	kept := saveTranscript(t, repo, "lab-1", now)

	w := worker.NewRetentionWorker(repo, time.Hour, worker.WithNowFunc(func() time.Time { return now }))

	result, err := w.RunOnce(ctx)
	gt.NoError(t, err).Required()

	gt.Number(t, result.DeletedCount).Equal(2)
	gt.Array(t, result.Errors).Length(0)

	_, err = repo.Transcript().GetByStandupID(ctx, kept.StandupID)
	gt.NoError(t, err)

	status := w.Status()
	gt.Bool(t, status.TimerActive).False()
	gt.Value(t, status.LastRun).Equal(now)
	gt.Value(t, status.LastResult).NotNil()
}

func TestRunOnceEmptyPass(t *testing.T) {
	repo := memory.New()
	w := worker.NewRetentionWorker(repo, time.Hour)

	result, err := w.RunOnce(context.Background())
	gt.NoError(t, err).Required()
	gt.Number(t, result.DeletedCount).Equal(0)
	gt.Array(t, result.Errors).Length(0)
}

// slowTranscripts blocks ListExpired until released, to hold a pass in flight
type slowTranscripts struct {
	interfaces.TranscriptRepository
	entered chan struct{}
	release chan struct{}
}

func (s *slowTranscripts) ListExpired(ctx context.Context, now time.Time) ([]*model.Transcript, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.TranscriptRepository.ListExpired(ctx, now)
}

type slowRepo struct {
	interfaces.Repository
	transcripts *slowTranscripts
}

func (r *slowRepo) Transcript() interfaces.TranscriptRepository { return r.transcripts }

func TestReentrancyGuard(t *testing.T) {
	base := memory.New()
	transcripts := &slowTranscripts{
		TranscriptRepository: base.Transcript(),
		entered:              make(chan struct{}),
		release:              make(chan struct{}),
	}
	repo := &slowRepo{Repository: base, transcripts: transcripts}

	w := worker.NewRetentionWorker(repo, time.Hour)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := w.RunOnce(context.Background())
		gt.NoError(t, err)
	}()

	// wait until the first pass is inside ListExpired
	<-transcripts.entered

	_, err := w.RunOnce(context.Background())
	gt.Value(t, err).NotNil()

	close(transcripts.release)
	wg.Wait()
}

func TestStartStop(t *testing.T) {
	repo := memory.New()
	w := worker.NewRetentionWorker(repo, 10*time.Millisecond)

	gt.NoError(t, w.Start(context.Background())).Required()
	gt.Bool(t, w.Status().TimerActive).True()

	gt.Value(t, w.Start(context.Background())).NotNil()

	time.Sleep(50 * time.Millisecond)

	w.Stop()
	gt.Bool(t, w.Status().TimerActive).False()

	// Stop is idempotent
	w.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	w := worker.NewRetentionWorker(memory.New(), time.Hour)
	w.Stop()
	w.Stop()
	gt.Bool(t, w.Status().TimerActive).False()
}

func TestTimerDrivenPass(t *testing.T) {
	repo := memory.New()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	saveTranscript(t, repo, "lab-1", now.AddDate(0, 0, -40))

	w := worker.NewRetentionWorker(repo, 10*time.Millisecond, worker.WithNowFunc(func() time.Time { return now }))
	gt.NoError(t, w.Start(context.Background())).Required()
	defer w.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := w.Status(); st.LastResult != nil && st.LastResult.DeletedCount == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timer never produced a cleanup pass")
}
