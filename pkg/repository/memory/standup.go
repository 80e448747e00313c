package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

type standupRepository struct {
	mu       sync.RWMutex
	standups map[model.StandupID]*model.Standup
}

func newStandupRepository() *standupRepository {
	return &standupRepository{
		standups: make(map[model.StandupID]*model.Standup),
	}
}

// get returns the stored standup scoped to the lab. Caller holds the lock.
func (r *standupRepository) get(labID string, id model.StandupID) (*model.Standup, error) {
	s, exists := r.standups[id]
	if !exists || s.LabID != labID {
		return nil, goerr.Wrap(types.ErrNotFound, "standup not found",
			goerr.V(types.LabIDKey, labID), goerr.V(types.StandupIDKey, id))
	}
	return s, nil
}

func (r *standupRepository) Create(ctx context.Context, labID string, s *model.Standup) (*model.Standup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := s.Clone()
	if created.ID == "" {
		created.ID = model.NewStandupID()
	}
	created.LabID = labID
	created.Status = created.Status.Normalize()
	if created.Date.IsZero() {
		created.Date = now
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.standups[created.ID] = created
	return created.Clone(), nil
}

func (r *standupRepository) Get(ctx context.Context, labID string, id model.StandupID) (*model.Standup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, err := r.get(labID, id)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

func (r *standupRepository) List(ctx context.Context, labID string, opts ...interfaces.ListStandupOption) ([]*model.Standup, error) {
	o := interfaces.BuildListStandupOptions(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Standup, 0)
	for _, s := range r.standups {
		if s.LabID != labID {
			continue
		}
		if !o.IncludeDeleted && !s.Active() {
			continue
		}
		if o.Status != nil && s.Status != *o.Status {
			continue
		}
		if o.From != nil && s.Date.Before(*o.From) {
			continue
		}
		if o.To != nil && s.Date.After(*o.To) {
			continue
		}
		result = append(result, s.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})

	if o.Offset > 0 {
		if o.Offset >= len(result) {
			return []*model.Standup{}, nil
		}
		result = result[o.Offset:]
	}
	if o.Limit > 0 && o.Limit < len(result) {
		result = result[:o.Limit]
	}

	return result, nil
}

func (r *standupRepository) Update(ctx context.Context, labID string, id model.StandupID, patch interfaces.StandupPatch) (*model.Standup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.get(labID, id)
	if err != nil {
		return nil, err
	}

	if patch.Date != nil {
		stored.Date = *patch.Date
	}
	if patch.Participants != nil {
		stored.Participants = append([]string(nil), *patch.Participants...)
	}
	stored.UpdatedAt = time.Now().UTC()

	return stored.Clone(), nil
}

func (r *standupRepository) Cancel(ctx context.Context, labID string, id model.StandupID) (*model.Standup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.get(labID, id)
	if err != nil {
		return nil, err
	}
	if !stored.Status.CanTransitionTo(types.StandupStatusCancelled) {
		return nil, goerr.Wrap(types.ErrInvalidState, "standup cannot be cancelled",
			goerr.V(types.StandupIDKey, id), goerr.V("status", stored.Status))
	}

	stored.Status = types.StandupStatusCancelled
	stored.UpdatedAt = time.Now().UTC()

	return stored.Clone(), nil
}

func (r *standupRepository) AttachTranscript(ctx context.Context, labID string, id model.StandupID, transcriptID string, audioRef string) (*model.Standup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.get(labID, id)
	if err != nil {
		return nil, err
	}
	if stored.HasTranscript() {
		return nil, goerr.Wrap(types.ErrAlreadyProcessed, "standup already has a transcript",
			goerr.V(types.StandupIDKey, id))
	}
	if stored.Status != types.StandupStatusScheduled && stored.Status != types.StandupStatusInProgress {
		return nil, goerr.Wrap(types.ErrInvalidState, "cannot attach transcript",
			goerr.V(types.StandupIDKey, id), goerr.V("status", stored.Status))
	}

	stored.TranscriptID = transcriptID
	stored.AudioRef = audioRef
	stored.Status = types.StandupStatusProcessing
	stored.UpdatedAt = time.Now().UTC()

	return stored.Clone(), nil
}

func (r *standupRepository) AttachAnalysis(ctx context.Context, labID string, id model.StandupID, result *model.AnalysisResult) (*model.Standup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.get(labID, id)
	if err != nil {
		return nil, err
	}
	if stored.Status != types.StandupStatusProcessing {
		return nil, goerr.Wrap(types.ErrInvalidState, "cannot attach analysis",
			goerr.V(types.StandupIDKey, id), goerr.V("status", stored.Status))
	}

	stored.Analysis = result.Clone()
	stored.Analysis.EnsureDefaults()
	stored.Status = types.StandupStatusCompleted
	stored.UpdatedAt = time.Now().UTC()

	return stored.Clone(), nil
}

func (r *standupRepository) SoftDelete(ctx context.Context, labID string, id model.StandupID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.get(labID, id)
	if err != nil {
		return err
	}
	if stored.Status == types.StandupStatusProcessing {
		return goerr.Wrap(types.ErrConflict, "standup has in-flight processing",
			goerr.V(types.StandupIDKey, id))
	}

	deletedAt := at
	stored.DeletedAt = &deletedAt
	stored.UpdatedAt = time.Now().UTC()
	return nil
}
