package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

type transcriptRepository struct {
	mu          sync.RWMutex
	transcripts map[model.StandupID]*model.Transcript
}

func newTranscriptRepository() *transcriptRepository {
	return &transcriptRepository{
		transcripts: make(map[model.StandupID]*model.Transcript),
	}
}

func (r *transcriptRepository) Save(ctx context.Context, t *model.Transcript) (*model.Transcript, error) {
	if err := t.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid transcript entry")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transcripts[t.StandupID]; exists {
		return nil, goerr.Wrap(types.ErrAlreadyExists, "transcript already archived",
			goerr.V(types.StandupIDKey, t.StandupID))
	}

	saved := t.Clone()
	r.transcripts[saved.StandupID] = saved
	return saved.Clone(), nil
}

func (r *transcriptRepository) GetByStandupID(ctx context.Context, standupID model.StandupID) (*model.Transcript, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.transcripts[standupID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "transcript not found",
			goerr.V(types.StandupIDKey, standupID))
	}
	return t.Clone(), nil
}

func (r *transcriptRepository) ExtendRetention(ctx context.Context, standupID model.StandupID, days int) (*model.Transcript, error) {
	if err := model.ValidateExtensionDays(days); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.transcripts[standupID]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "transcript not found",
			goerr.V(types.StandupIDKey, standupID))
	}

	// Additive on the current expiry, never on "now"
	t.ExpiresAt = t.ExpiresAt.AddDate(0, 0, days)
	return t.Clone(), nil
}

func (r *transcriptRepository) Search(ctx context.Context, q *interfaces.SearchQuery) ([]*model.Transcript, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(q.Term)

	matched := make([]*model.Transcript, 0)
	for _, t := range r.transcripts {
		if q.LabID != "" && t.LabID != q.LabID {
			continue
		}
		if !q.IncludeExpired && t.Expired(q.Now) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(t.Text), term) {
			continue
		}
		matched = append(matched, t.Clone())
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return []*model.Transcript{}, total, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	return matched, total, nil
}

func (r *transcriptRepository) ListExpiring(ctx context.Context, labID string, from, to time.Time) ([]*model.Transcript, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Transcript, 0)
	for _, t := range r.transcripts {
		if labID != "" && t.LabID != labID {
			continue
		}
		if t.ExpiresAt.Before(from) || t.ExpiresAt.After(to) {
			continue
		}
		result = append(result, t.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ExpiresAt.Before(result[j].ExpiresAt)
	})

	return result, nil
}

func (r *transcriptRepository) ListExpired(ctx context.Context, now time.Time) ([]*model.Transcript, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Transcript, 0)
	for _, t := range r.transcripts {
		if t.Expired(now) {
			result = append(result, t.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ExpiresAt.Before(result[j].ExpiresAt)
	})

	return result, nil
}

func (r *transcriptRepository) Stats(ctx context.Context, labID string, now time.Time) (*interfaces.TranscriptStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &interfaces.TranscriptStats{}
	for _, t := range r.transcripts {
		if labID != "" && t.LabID != labID {
			continue
		}
		stats.TotalCount++
		if t.Expired(now) {
			stats.ExpiredCount++
		}
		stats.TotalWords += int64(t.WordCount)
		stats.TotalBytes += int64(len(t.Text))
	}

	return stats, nil
}

func (r *transcriptRepository) Delete(ctx context.Context, standupID model.StandupID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transcripts[standupID]; !exists {
		return false, nil
	}
	delete(r.transcripts, standupID)
	return true, nil
}
