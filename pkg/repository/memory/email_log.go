package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
)

type emailLogRepository struct {
	mu      sync.RWMutex
	entries []*model.EmailLog
}

func newEmailLogRepository() *emailLogRepository {
	return &emailLogRepository{}
}

func (r *emailLogRepository) Append(ctx context.Context, e *model.EmailLog) (*model.EmailLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appended := e.Clone()
	if appended.ID == "" {
		appended.ID = model.NewEmailLogID()
	}
	if appended.SentAt.IsZero() {
		appended.SentAt = time.Now().UTC()
	}

	r.entries = append(r.entries, appended)
	return appended.Clone(), nil
}

func (r *emailLogRepository) ListByStandupID(ctx context.Context, standupID model.StandupID) ([]*model.EmailLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.EmailLog, 0)
	for _, e := range r.entries {
		if e.StandupID == standupID {
			result = append(result, e.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SentAt.After(result[j].SentAt)
	})

	return result, nil
}

func (r *emailLogRepository) ListSince(ctx context.Context, standupID model.StandupID, since time.Time) ([]*model.EmailLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.EmailLog, 0)
	for _, e := range r.entries {
		if e.StandupID == standupID && !e.SentAt.Before(since) {
			result = append(result, e.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SentAt.After(result[j].SentAt)
	})

	return result, nil
}

func (r *emailLogRepository) ListByLabID(ctx context.Context, labID string, limit int) ([]*model.EmailLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.EmailLog, 0)
	for _, e := range r.entries {
		if e.LabID == labID {
			result = append(result, e.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SentAt.After(result[j].SentAt)
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}

	return result, nil
}
