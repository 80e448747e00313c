package interfaces

import (
	"context"
	"time"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
)

// EmailLogRepository defines append-only access to the email dispatch log
type EmailLogRepository interface {
	// Append records one dispatch attempt, generating an ID when absent
	Append(ctx context.Context, e *model.EmailLog) (*model.EmailLog, error)

	// ListByStandupID returns all entries for a standup, most recent first
	ListByStandupID(ctx context.Context, standupID model.StandupID) ([]*model.EmailLog, error)

	// ListSince returns entries for a standup with SentAt >= since
	ListSince(ctx context.Context, standupID model.StandupID, since time.Time) ([]*model.EmailLog, error)

	// ListByLabID returns recent entries across a lab, most recent first
	ListByLabID(ctx context.Context, labID string, limit int) ([]*model.EmailLog, error)
}
