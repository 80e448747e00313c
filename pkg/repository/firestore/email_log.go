package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

// emailLogDoc is the Firestore document representation of model.EmailLog
type emailLogDoc struct {
	ID         string    `firestore:"ID"`
	StandupID  string    `firestore:"StandupID"`
	LabID      string    `firestore:"LabID"`
	Recipients []string  `firestore:"Recipients"`
	MessageID  string    `firestore:"MessageID"`
	SentAt     time.Time `firestore:"SentAt"`
}

func docToEmailLog(doc *firestore.DocumentSnapshot) (*model.EmailLog, error) {
	var d emailLogDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.EmailLog{
		ID:         model.EmailLogID(d.ID),
		StandupID:  model.StandupID(d.StandupID),
		LabID:      d.LabID,
		Recipients: d.Recipients,
		MessageID:  d.MessageID,
		SentAt:     d.SentAt,
	}, nil
}

type emailLogRepository struct {
	client *firestore.Client
}

func newEmailLogRepository(client *firestore.Client) *emailLogRepository {
	return &emailLogRepository{client: client}
}

func (r *emailLogRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionEmailLogs)
}

func (r *emailLogRepository) Append(ctx context.Context, e *model.EmailLog) (*model.EmailLog, error) {
	appended := e.Clone()
	if appended.ID == "" {
		appended.ID = model.NewEmailLogID()
	}
	if appended.SentAt.IsZero() {
		appended.SentAt = time.Now().UTC()
	}

	doc := &emailLogDoc{
		ID:         string(appended.ID),
		StandupID:  string(appended.StandupID),
		LabID:      appended.LabID,
		Recipients: appended.Recipients,
		MessageID:  appended.MessageID,
		SentAt:     appended.SentAt,
	}

	if _, err := r.collection().Doc(string(appended.ID)).Create(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to append email log",
			goerr.V(types.StandupIDKey, appended.StandupID))
	}

	return appended, nil
}

func (r *emailLogRepository) ListByStandupID(ctx context.Context, standupID model.StandupID) ([]*model.EmailLog, error) {
	query := r.collection().
		Where("StandupID", "==", string(standupID)).
		OrderBy("SentAt", firestore.Desc)

	return r.collect(ctx, query)
}

func (r *emailLogRepository) ListSince(ctx context.Context, standupID model.StandupID, since time.Time) ([]*model.EmailLog, error) {
	query := r.collection().
		Where("StandupID", "==", string(standupID)).
		Where("SentAt", ">=", since).
		OrderBy("SentAt", firestore.Desc)

	return r.collect(ctx, query)
}

func (r *emailLogRepository) ListByLabID(ctx context.Context, labID string, limit int) ([]*model.EmailLog, error) {
	query := r.collection().
		Where("LabID", "==", labID).
		OrderBy("SentAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	return r.collect(ctx, query)
}

func (r *emailLogRepository) collect(ctx context.Context, query firestore.Query) ([]*model.EmailLog, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	result := make([]*model.EmailLog, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate email logs")
		}

		e, err := docToEmailLog(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal email log")
		}
		result = append(result, e)
	}

	return result, nil
}
