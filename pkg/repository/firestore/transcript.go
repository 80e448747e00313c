package firestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

// transcriptDoc is the Firestore document representation of model.Transcript
type transcriptDoc struct {
	StandupID string    `firestore:"StandupID"`
	LabID     string    `firestore:"LabID"`
	Text      string    `firestore:"Text"`
	WordCount int       `firestore:"WordCount"`
	CreatedAt time.Time `firestore:"CreatedAt"`
	ExpiresAt time.Time `firestore:"ExpiresAt"`
}

func toTranscriptDoc(t *model.Transcript) *transcriptDoc {
	return &transcriptDoc{
		StandupID: string(t.StandupID),
		LabID:     t.LabID,
		Text:      t.Text,
		WordCount: t.WordCount,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
	}
}

func docToTranscript(doc *firestore.DocumentSnapshot) (*model.Transcript, error) {
	var d transcriptDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Transcript{
		StandupID: model.StandupID(d.StandupID),
		LabID:     d.LabID,
		Text:      d.Text,
		WordCount: d.WordCount,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}, nil
}

type transcriptRepository struct {
	client *firestore.Client
}

func newTranscriptRepository(client *firestore.Client) *transcriptRepository {
	return &transcriptRepository{client: client}
}

func (r *transcriptRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionTranscripts)
}

func (r *transcriptRepository) Save(ctx context.Context, t *model.Transcript) (*model.Transcript, error) {
	if err := t.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid transcript entry")
	}

	saved := t.Clone()
	docRef := r.collection().Doc(string(saved.StandupID))

	// Create (not Set) enforces the one-to-one invariant: concurrent saves for
	// the same standup resolve to exactly one winner.
	if _, err := docRef.Create(ctx, toTranscriptDoc(saved)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(types.ErrAlreadyExists, "transcript already archived",
				goerr.V(types.StandupIDKey, saved.StandupID))
		}
		return nil, goerr.Wrap(err, "failed to save transcript", goerr.V(types.StandupIDKey, saved.StandupID))
	}

	return saved, nil
}

func (r *transcriptRepository) GetByStandupID(ctx context.Context, standupID model.StandupID) (*model.Transcript, error) {
	doc, err := r.collection().Doc(string(standupID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "transcript not found",
				goerr.V(types.StandupIDKey, standupID))
		}
		return nil, goerr.Wrap(err, "failed to get transcript", goerr.V(types.StandupIDKey, standupID))
	}

	return docToTranscript(doc)
}

func (r *transcriptRepository) ExtendRetention(ctx context.Context, standupID model.StandupID, days int) (*model.Transcript, error) {
	if err := model.ValidateExtensionDays(days); err != nil {
		return nil, err
	}

	var extended *model.Transcript
	docRef := r.collection().Doc(string(standupID))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrNotFound, "transcript not found",
					goerr.V(types.StandupIDKey, standupID))
			}
			return goerr.Wrap(err, "failed to get transcript", goerr.V(types.StandupIDKey, standupID))
		}

		t, err := docToTranscript(doc)
		if err != nil {
			return goerr.Wrap(err, "failed to unmarshal transcript", goerr.V(types.StandupIDKey, standupID))
		}

		// Additive on the current expiry, never on "now"
		t.ExpiresAt = t.ExpiresAt.AddDate(0, 0, days)
		extended = t

		return tx.Set(docRef, toTranscriptDoc(t))
	})
	if err != nil {
		return nil, err
	}

	return extended, nil
}

// Search fetches candidates ordered by CreatedAt and applies the substring
// match in process. Firestore has no content-match operator; archive volumes
// are bounded by the retention window, so the scan stays small.
func (r *transcriptRepository) Search(ctx context.Context, q *interfaces.SearchQuery) ([]*model.Transcript, int, error) {
	query := r.collection().Query
	if q.LabID != "" {
		query = query.Where("LabID", "==", q.LabID)
	}
	query = query.OrderBy("CreatedAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	term := strings.ToLower(q.Term)

	matched := make([]*model.Transcript, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to iterate transcripts")
		}

		t, err := docToTranscript(doc)
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to unmarshal transcript")
		}
		if !q.IncludeExpired && t.Expired(q.Now) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(t.Text), term) {
			continue
		}

		matched = append(matched, t)
	}

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
	query := r.collection().
		Where("ExpiresAt", ">=", from).
		Where("ExpiresAt", "<=", to)
	if labID != "" {
		query = query.Where("LabID", "==", labID)
	}
	query = query.OrderBy("ExpiresAt", firestore.Asc)

	return r.collect(ctx, query)
}

func (r *transcriptRepository) ListExpired(ctx context.Context, now time.Time) ([]*model.Transcript, error) {
	query := r.collection().
		Where("ExpiresAt", "<=", now).
		OrderBy("ExpiresAt", firestore.Asc)

	return r.collect(ctx, query)
}

func (r *transcriptRepository) collect(ctx context.Context, query firestore.Query) ([]*model.Transcript, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Transcript, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate transcripts")
		}

		t, err := docToTranscript(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal transcript")
		}
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ExpiresAt.Before(result[j].ExpiresAt)
	})

	return result, nil
}

func (r *transcriptRepository) Stats(ctx context.Context, labID string, now time.Time) (*interfaces.TranscriptStats, error) {
	query := r.collection().Query
	if labID != "" {
		query = query.Where("LabID", "==", labID)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	stats := &interfaces.TranscriptStats{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate transcripts")
		}

		t, err := docToTranscript(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal transcript")
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
	docRef := r.collection().Doc(string(standupID))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get transcript", goerr.V(types.StandupIDKey, standupID))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return false, goerr.Wrap(err, "failed to delete transcript", goerr.V(types.StandupIDKey, standupID))
	}

	return true, nil
}
