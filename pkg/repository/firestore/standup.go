package firestore

import (
	"context"
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

// standupDoc is the Firestore document representation of model.Standup
type standupDoc struct {
	ID           string       `firestore:"ID"`
	LabID        string       `firestore:"LabID"`
	Date         time.Time    `firestore:"Date"`
	Participants []string     `firestore:"Participants"`
	AudioRef     string       `firestore:"AudioRef"`
	TranscriptID string       `firestore:"TranscriptID"`
	Analysis     *analysisDoc `firestore:"Analysis,omitempty"`
	Status       string       `firestore:"Status"`
	DeletedAt    *time.Time   `firestore:"DeletedAt,omitempty"`
	CreatedAt    time.Time    `firestore:"CreatedAt"`
	UpdatedAt    time.Time    `firestore:"UpdatedAt"`
}

type analysisDoc struct {
	Summary     string          `firestore:"Summary"`
	ActionItems []actionItemDoc `firestore:"ActionItems"`
	Blockers    []blockerDoc    `firestore:"Blockers"`
	Updates     []string        `firestore:"Updates"`
}

type actionItemDoc struct {
	Task     string `firestore:"Task"`
	Assignee string `firestore:"Assignee"`
}

type blockerDoc struct {
	Issue    string `firestore:"Issue"`
	Severity string `firestore:"Severity"`
}

func toStandupDoc(s *model.Standup) *standupDoc {
	doc := &standupDoc{
		ID:           string(s.ID),
		LabID:        s.LabID,
		Date:         s.Date,
		Participants: s.Participants,
		AudioRef:     s.AudioRef,
		TranscriptID: s.TranscriptID,
		Status:       s.Status.String(),
		DeletedAt:    s.DeletedAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Analysis != nil {
		doc.Analysis = toAnalysisDoc(s.Analysis)
	}
	return doc
}

func toAnalysisDoc(a *model.AnalysisResult) *analysisDoc {
	doc := &analysisDoc{
		Summary:     a.Summary,
		ActionItems: make([]actionItemDoc, 0, len(a.ActionItems)),
		Blockers:    make([]blockerDoc, 0, len(a.Blockers)),
		Updates:     a.Updates,
	}
	for _, item := range a.ActionItems {
		doc.ActionItems = append(doc.ActionItems, actionItemDoc{Task: item.Task, Assignee: item.Assignee})
	}
	for _, b := range a.Blockers {
		doc.Blockers = append(doc.Blockers, blockerDoc{Issue: b.Issue, Severity: b.Severity.String()})
	}
	return doc
}

func fromStandupDoc(d *standupDoc) *model.Standup {
	s := &model.Standup{
		ID:           model.StandupID(d.ID),
		LabID:        d.LabID,
		Date:         d.Date,
		Participants: d.Participants,
		AudioRef:     d.AudioRef,
		TranscriptID: d.TranscriptID,
		Status:       types.StandupStatus(d.Status).Normalize(),
		DeletedAt:    d.DeletedAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.Analysis != nil {
		a := &model.AnalysisResult{
			Summary: d.Analysis.Summary,
			Updates: d.Analysis.Updates,
		}
		for _, item := range d.Analysis.ActionItems {
			a.ActionItems = append(a.ActionItems, model.ActionItem{Task: item.Task, Assignee: item.Assignee})
		}
		for _, b := range d.Analysis.Blockers {
			a.Blockers = append(a.Blockers, model.Blocker{Issue: b.Issue, Severity: types.BlockerSeverity(b.Severity)})
		}
		a.EnsureDefaults()
		s.Analysis = a
	}
	return s
}

func docToStandup(doc *firestore.DocumentSnapshot) (*model.Standup, error) {
	var d standupDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromStandupDoc(&d), nil
}

type standupRepository struct {
	client *firestore.Client
}

func newStandupRepository(client *firestore.Client) *standupRepository {
	return &standupRepository{client: client}
}

func (r *standupRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionStandups)
}

// getTx reads a standup inside a transaction and verifies the lab scope
func (r *standupRepository) getTx(tx *firestore.Transaction, labID string, id model.StandupID) (*model.Standup, *firestore.DocumentRef, error) {
	docRef := r.collection().Doc(string(id))
	doc, err := tx.Get(docRef)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil, goerr.Wrap(types.ErrNotFound, "standup not found",
				goerr.V(types.LabIDKey, labID), goerr.V(types.StandupIDKey, id))
		}
		return nil, nil, goerr.Wrap(err, "failed to get standup", goerr.V(types.StandupIDKey, id))
	}

	s, err := docToStandup(doc)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to unmarshal standup", goerr.V(types.StandupIDKey, id))
	}
	if s.LabID != labID {
		return nil, nil, goerr.Wrap(types.ErrNotFound, "standup not found",
			goerr.V(types.LabIDKey, labID), goerr.V(types.StandupIDKey, id))
	}
	return s, docRef, nil
}

func (r *standupRepository) Create(ctx context.Context, labID string, s *model.Standup) (*model.Standup, error) {
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

	docRef := r.collection().Doc(string(created.ID))
	if _, err := docRef.Create(ctx, toStandupDoc(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(types.ErrAlreadyExists, "standup already exists",
				goerr.V(types.StandupIDKey, created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create standup")
	}

	return created, nil
}

func (r *standupRepository) Get(ctx context.Context, labID string, id model.StandupID) (*model.Standup, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "standup not found",
				goerr.V(types.LabIDKey, labID), goerr.V(types.StandupIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get standup", goerr.V(types.StandupIDKey, id))
	}

	s, err := docToStandup(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal standup", goerr.V(types.StandupIDKey, id))
	}
	if s.LabID != labID {
		return nil, goerr.Wrap(types.ErrNotFound, "standup not found",
			goerr.V(types.LabIDKey, labID), goerr.V(types.StandupIDKey, id))
	}

	return s, nil
}

func (r *standupRepository) List(ctx context.Context, labID string, opts ...interfaces.ListStandupOption) ([]*model.Standup, error) {
	o := interfaces.BuildListStandupOptions(opts...)

	query := r.collection().Where("LabID", "==", labID)
	if o.Status != nil {
		query = query.Where("Status", "==", o.Status.String())
	}
	if o.From != nil {
		query = query.Where("Date", ">=", *o.From)
	}
	if o.To != nil {
		query = query.Where("Date", "<=", *o.To)
	}
	query = query.OrderBy("Date", firestore.Desc)
	if o.Offset > 0 {
		query = query.Offset(o.Offset)
	}
	if o.Limit > 0 {
		query = query.Limit(o.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	standups := make([]*model.Standup, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate standups", goerr.V(types.LabIDKey, labID))
		}

		s, err := docToStandup(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal standup")
		}
		if !o.IncludeDeleted && !s.Active() {
			continue
		}

		standups = append(standups, s)
	}

	return standups, nil
}

func (r *standupRepository) Update(ctx context.Context, labID string, id model.StandupID, patch interfaces.StandupPatch) (*model.Standup, error) {
	var updated *model.Standup
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stored, docRef, err := r.getTx(tx, labID, id)
		if err != nil {
			return err
		}

		if patch.Date != nil {
			stored.Date = *patch.Date
		}
		if patch.Participants != nil {
			stored.Participants = append([]string(nil), *patch.Participants...)
		}
		stored.UpdatedAt = time.Now().UTC()
		updated = stored

		return tx.Set(docRef, toStandupDoc(stored))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *standupRepository) Cancel(ctx context.Context, labID string, id model.StandupID) (*model.Standup, error) {
	var updated *model.Standup
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stored, docRef, err := r.getTx(tx, labID, id)
		if err != nil {
			return err
		}
		if !stored.Status.CanTransitionTo(types.StandupStatusCancelled) {
			return goerr.Wrap(types.ErrInvalidState, "standup cannot be cancelled",
				goerr.V(types.StandupIDKey, id), goerr.V("status", stored.Status))
		}

		stored.Status = types.StandupStatusCancelled
		stored.UpdatedAt = time.Now().UTC()
		updated = stored

		return tx.Set(docRef, toStandupDoc(stored))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *standupRepository) AttachTranscript(ctx context.Context, labID string, id model.StandupID, transcriptID string, audioRef string) (*model.Standup, error) {
	var updated *model.Standup
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stored, docRef, err := r.getTx(tx, labID, id)
		if err != nil {
			return err
		}
		if stored.HasTranscript() {
			return goerr.Wrap(types.ErrAlreadyProcessed, "standup already has a transcript",
				goerr.V(types.StandupIDKey, id))
		}
		if stored.Status != types.StandupStatusScheduled && stored.Status != types.StandupStatusInProgress {
			return goerr.Wrap(types.ErrInvalidState, "cannot attach transcript",
				goerr.V(types.StandupIDKey, id), goerr.V("status", stored.Status))
		}

		stored.TranscriptID = transcriptID
		stored.AudioRef = audioRef
		stored.Status = types.StandupStatusProcessing
		stored.UpdatedAt = time.Now().UTC()
		updated = stored

		return tx.Set(docRef, toStandupDoc(stored))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *standupRepository) AttachAnalysis(ctx context.Context, labID string, id model.StandupID, result *model.AnalysisResult) (*model.Standup, error) {
	var updated *model.Standup
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stored, docRef, err := r.getTx(tx, labID, id)
		if err != nil {
			return err
		}
		if stored.Status != types.StandupStatusProcessing {
			return goerr.Wrap(types.ErrInvalidState, "cannot attach analysis",
				goerr.V(types.StandupIDKey, id), goerr.V("status", stored.Status))
		}

		stored.Analysis = result.Clone()
		stored.Analysis.EnsureDefaults()
		stored.Status = types.StandupStatusCompleted
		stored.UpdatedAt = time.Now().UTC()
		updated = stored

		return tx.Set(docRef, toStandupDoc(stored))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *standupRepository) SoftDelete(ctx context.Context, labID string, id model.StandupID, at time.Time) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		stored, docRef, err := r.getTx(tx, labID, id)
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

		return tx.Set(docRef, toStandupDoc(stored))
	})
}
