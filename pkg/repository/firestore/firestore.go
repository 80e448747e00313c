package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
)

const (
	collectionStandups    = "standups"
	collectionTranscripts = "transcripts"
	collectionEmailLogs   = "email_logs"
)

// Firestore is the durable repository backend
type Firestore struct {
	client     *firestore.Client
	standup    *standupRepository
	transcript *transcriptRepository
	emailLog   *emailLogRepository
}

var _ interfaces.Repository = &Firestore{}

func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	return &Firestore{
		client:     client,
		standup:    newStandupRepository(client),
		transcript: newTranscriptRepository(client),
		emailLog:   newEmailLogRepository(client),
	}, nil
}

func (f *Firestore) Standup() interfaces.StandupRepository {
	return f.standup
}

func (f *Firestore) Transcript() interfaces.TranscriptRepository {
	return f.transcript
}

func (f *Firestore) EmailLog() interfaces.EmailLogRepository {
	return f.emailLog
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
