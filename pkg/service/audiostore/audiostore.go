package audiostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/utils/safe"
)

// Store keeps raw audio blobs keyed by an opaque reference. The reference is
// recorded on the standup as audioRef.
type Store interface {
	Put(ctx context.Context, labID, standupID string, data []byte, mimeType string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
	Close() error
}

// objectName builds a stable per-standup object path
func objectName(labID, standupID string, now time.Time) string {
	return fmt.Sprintf("audio/%s/%s/%s.wav", labID, now.UTC().Format("2006/01/02"), standupID)
}

// GCS stores audio in a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	return &GCS{
		client: client,
		bucket: bucket,
		now:    time.Now,
	}, nil
}

func (s *GCS) Put(ctx context.Context, labID, standupID string, data []byte, mimeType string) (string, error) {
	name := objectName(labID, standupID, s.now())

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return "", goerr.Wrap(err, "failed to write audio object", goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize audio object", goerr.V("object", name))
	}

	return name, nil
}

func (s *GCS) Get(ctx context.Context, ref string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(ref).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(types.ErrNotFound, "audio object not found", goerr.V("object", ref))
		}
		return nil, goerr.Wrap(err, "failed to open audio object", goerr.V("object", ref))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read audio object", goerr.V("object", ref))
	}
	return data, nil
}

func (s *GCS) Delete(ctx context.Context, ref string) error {
	if err := s.client.Bucket(s.bucket).Object(ref).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to delete audio object", goerr.V("object", ref))
	}
	return nil
}

func (s *GCS) Close() error {
	return s.client.Close()
}
