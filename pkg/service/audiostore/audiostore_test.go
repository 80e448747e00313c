package audiostore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/service/audiostore"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := audiostore.NewMemory()

	ref, err := store.Put(ctx, "lab-1", "standup-1", []byte("wav-bytes"), "audio/wav")
	gt.NoError(t, err).Required()
	gt.Value(t, ref).NotEqual("")

	data, err := store.Get(ctx, ref)
	gt.NoError(t, err).Required()
	gt.Value(t, string(data)).Equal("wav-bytes")

	_, err = store.Get(ctx, "audio/no/such/object.wav")
	gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()

	gt.NoError(t, store.Delete(ctx, ref))
	_, err = store.Get(ctx, ref)
	gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()

	// delete is idempotent
	gt.NoError(t, store.Delete(ctx, ref))
}
