package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/beakerhub/beakerhub/pkg/service/audiostore"
	"github.com/beakerhub/beakerhub/pkg/utils/logging"
)

// AudioStore holds configuration for the recorded audio store
type AudioStore struct {
	backend string
	bucket  string
}

// Flags returns CLI flags for audio store configuration
func (a *AudioStore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "audio-store-backend",
			Usage:       "Audio store backend type (gcs, memory or none)",
			Value:       "none",
			Sources:     cli.EnvVars("BEAKERHUB_AUDIO_STORE_BACKEND"),
			Destination: &a.backend,
		},
		&cli.StringFlag{
			Name:        "audio-store-bucket",
			Usage:       "Cloud Storage bucket name (required when using gcs backend)",
			Sources:     cli.EnvVars("BEAKERHUB_AUDIO_STORE_BUCKET"),
			Destination: &a.bucket,
		},
	}
}

// Configure initializes the audio store. Returns nil when the backend is
// "none"; recordings are then transcribed without being retained.
func (a *AudioStore) Configure(ctx context.Context) (audiostore.Store, error) {
	switch a.backend {
	case "gcs":
		if a.bucket == "" {
			return nil, goerr.New("audio-store-bucket is required when using gcs backend")
		}
		store, err := audiostore.NewGCS(ctx, a.bucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize GCS audio store")
		}
		logging.Default().Info("Using GCS audio store", "bucket", a.bucket)
		return store, nil

	case "memory":
		logging.Default().Info("Using in-memory audio store (development mode)")
		return audiostore.NewMemory(), nil

	case "none":
		return nil, nil

	default:
		return nil, goerr.New("invalid audio store backend", goerr.V("backend", a.backend))
	}
}
