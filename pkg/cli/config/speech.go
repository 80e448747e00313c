package config

import (
	"github.com/urfave/cli/v3"

	"github.com/beakerhub/beakerhub/pkg/service/transcription"
)

// Speech holds configuration for the speech-to-text provider
type Speech struct {
	apiKey   string
	endpoint string
	model    string
}

// Flags returns CLI flags for speech-to-text configuration
func (s *Speech) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "speech-api-key",
			Usage:       "API key for the speech-to-text provider (transcription disabled when empty)",
			Sources:     cli.EnvVars("BEAKERHUB_SPEECH_API_KEY"),
			Destination: &s.apiKey,
		},
		&cli.StringFlag{
			Name:        "speech-endpoint",
			Usage:       "Override the speech-to-text provider endpoint",
			Sources:     cli.EnvVars("BEAKERHUB_SPEECH_ENDPOINT"),
			Destination: &s.endpoint,
		},
		&cli.StringFlag{
			Name:        "speech-model",
			Usage:       "Override the speech-to-text model",
			Sources:     cli.EnvVars("BEAKERHUB_SPEECH_MODEL"),
			Destination: &s.model,
		},
	}
}

// IsConfigured reports whether an API key is set
func (s *Speech) IsConfigured() bool {
	return s.apiKey != ""
}

// Configure builds the transcription service from the flags
func (s *Speech) Configure() transcription.Service {
	var opts []transcription.Option
	if s.endpoint != "" {
		opts = append(opts, transcription.WithEndpoint(s.endpoint))
	}
	if s.model != "" {
		opts = append(opts, transcription.WithModel(s.model))
	}
	return transcription.New(s.apiKey, opts...)
}
