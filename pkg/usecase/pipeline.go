package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/service/analysis"
	"github.com/beakerhub/beakerhub/pkg/service/audiostore"
	"github.com/beakerhub/beakerhub/pkg/service/transcription"
	"github.com/beakerhub/beakerhub/pkg/utils/logging"
)

// PipelineUseCase runs the capture-to-insight flow for one finished recording
type PipelineUseCase struct {
	standup     *StandupUseCase
	audioStore  audiostore.Store
	transcriber transcription.Service
	analyzer    analysis.Service
}

func NewPipelineUseCase(standup *StandupUseCase, store audiostore.Store, transcriber transcription.Service, analyzer analysis.Service) *PipelineUseCase {
	return &PipelineUseCase{
		standup:     standup,
		audioStore:  store,
		transcriber: transcriber,
		analyzer:    analyzer,
	}
}

// ProcessInput is one finished recording handed to the pipeline
type ProcessInput struct {
	LabID     string
	StandupID model.StandupID
	Audio     []byte
	Filename  string
	MediaType string
	Language  string
}

// ProcessRecording validates the audio, stores it, transcribes it, archives
// the transcript and runs the analysis. Validation and transcription failures
// leave the standup untouched. When only the analysis step fails the standup
// is returned in Processing state together with the error, so a caller can
// tell a degraded result from a failed one.
func (uc *PipelineUseCase) ProcessRecording(ctx context.Context, input *ProcessInput) (*model.Standup, error) {
	if uc.transcriber == nil {
		return nil, goerr.Wrap(types.ErrProviderUnconfigured, "speech-to-text service is not configured")
	}

	if err := uc.transcriber.Validate(int64(len(input.Audio)), input.MediaType); err != nil {
		return nil, err
	}

	var audioRef string
	if uc.audioStore != nil {
		ref, err := uc.audioStore.Put(ctx, input.LabID, string(input.StandupID), input.Audio, input.MediaType)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to store audio", goerr.V(types.StandupIDKey, input.StandupID))
		}
		audioRef = ref
	}

	var opts []transcription.TranscribeOption
	if input.Language != "" {
		opts = append(opts, transcription.WithLanguage(input.Language))
	}
	text, err := uc.transcriber.Transcribe(ctx, input.Audio, input.Filename, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "transcription failed", goerr.V(types.StandupIDKey, input.StandupID))
	}

	attached, _, err := uc.standup.AttachTranscript(ctx, input.LabID, input.StandupID, text, audioRef, model.DefaultRetentionDays)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("recording processed",
		"standupID", input.StandupID,
		"words", model.CountWords(text))

	if uc.analyzer == nil {
		return attached, goerr.Wrap(types.ErrProviderUnconfigured, "analysis service is not configured")
	}

	result, err := uc.analyzer.Analyze(ctx, text)
	if err != nil {
		return attached, goerr.Wrap(err, "analysis failed", goerr.V(types.StandupIDKey, input.StandupID))
	}

	completed, err := uc.standup.AttachAnalysis(ctx, input.LabID, input.StandupID, result)
	if err != nil {
		return attached, err
	}

	return completed, nil
}
