package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across the capture pipeline. Callers match with
// errors.Is and map them to transport-level responses in the controller.
var (
	// Recorder
	ErrPermissionDenied   = goerr.New("microphone access denied")
	ErrCaptureUnavailable = goerr.New("audio capture is not available")

	// Transcription / analysis providers
	ErrInvalidAudio         = goerr.New("invalid audio file")
	ErrProviderUnconfigured = goerr.New("external provider is not configured")
	ErrProviderError        = goerr.New("external provider request failed")

	// Standup aggregate / transcript archive
	ErrNotFound         = goerr.New("not found")
	ErrAlreadyProcessed = goerr.New("transcript already attached")
	ErrInvalidState     = goerr.New("invalid lifecycle state for operation")
	ErrConflict         = goerr.New("operation conflicts with in-flight work")
	ErrAlreadyExists    = goerr.New("entry already exists")

	// Notification dispatcher
	ErrRateLimited    = goerr.New("summary email was sent recently")
	ErrDeliveryFailed = goerr.New("email delivery failed")

	// Request input that fails validation before reaching any state change
	ErrValidation = goerr.New("invalid request")
)

// Context keys for error values
const (
	LabIDKey      = "lab_id"
	StandupIDKey  = "standup_id"
	TranscriptKey = "transcript_id"
)
