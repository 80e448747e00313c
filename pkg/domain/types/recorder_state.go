package types

// RecorderState represents the state of the audio capture state machine
type RecorderState string

const (
	RecorderStateIdle      RecorderState = "IDLE"
	RecorderStateRecording RecorderState = "RECORDING"
	RecorderStatePaused    RecorderState = "PAUSED"
	RecorderStateStopped   RecorderState = "STOPPED"
)

// IsValid checks if the recorder state is valid
func (s RecorderState) IsValid() bool {
	switch s {
	case RecorderStateIdle,
		RecorderStateRecording,
		RecorderStatePaused,
		RecorderStateStopped:
		return true
	default:
		return false
	}
}

// String returns the string representation of the recorder state
func (s RecorderState) String() string {
	return string(s)
}
