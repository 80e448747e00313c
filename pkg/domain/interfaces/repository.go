package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Standup() StandupRepository
	Transcript() TranscriptRepository
	EmailLog() EmailLogRepository

	Close() error
}
