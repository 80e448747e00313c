package memory

import (
	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-memory repository backend used for development and tests
type Memory struct {
	standup    *standupRepository
	transcript *transcriptRepository
	emailLog   *emailLogRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		standup:    newStandupRepository(),
		transcript: newTranscriptRepository(),
		emailLog:   newEmailLogRepository(),
	}
}

func (m *Memory) Standup() interfaces.StandupRepository {
	return m.standup
}

func (m *Memory) Transcript() interfaces.TranscriptRepository {
	return m.transcript
}

func (m *Memory) EmailLog() interfaces.EmailLogRepository {
	return m.emailLog
}

func (m *Memory) Close() error {
	return nil
}
