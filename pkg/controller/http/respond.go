package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/utils/errutil"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		errutil.Handle(ctx, err, "failed to encode response body")
	}
}

type actionItemResponse struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee,omitempty"`
}

type blockerResponse struct {
	Issue    string `json:"issue"`
	Severity string `json:"severity"`
}

type analysisResponse struct {
	Summary     string               `json:"summary"`
	ActionItems []actionItemResponse `json:"action_items"`
	Blockers    []blockerResponse    `json:"blockers"`
	Updates     []string             `json:"updates"`
}

type standupResponse struct {
	ID           string            `json:"id"`
	LabID        string            `json:"lab_id"`
	Date         time.Time         `json:"date"`
	Participants []string          `json:"participants"`
	Status       string            `json:"status"`
	AudioRef     string            `json:"audio_ref,omitempty"`
	TranscriptID string            `json:"transcript_id,omitempty"`
	Analysis     *analysisResponse `json:"analysis,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type transcriptResponse struct {
	StandupID string    `json:"standup_id"`
	LabID     string    `json:"lab_id"`
	Text      string    `json:"text"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type emailLogResponse struct {
	ID         string    `json:"id"`
	StandupID  string    `json:"standup_id"`
	LabID      string    `json:"lab_id"`
	Recipients []string  `json:"recipients"`
	MessageID  string    `json:"message_id"`
	SentAt     time.Time `json:"sent_at"`
}

func toAnalysisResponse(result *model.AnalysisResult) *analysisResponse {
	if result == nil {
		return nil
	}

	resp := &analysisResponse{
		Summary:     result.Summary,
		ActionItems: make([]actionItemResponse, len(result.ActionItems)),
		Blockers:    make([]blockerResponse, len(result.Blockers)),
		Updates:     result.Updates,
	}
	for i, item := range result.ActionItems {
		resp.ActionItems[i] = actionItemResponse{Task: item.Task, Assignee: item.Assignee}
	}
	for i, b := range result.Blockers {
		resp.Blockers[i] = blockerResponse{Issue: b.Issue, Severity: string(b.Severity)}
	}
	if resp.Updates == nil {
		resp.Updates = []string{}
	}
	return resp
}

func toStandupResponse(standup *model.Standup) *standupResponse {
	return &standupResponse{
		ID:           string(standup.ID),
		LabID:        standup.LabID,
		Date:         standup.Date,
		Participants: standup.Participants,
		Status:       string(standup.Status),
		AudioRef:     standup.AudioRef,
		TranscriptID: standup.TranscriptID,
		Analysis:     toAnalysisResponse(standup.Analysis),
		CreatedAt:    standup.CreatedAt,
		UpdatedAt:    standup.UpdatedAt,
	}
}

func toTranscriptResponse(entry *model.Transcript) *transcriptResponse {
	return &transcriptResponse{
		StandupID: string(entry.StandupID),
		LabID:     entry.LabID,
		Text:      entry.Text,
		WordCount: entry.WordCount,
		CreatedAt: entry.CreatedAt,
		ExpiresAt: entry.ExpiresAt,
	}
}

func toEmailLogResponse(entry *model.EmailLog) *emailLogResponse {
	return &emailLogResponse{
		ID:         string(entry.ID),
		StandupID:  string(entry.StandupID),
		LabID:      entry.LabID,
		Recipients: entry.Recipients,
		MessageID:  entry.MessageID,
		SentAt:     entry.SentAt,
	}
}
