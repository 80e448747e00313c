package http

import (
	"net/http"
	"time"

	"github.com/beakerhub/beakerhub/pkg/service/worker"
	"github.com/beakerhub/beakerhub/pkg/utils/errutil"
)

type passResultResponse struct {
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
	DeletedCount int       `json:"deleted_count"`
	Errors       []string  `json:"errors"`
}

func toPassResultResponse(result *worker.PassResult) *passResultResponse {
	resp := &passResultResponse{
		StartedAt:    result.StartedAt,
		DurationMS:   result.Duration.Milliseconds(),
		DeletedCount: result.DeletedCount,
		Errors:       []string{},
	}
	for _, err := range result.Errors {
		resp.Errors = append(resp.Errors, err.Error())
	}
	return resp
}

func (s *Server) runCleanup(w http.ResponseWriter, r *http.Request) {
	result, err := s.worker.RunOnce(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, toPassResultResponse(result))
}

func (s *Server) cleanupStatus(w http.ResponseWriter, r *http.Request) {
	status := s.worker.Status()

	resp := struct {
		TimerActive bool                `json:"timer_active"`
		LastRun     *time.Time          `json:"last_run,omitempty"`
		LastResult  *passResultResponse `json:"last_result,omitempty"`
	}{TimerActive: status.TimerActive}

	if !status.LastRun.IsZero() {
		lastRun := status.LastRun
		resp.LastRun = &lastRun
	}
	if status.LastResult != nil {
		resp.LastResult = toPassResultResponse(status.LastResult)
	}

	respondJSON(r.Context(), w, http.StatusOK, resp)
}
