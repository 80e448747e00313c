package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/usecase"
	"github.com/beakerhub/beakerhub/pkg/utils/errutil"
)

// maxRecordingBytes bounds the multipart upload body. Slightly above the
// transcription provider limit so oversized audio reaches Validate and gets a
// proper taxonomy error instead of a silent truncation.
const maxRecordingBytes = 32 << 20

func (s *Server) createStandup(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")

	var req struct {
		Date         *time.Time `json:"date"`
		Participants []string   `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if s.labs != nil && !s.labs.Has(labID) {
		errutil.HandleHTTP(r.Context(), w,
			goerr.Wrap(types.ErrNotFound, "unknown lab", goerr.V(types.LabIDKey, labID)))
		return
	}

	standup, err := s.uc.Standup.Create(r.Context(), labID, req.Date, req.Participants)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusCreated, toStandupResponse(standup))
}

func (s *Server) listStandups(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	q := r.URL.Query()

	var opts []interfaces.ListStandupOption
	if v := q.Get("status"); v != "" {
		status := types.StandupStatus(v)
		if !status.IsValid() {
			http.Error(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		opts = append(opts, interfaces.WithStatus(status))
	}
	if q.Get("include_deleted") == "true" {
		opts = append(opts, interfaces.WithIncludeDeleted())
	}
	if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
		fromAt, toAt, err := parseDateRange(from, to)
		if err != nil {
			http.Error(w, "invalid date range", http.StatusBadRequest)
			return
		}
		opts = append(opts, interfaces.WithDateRange(fromAt, toAt))
	}
	if limit := parseIntParam(q.Get("limit"), 0); limit > 0 {
		opts = append(opts, interfaces.WithPagination(limit, parseIntParam(q.Get("offset"), 0)))
	}

	standups, err := s.uc.Standup.List(r.Context(), labID, opts...)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	resp := struct {
		Standups []*standupResponse `json:"standups"`
	}{Standups: make([]*standupResponse, len(standups))}
	for i, standup := range standups {
		resp.Standups[i] = toStandupResponse(standup)
	}

	respondJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) getStandup(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	standup, err := s.uc.Standup.Get(r.Context(), labID, standupID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, toStandupResponse(standup))
}

func (s *Server) updateStandup(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	var req struct {
		Date         *time.Time `json:"date"`
		Participants *[]string  `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	standup, err := s.uc.Standup.Update(r.Context(), labID, standupID, usecase.StandupUpdate{
		Date:         req.Date,
		Participants: req.Participants,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, toStandupResponse(standup))
}

func (s *Server) deleteStandup(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	if err := s.uc.Standup.Delete(r.Context(), labID, standupID); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cancelStandup(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	standup, err := s.uc.Standup.Cancel(r.Context(), labID, standupID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, toStandupResponse(standup))
}

// uploadRecording accepts a finished recording as multipart form data and
// runs it through the capture pipeline. When the transcript is archived but
// the analysis step fails, the partial result is returned with 202 so the
// caller can retry the analysis later instead of re-uploading the audio.
func (s *Server) uploadRecording(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	r.Body = http.MaxBytesReader(w, r.Body, maxRecordingBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close() //nolint:errcheck // read-only multipart part

	audio, err := io.ReadAll(file)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to read audio upload"))
		return
	}

	standup, err := s.uc.Pipeline.ProcessRecording(r.Context(), &usecase.ProcessInput{
		LabID:     labID,
		StandupID: standupID,
		Audio:     audio,
		Filename:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Language:  r.FormValue("language"),
	})

	type response struct {
		Standup       *standupResponse `json:"standup"`
		AnalysisError string           `json:"analysis_error,omitempty"`
	}

	if err != nil {
		if standup == nil {
			errutil.HandleHTTP(r.Context(), w, err)
			return
		}
		respondJSON(r.Context(), w, http.StatusAccepted, response{
			Standup:       toStandupResponse(standup),
			AnalysisError: err.Error(),
		})
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, response{Standup: toStandupResponse(standup)})
}

func parseIntParam(v string, fallback int) int {
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	fromAt := time.Time{}
	toAt := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

	if from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return time.Time{}, time.Time{}, goerr.Wrap(err, "invalid from date")
		}
		fromAt = parsed
	}
	if to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return time.Time{}, time.Time{}, goerr.Wrap(err, "invalid to date")
		}
		toAt = parsed
	}

	return fromAt, toAt, nil
}
