package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/usecase"
	"github.com/beakerhub/beakerhub/pkg/utils/errutil"
)

func (s *Server) getTranscript(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	// Resolve through the standup first so the entry stays lab-scoped
	if _, err := s.uc.Standup.Get(r.Context(), labID, standupID); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	entry, err := s.uc.Archive.Get(r.Context(), standupID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, toTranscriptResponse(entry))
}

func (s *Server) deleteTranscript(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	if _, err := s.uc.Standup.Get(r.Context(), labID, standupID); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	deleted, err := s.uc.Archive.Delete(r.Context(), standupID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, struct {
		Deleted bool `json:"deleted"`
	}{Deleted: deleted})
}

func (s *Server) exportTranscript(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	doc, err := s.uc.Archive.Export(r.Context(), labID, standupID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(doc)) //nolint:errcheck // header already committed
}

func (s *Server) extendRetention(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	var req struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := s.uc.Standup.Get(r.Context(), labID, standupID); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	entry, err := s.uc.Archive.ExtendRetention(r.Context(), standupID, req.Days)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, toTranscriptResponse(entry))
}

func (s *Server) searchTranscripts(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	q := r.URL.Query()

	term := strings.TrimSpace(q.Get("q"))
	if term == "" {
		http.Error(w, "search term is required", http.StatusBadRequest)
		return
	}

	entries, total, err := s.uc.Archive.Search(r.Context(), &interfaces.SearchQuery{
		Term:           term,
		LabID:          labID,
		Limit:          parseIntParam(q.Get("limit"), 0),
		Offset:         parseIntParam(q.Get("offset"), 0),
		IncludeExpired: q.Get("include_expired") == "true",
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	resp := struct {
		Transcripts []*transcriptResponse `json:"transcripts"`
		Total       int                   `json:"total"`
	}{
		Transcripts: make([]*transcriptResponse, len(entries)),
		Total:       total,
	}
	for i, entry := range entries {
		resp.Transcripts[i] = toTranscriptResponse(entry)
	}

	respondJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) expiringTranscripts(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")

	days := parseIntParam(r.URL.Query().Get("days"), usecase.DefaultExpiringSoonDays)
	entries, err := s.uc.Archive.ExpiringSoon(r.Context(), labID, days)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	resp := struct {
		Transcripts []*transcriptResponse `json:"transcripts"`
	}{Transcripts: make([]*transcriptResponse, len(entries))}
	for i, entry := range entries {
		resp.Transcripts[i] = toTranscriptResponse(entry)
	}

	respondJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) transcriptStats(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")

	stats, err := s.uc.Archive.Stats(r.Context(), labID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, struct {
		TotalCount   int       `json:"total_count"`
		ExpiredCount int       `json:"expired_count"`
		TotalWords   int64     `json:"total_words"`
		TotalBytes   int64     `json:"total_bytes"`
		GeneratedAt  time.Time `json:"generated_at"`
	}{
		TotalCount:   stats.TotalCount,
		ExpiredCount: stats.ExpiredCount,
		TotalWords:   stats.TotalWords,
		TotalBytes:   stats.TotalBytes,
		GeneratedAt:  time.Now().UTC(),
	})
}
