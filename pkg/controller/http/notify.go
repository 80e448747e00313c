package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/usecase"
	"github.com/beakerhub/beakerhub/pkg/utils/errutil"
)

func (s *Server) sendNotification(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	var req struct {
		Recipients  []string `json:"recipients"`
		SenderName  string   `json:"sender_name"`
		SenderEmail string   `json:"sender_email"`
		Subject     string   `json:"subject"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := s.uc.Notify.Send(r.Context(), &usecase.SendInput{
		LabID:       labID,
		StandupID:   standupID,
		Recipients:  req.Recipients,
		SenderName:  req.SenderName,
		SenderEmail: req.SenderEmail,
		Subject:     req.Subject,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, toEmailLogResponse(entry))
}

func (s *Server) notificationHistory(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	if _, err := s.uc.Standup.Get(r.Context(), labID, standupID); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	entries, err := s.uc.Notify.History(r.Context(), standupID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	resp := struct {
		Notifications []*emailLogResponse `json:"notifications"`
	}{Notifications: make([]*emailLogResponse, len(entries))}
	for i, entry := range entries {
		resp.Notifications[i] = toEmailLogResponse(entry)
	}

	respondJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) suggestedRecipients(w http.ResponseWriter, r *http.Request) {
	labID := chi.URLParam(r, "labID")
	standupID := model.StandupID(chi.URLParam(r, "standupID"))

	recipients, err := s.uc.Notify.SuggestedRecipients(r.Context(), labID, standupID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, struct {
		Recipients []string `json:"recipients"`
	}{Recipients: recipients})
}
