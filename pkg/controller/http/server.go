package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/service/worker"
	"github.com/beakerhub/beakerhub/pkg/usecase"
	"github.com/beakerhub/beakerhub/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	worker *worker.RetentionWorker
	labs   *model.LabRegistry
}

type Options func(*Server)

func WithRetentionWorker(w *worker.RetentionWorker) Options {
	return func(s *Server) {
		s.worker = w
	}
}

func WithLabs(labs *model.LabRegistry) Options {
	return func(s *Server) {
		s.labs = labs
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/labs", s.listLabs)

		r.Route("/labs/{labID}", func(r chi.Router) {
			r.Route("/standups", func(r chi.Router) {
				r.Post("/", s.createStandup)
				r.Get("/", s.listStandups)

				r.Route("/{standupID}", func(r chi.Router) {
					r.Get("/", s.getStandup)
					r.Patch("/", s.updateStandup)
					r.Delete("/", s.deleteStandup)
					r.Post("/cancel", s.cancelStandup)
					r.Post("/recording", s.uploadRecording)

					r.Get("/transcript", s.getTranscript)
					r.Delete("/transcript", s.deleteTranscript)
					r.Get("/transcript/export", s.exportTranscript)
					r.Post("/transcript/extend", s.extendRetention)

					r.Post("/notify", s.sendNotification)
					r.Get("/notifications", s.notificationHistory)
					r.Get("/recipients", s.suggestedRecipients)
				})
			})

			r.Route("/transcripts", func(r chi.Router) {
				r.Get("/search", s.searchTranscripts)
				r.Get("/expiring", s.expiringTranscripts)
				r.Get("/stats", s.transcriptStats)
			})
		})

		// Cleanup endpoints (only when the worker is configured)
		if s.worker != nil {
			r.Route("/cleanup", func(r chi.Router) {
				r.Post("/run", s.runCleanup)
				r.Get("/status", s.cleanupStatus)
			})
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) listLabs(w http.ResponseWriter, r *http.Request) {
	type labResponse struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		SlackChannel string `json:"slack_channel,omitempty"`
	}
	type response struct {
		Labs []labResponse `json:"labs"`
	}

	resp := response{Labs: []labResponse{}}
	if s.labs != nil {
		for _, lab := range s.labs.List() {
			resp.Labs = append(resp.Labs, labResponse{
				ID:           lab.ID,
				Name:         lab.Name,
				SlackChannel: lab.SlackChannel,
			})
		}
	}

	respondJSON(r.Context(), w, http.StatusOK, resp)
}
