package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/beakerhub/beakerhub/pkg/controller/http"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/repository/memory"
	"github.com/beakerhub/beakerhub/pkg/service/audiostore"
	"github.com/beakerhub/beakerhub/pkg/service/mail"
	"github.com/beakerhub/beakerhub/pkg/service/transcription"
	"github.com/beakerhub/beakerhub/pkg/service/worker"
	"github.com/beakerhub/beakerhub/pkg/usecase"
)

type stubTranscriber struct {
	text string
}

func (s *stubTranscriber) IsConfigured() bool { return true }

func (s *stubTranscriber) Validate(size int64, mediaType string) error { return nil }

func (s *stubTranscriber) Transcribe(ctx context.Context, data []byte, filename string, opts ...transcription.TranscribeOption) (string, error) {
	return s.text, nil
}

type stubAnalyzer struct {
	result *model.AnalysisResult
}

func (s *stubAnalyzer) IsConfigured() bool { return true }

func (s *stubAnalyzer) Analyze(ctx context.Context, transcript string) (*model.AnalysisResult, error) {
	result := s.result.Clone()
	result.EnsureDefaults()
	return result, nil
}

type stubMailer struct {
	sent int
}

func (s *stubMailer) IsConfigured() bool { return true }

func (s *stubMailer) Send(ctx context.Context, msg *mail.Message) (string, error) {
	s.sent++
	return "msg-http-test", nil
}

func newTestServer(t *testing.T) *httpctrl.Server {
	t.Helper()

	labs := model.NewLabRegistry()
	gt.NoError(t, labs.Register(&model.Lab{ID: "lab-genomics", Name: "Genomics Lab"}))

	repo := memory.New()
	uc := usecase.New(repo,
		usecase.WithLabs(labs),
		usecase.WithTranscriber(&stubTranscriber{text: "standup went well today no blockers"}),
		usecase.WithAnalyzer(&stubAnalyzer{result: &model.AnalysisResult{
			Summary: "Everything on track",
			Updates: []string{"sequencing run finished"},
		}}),
		usecase.WithMailer(&stubMailer{}),
		usecase.WithAudioStore(audiostore.NewMemory()),
	)

	cleanup := worker.NewRetentionWorker(repo, time.Hour)

	return httpctrl.New(uc,
		httpctrl.WithLabs(labs),
		httpctrl.WithRetentionWorker(cleanup),
	)
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	reader := bytes.NewReader(nil)
	if body != nil {
		data, err := json.Marshal(body)
		gt.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	gt.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

type standupBody struct {
	ID           string   `json:"id"`
	LabID        string   `json:"lab_id"`
	Status       string   `json:"status"`
	Participants []string `json:"participants"`
	TranscriptID string   `json:"transcript_id"`
	AudioRef     string   `json:"audio_ref"`
	Analysis     *struct {
		Summary string   `json:"summary"`
		Updates []string `json:"updates"`
	} `json:"analysis"`
	Date time.Time `json:"date"`
}

func createStandup(t *testing.T, srv http.Handler) standupBody {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/labs/lab-genomics/standups", map[string]any{
		"participants": []string{"alice", "bob"},
	})
	gt.Number(t, rec.Code).Equal(http.StatusCreated)
	return decodeBody[standupBody](t, rec)
}

func uploadRecording(t *testing.T, srv http.Handler, standupID string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "standup.wav")
	gt.NoError(t, err).Required()
	_, err = part.Write([]byte("RIFF-audio-bytes"))
	gt.NoError(t, err)
	gt.NoError(t, mw.WriteField("language", "en"))
	gt.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost,
		"/api/labs/lab-genomics/standups/"+standupID+"/recording", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestStandupLifecycle(t *testing.T) {
	srv := newTestServer(t)

	created := createStandup(t, srv)
	gt.Value(t, created.Status).Equal("SCHEDULED")
	gt.Array(t, created.Participants).Equal([]string{"alice", "bob"})

	rec := doJSON(t, srv, http.MethodGet, "/api/labs/lab-genomics/standups/"+created.ID, nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	rec = uploadRecording(t, srv, created.ID)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	uploaded := decodeBody[struct {
		Standup standupBody `json:"standup"`
	}](t, rec)
	gt.Value(t, uploaded.Standup.Status).Equal("COMPLETED")
	gt.Value(t, uploaded.Standup.TranscriptID).Equal(created.ID)
	gt.Value(t, uploaded.Standup.Analysis).NotNil()
	gt.Value(t, uploaded.Standup.Analysis.Summary).Equal("Everything on track")

	base := "/api/labs/lab-genomics/standups/" + created.ID

	rec = doJSON(t, srv, http.MethodGet, base+"/transcript", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	transcript := decodeBody[struct {
		Text      string    `json:"text"`
		WordCount int       `json:"word_count"`
		ExpiresAt time.Time `json:"expires_at"`
	}](t, rec)
	gt.Number(t, transcript.WordCount).Equal(6)

	rec = doJSON(t, srv, http.MethodGet, base+"/transcript/export", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Header().Get("Content-Type")).Equal("text/markdown; charset=utf-8")
	gt.Bool(t, strings.Contains(rec.Body.String(), "Genomics Lab")).True()

	rec = doJSON(t, srv, http.MethodPost, base+"/transcript/extend", map[string]any{"days": 15})
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	extended := decodeBody[struct {
		ExpiresAt time.Time `json:"expires_at"`
	}](t, rec)
	gt.Bool(t, extended.ExpiresAt.Equal(transcript.ExpiresAt.AddDate(0, 0, 15))).True()
}

func TestArchiveEndpoints(t *testing.T) {
	srv := newTestServer(t)

	created := createStandup(t, srv)
	rec := uploadRecording(t, srv, created.ID)
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	rec = doJSON(t, srv, http.MethodGet, "/api/labs/lab-genomics/transcripts/search?q=BLOCKERS", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	found := decodeBody[struct {
		Transcripts []struct {
			StandupID string `json:"standup_id"`
		} `json:"transcripts"`
		Total int `json:"total"`
	}](t, rec)
	gt.Number(t, found.Total).Equal(1)
	gt.Value(t, found.Transcripts[0].StandupID).Equal(created.ID)

	rec = doJSON(t, srv, http.MethodGet, "/api/labs/lab-genomics/transcripts/search", nil)
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)

	rec = doJSON(t, srv, http.MethodGet, "/api/labs/lab-genomics/transcripts/expiring?days=40", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	expiring := decodeBody[struct {
		Transcripts []json.RawMessage `json:"transcripts"`
	}](t, rec)
	gt.Array(t, expiring.Transcripts).Length(1)

	rec = doJSON(t, srv, http.MethodGet, "/api/labs/lab-genomics/transcripts/stats", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	stats := decodeBody[struct {
		TotalCount int   `json:"total_count"`
		TotalWords int64 `json:"total_words"`
	}](t, rec)
	gt.Number(t, stats.TotalCount).Equal(1)
	gt.Number(t, stats.TotalWords).Equal(6)

	rec = doJSON(t, srv, http.MethodDelete, "/api/labs/lab-genomics/standups/"+created.ID+"/transcript", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	deleted := decodeBody[struct {
		Deleted bool `json:"deleted"`
	}](t, rec)
	gt.Bool(t, deleted.Deleted).True()

	rec = doJSON(t, srv, http.MethodGet, "/api/labs/lab-genomics/standups/"+created.ID+"/transcript", nil)
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)
}

func TestNotificationEndpoints(t *testing.T) {
	srv := newTestServer(t)

	created := createStandup(t, srv)
	rec := uploadRecording(t, srv, created.ID)
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	base := "/api/labs/lab-genomics/standups/" + created.ID

	sendReq := map[string]any{
		"recipients":   []string{"pi@lab.example"},
		"sender_name":  "BeakerHub",
		"sender_email": "noreply@beakerhub.example",
	}
	rec = doJSON(t, srv, http.MethodPost, base+"/notify", sendReq)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	sent := decodeBody[struct {
		MessageID string `json:"message_id"`
	}](t, rec)
	gt.Value(t, sent.MessageID).Equal("msg-http-test")

	// Second dispatch within the rate-limit window
	rec = doJSON(t, srv, http.MethodPost, base+"/notify", sendReq)
	gt.Number(t, rec.Code).Equal(http.StatusTooManyRequests)

	rec = doJSON(t, srv, http.MethodGet, base+"/notifications", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	history := decodeBody[struct {
		Notifications []json.RawMessage `json:"notifications"`
	}](t, rec)
	gt.Array(t, history.Notifications).Length(1)

	rec = doJSON(t, srv, http.MethodGet, base+"/recipients", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	suggested := decodeBody[struct {
		Recipients []string `json:"recipients"`
	}](t, rec)
	gt.Array(t, suggested.Recipients).Has("alice").Has("bob").Has("pi@lab.example")
}

func TestCleanupEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/cleanup/run", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	result := decodeBody[struct {
		DeletedCount int      `json:"deleted_count"`
		Errors       []string `json:"errors"`
	}](t, rec)
	gt.Number(t, result.DeletedCount).Equal(0)
	gt.Array(t, result.Errors).Length(0)

	rec = doJSON(t, srv, http.MethodGet, "/api/cleanup/status", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	status := decodeBody[struct {
		TimerActive bool       `json:"timer_active"`
		LastRun     *time.Time `json:"last_run"`
	}](t, rec)
	gt.Bool(t, status.TimerActive).False()
	gt.Value(t, status.LastRun).NotNil()
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet,
		"/api/labs/lab-genomics/standups/"+string(model.NewStandupID()), nil)
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)

	rec = doJSON(t, srv, http.MethodPost, "/api/labs/lab-unknown/standups", map[string]any{
		"participants": []string{"alice"},
	})
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)

	created := createStandup(t, srv)
	uploaded := uploadRecording(t, srv, created.ID)
	gt.Number(t, uploaded.Code).Equal(http.StatusOK)

	// Second recording on the same standup
	rec = uploadRecording(t, srv, created.ID)
	gt.Number(t, rec.Code).Equal(http.StatusConflict)

	rec = doJSON(t, srv, http.MethodPost,
		"/api/labs/lab-genomics/standups/"+created.ID+"/transcript/extend",
		map[string]any{"days": 400})
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestListLabs(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/labs", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	labs := decodeBody[struct {
		Labs []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"labs"`
	}](t, rec)
	gt.Array(t, labs.Labs).Length(1)
	gt.Value(t, labs.Labs[0].Name).Equal("Genomics Lab")
}
