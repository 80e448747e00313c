package mail_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/service/mail"
)

func TestSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer test-key")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&got)).Required()
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]string{"id": "msg-123"}))
	}))
	defer srv.Close()

	transport := mail.New("test-key", mail.WithEndpoint(srv.URL))

	id, err := transport.Send(context.Background(), &mail.Message{
		SenderName:  "Ada Lovelace",
		SenderEmail: "ada@lab.example",
		Recipients:  []string{"pi@lab.example"},
		Subject:     "Standup summary",
		Body:        "All on track.",
	})
	gt.NoError(t, err).Required()

	gt.Value(t, id).Equal("msg-123")
	gt.Value(t, got["from"]).Equal("Ada Lovelace <ada@lab.example>")
	gt.Value(t, got["subject"]).Equal("Standup summary")
}

func TestSendUnconfigured(t *testing.T) {
	transport := mail.New("")
	gt.Bool(t, transport.IsConfigured()).False()

	_, err := transport.Send(context.Background(), &mail.Message{
		SenderEmail: "ada@lab.example",
		Recipients:  []string{"pi@lab.example"},
	})
	gt.Bool(t, errors.Is(err, types.ErrProviderUnconfigured)).True()
}

func TestSendDeliveryFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid recipient"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	transport := mail.New("test-key", mail.WithEndpoint(srv.URL))

	_, err := transport.Send(context.Background(), &mail.Message{
		SenderEmail: "ada@lab.example",
		Recipients:  []string{"not-an-address"},
	})
	gt.Bool(t, errors.Is(err, types.ErrDeliveryFailed)).True()
}
