package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

const defaultEndpoint = "https://api.resend.com/emails"

// Transport delivers one email and returns the provider-assigned message ID
type Transport interface {
	IsConfigured() bool
	Send(ctx context.Context, msg *Message) (string, error)
}

// Message is a single outbound email
type Message struct {
	SenderName  string
	SenderEmail string
	Recipients  []string
	Subject     string
	Body        string
}

type client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

func WithEndpoint(endpoint string) Option {
	return func(c *client) {
		c.endpoint = endpoint
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// New creates an HTTP email transport. An empty API key is allowed and makes
// IsConfigured return false.
func New(apiKey string, opts ...Option) Transport {
	c := &client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) IsConfigured() bool {
	return c.apiKey != ""
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send posts the message to the provider. Delivery failures are not retried.
func (c *client) Send(ctx context.Context, msg *Message) (string, error) {
	if !c.IsConfigured() {
		return "", goerr.Wrap(types.ErrProviderUnconfigured, "email API key is not set")
	}
	if len(msg.Recipients) == 0 {
		return "", goerr.New("at least one recipient is required")
	}

	from := msg.SenderEmail
	if msg.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", msg.SenderName, msg.SenderEmail)
	}

	payload, err := json.Marshal(sendRequest{
		From:    from,
		To:      msg.Recipients,
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", goerr.Wrap(err, "failed to build email request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(types.ErrDeliveryFailed, "email request failed", goerr.V("error", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(types.ErrDeliveryFailed, "failed to read email response", goerr.V("error", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", goerr.Wrap(types.ErrDeliveryFailed, "email provider rejected the message",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)))
	}

	var parsed sendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", goerr.Wrap(types.ErrDeliveryFailed, "failed to parse email response", goerr.V("error", err))
	}

	return parsed.ID, nil
}
