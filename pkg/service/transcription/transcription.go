package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

const (
	defaultEndpoint = "https://api.mistral.ai/v1/audio/transcriptions"
	defaultModel    = "voxtral-mini-latest"

	// DefaultMaxAudioSize is the largest upload accepted before calling the provider
	DefaultMaxAudioSize = 25 * 1024 * 1024
)

var defaultMediaTypes = []string{
	"audio/wav",
	"audio/x-wav",
	"audio/mpeg",
	"audio/mp4",
	"audio/webm",
	"audio/ogg",
}

// Service converts recorded audio into plain transcript text
type Service interface {
	IsConfigured() bool
	Validate(size int64, mediaType string) error
	Transcribe(ctx context.Context, data []byte, filename string, opts ...TranscribeOption) (string, error)
}

type TranscribeOption func(*transcribeConfig)

type transcribeConfig struct {
	language string
}

// WithLanguage passes a language hint to the provider
func WithLanguage(lang string) TranscribeOption {
	return func(c *transcribeConfig) {
		c.language = lang
	}
}

type client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
	maxSize    int64
	mediaTypes []string
}

// Option is a functional option for client configuration
type Option func(*client)

func WithEndpoint(endpoint string) Option {
	return func(c *client) {
		c.endpoint = endpoint
	}
}

func WithModel(model string) Option {
	return func(c *client) {
		c.model = model
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

func WithMaxAudioSize(size int64) Option {
	return func(c *client) {
		c.maxSize = size
	}
}

// New creates a speech-to-text gateway. An empty API key is allowed and makes
// IsConfigured return false.
func New(apiKey string, opts ...Option) Service {
	c := &client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		model:      defaultModel,
		httpClient: http.DefaultClient,
		maxSize:    DefaultMaxAudioSize,
		mediaTypes: defaultMediaTypes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) IsConfigured() bool {
	return c.apiKey != ""
}

// Validate checks declared size and media type before any upload happens
func (c *client) Validate(size int64, mediaType string) error {
	if size <= 0 {
		return goerr.Wrap(types.ErrInvalidAudio, "audio payload is empty")
	}
	if size > c.maxSize {
		return goerr.Wrap(types.ErrInvalidAudio, "audio exceeds size limit",
			goerr.V("size", size),
			goerr.V("limit", c.maxSize))
	}

	base := strings.ToLower(mediaType)
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = strings.TrimSpace(base[:idx])
	}
	if !slices.Contains(c.mediaTypes, base) {
		return goerr.Wrap(types.ErrInvalidAudio, "unsupported media type",
			goerr.V("mediaType", mediaType))
	}

	return nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads audio bytes and returns the transcript text. There are
// no partial results: a provider failure returns no text at all.
func (c *client) Transcribe(ctx context.Context, data []byte, filename string, opts ...TranscribeOption) (string, error) {
	if !c.IsConfigured() {
		return "", goerr.Wrap(types.ErrProviderUnconfigured, "speech-to-text API key is not set")
	}

	var cfg transcribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", c.model); err != nil {
		return "", goerr.Wrap(err, "failed to write model field")
	}
	if cfg.language != "" {
		if err := writer.WriteField("language", cfg.language); err != nil {
			return "", goerr.Wrap(err, "failed to write language field")
		}
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create audio form part")
	}
	if _, err := part.Write(data); err != nil {
		return "", goerr.Wrap(err, "failed to write audio payload")
	}
	if err := writer.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build transcription request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(types.ErrProviderError, "transcription request failed", goerr.V("error", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(types.ErrProviderError, "failed to read transcription response", goerr.V("error", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", goerr.Wrap(types.ErrProviderError, "transcription provider returned an error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", truncate(string(respBody), 512)))
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", goerr.Wrap(types.ErrProviderError, "failed to parse transcription response", goerr.V("error", err))
	}

	return parsed.Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
