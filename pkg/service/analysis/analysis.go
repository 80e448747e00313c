package analysis

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

// Service extracts structured standup insight from a transcript
type Service interface {
	IsConfigured() bool
	Analyze(ctx context.Context, transcript string) (*model.AnalysisResult, error)
}

// client implements Service interface
type client struct {
	llmClient gollem.LLMClient
}

// Option is a functional option for client configuration
type Option func(*client)

// New creates an analysis engine. A nil LLM client is allowed and makes
// IsConfigured return false.
func New(llmClient gollem.LLMClient, opts ...Option) Service {
	c := &client{
		llmClient: llmClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) IsConfigured() bool {
	return c.llmClient != nil
}

// Analyze runs the transcript through the LLM and returns a result with all
// four fields present. Missing sub-fields in the provider response are
// replaced with empty defaults instead of failing the call.
func (c *client) Analyze(ctx context.Context, transcript string) (*model.AnalysisResult, error) {
	if !c.IsConfigured() {
		return nil, goerr.Wrap(types.ErrProviderUnconfigured, "LLM client is not configured")
	}

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(types.ErrProviderError, "failed to create LLM session", goerr.V("error", err))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(transcript)))
	if err != nil {
		return nil, goerr.Wrap(types.ErrProviderError, "failed to generate analysis", goerr.V("error", err))
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.Wrap(types.ErrProviderError, "LLM returned no content")
	}

	return parseResult(resp.Texts[0])
}

const systemPrompt = `You are an assistant that analyzes lab standup meeting transcripts.
Extract the following from the transcript:
1. summary: a short paragraph summarizing the standup.
2. action_items: concrete tasks mentioned, each with the assignee when one is named.
3. blockers: problems blocking progress, each with a severity of low, medium, high or critical.
4. updates: one entry per participant update, in the speaker's own words condensed.
Respond in the same language as the transcript. Use empty arrays when a category has no entries.`

func buildUserPrompt(transcript string) string {
	var sb strings.Builder
	sb.WriteString("## Transcript\n\n")
	sb.WriteString(transcript)
	return sb.String()
}

// buildResponseSchema creates the JSON schema for structured output
func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "StandupAnalysisResponse",
		Description: "Structured insight extracted from a standup transcript",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"summary": {
				Type:        gollem.TypeString,
				Description: "Short summary of the standup",
				Required:    true,
			},
			"action_items": {
				Type:        gollem.TypeArray,
				Description: "Concrete tasks mentioned in the standup",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"task": {
							Type:        gollem.TypeString,
							Description: "What needs to be done",
							Required:    true,
						},
						"assignee": {
							Type:        gollem.TypeString,
							Description: "Who the task is assigned to, empty when unassigned",
						},
					},
				},
			},
			"blockers": {
				Type:        gollem.TypeArray,
				Description: "Problems blocking progress",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"issue": {
							Type:        gollem.TypeString,
							Description: "Description of the blocker",
							Required:    true,
						},
						"severity": {
							Type:        gollem.TypeString,
							Description: "One of low, medium, high, critical",
						},
					},
				},
			},
			"updates": {
				Type:        gollem.TypeArray,
				Description: "One entry per participant update",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeString,
				},
			},
		},
	}
}

type llmResponse struct {
	Summary     string `json:"summary"`
	ActionItems []struct {
		Task     string `json:"task"`
		Assignee string `json:"assignee"`
	} `json:"action_items"`
	Blockers []struct {
		Issue    string `json:"issue"`
		Severity string `json:"severity"`
	} `json:"blockers"`
	Updates []string `json:"updates"`
}

// parseResult converts the raw LLM text into an AnalysisResult, substituting
// empty defaults for anything missing.
func parseResult(raw string) (*model.AnalysisResult, error) {
	var parsed llmResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, goerr.Wrap(types.ErrProviderError, "failed to parse LLM response",
			goerr.V("response", raw))
	}

	result := &model.AnalysisResult{
		Summary: parsed.Summary,
	}
	for _, item := range parsed.ActionItems {
		if item.Task == "" {
			continue
		}
		result.ActionItems = append(result.ActionItems, model.ActionItem{
			Task:     item.Task,
			Assignee: item.Assignee,
		})
	}
	for _, b := range parsed.Blockers {
		if b.Issue == "" {
			continue
		}
		result.Blockers = append(result.Blockers, model.Blocker{
			Issue:    b.Issue,
			Severity: types.BlockerSeverity(strings.ToUpper(b.Severity)).Normalize(),
		})
	}
	result.Updates = parsed.Updates
	result.EnsureDefaults()

	return result, nil
}
