package analysis_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gt"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/service/analysis"
)

func TestParseResult(t *testing.T) {
	t.Run("complete response", func(t *testing.T) {
		raw := `{
			"summary": "The team is on track for the assay deadline.",
			"action_items": [
				{"task": "rerun the calibration", "assignee": "alice"},
				{"task": "order reagents"}
			],
			"blockers": [
				{"issue": "centrifuge is down", "severity": "high"}
			],
			"updates": ["alice: finished sample prep", "bob: waiting on reagents"]
		}`

		result, err := analysis.ParseResult(raw)
		gt.NoError(t, err).Required()

		gt.Value(t, result.Summary).Equal("The team is on track for the assay deadline.")
		gt.Array(t, result.ActionItems).Length(2)
		gt.Value(t, result.ActionItems[0].Assignee).Equal("alice")
		gt.Value(t, result.ActionItems[1].Assignee).Equal("")
		gt.Array(t, result.Blockers).Length(1)
		gt.Value(t, result.Blockers[0].Severity).Equal(types.BlockerSeverityHigh)
		gt.Array(t, result.Updates).Length(2)
	})

	t.Run("missing fields get empty defaults", func(t *testing.T) {
		result, err := analysis.ParseResult(`{"summary": "quiet day"}`)
		gt.NoError(t, err).Required()

		gt.Value(t, result.Summary).Equal("quiet day")
		gt.Bool(t, result.ActionItems == nil).False()
		gt.Array(t, result.ActionItems).Length(0)
		gt.Bool(t, result.Blockers == nil).False()
		gt.Bool(t, result.Updates == nil).False()
	})

	t.Run("unknown severity maps to medium", func(t *testing.T) {
		raw := `{"summary": "s", "blockers": [{"issue": "power flicker", "severity": "catastrophic"}]}`

		result, err := analysis.ParseResult(raw)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Blockers[0].Severity).Equal(types.BlockerSeverityMedium)
	})

	t.Run("entries without required text are dropped", func(t *testing.T) {
		raw := `{"summary": "s", "action_items": [{"assignee": "bob"}], "blockers": [{"severity": "low"}]}`

		result, err := analysis.ParseResult(raw)
		gt.NoError(t, err).Required()
		gt.Array(t, result.ActionItems).Length(0)
		gt.Array(t, result.Blockers).Length(0)
	})

	t.Run("malformed JSON is a provider error", func(t *testing.T) {
		_, err := analysis.ParseResult("not json at all")
		gt.Bool(t, errors.Is(err, types.ErrProviderError)).True()
	})
}

func TestAnalyzeUnconfigured(t *testing.T) {
	svc := analysis.New(nil)
	gt.Bool(t, svc.IsConfigured()).False()

	_, err := svc.Analyze(context.Background(), "some transcript")
	gt.Bool(t, errors.Is(err, types.ErrProviderUnconfigured)).True()
}

func TestAnalyze_WithRealGemini(t *testing.T) {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT not set")
	}
	location := os.Getenv("TEST_GEMINI_LOCATION")
	if location == "" {
		t.Skip("TEST_GEMINI_LOCATION not set")
	}

	ctx := context.Background()

	llmClient, err := gemini.New(ctx, projectID, location)
	gt.NoError(t, err).Required()

	svc := analysis.New(llmClient)

	transcript := `Alice: Yesterday I finished the sample prep for batch 12. Today I'll start the sequencing run.
Bob: I'm still blocked on the broken centrifuge, facilities said Thursday. Meanwhile I'll clean up the data pipeline.
Carol: Finished the report draft. Can someone review it by Friday? Alice said she would take it.`

	result, err := svc.Analyze(ctx, transcript)
	gt.NoError(t, err).Required()

	gt.Value(t, result.Summary).NotEqual("")
	gt.Bool(t, result.ActionItems == nil).False()
	gt.Bool(t, result.Blockers == nil).False()
	gt.Bool(t, result.Updates == nil).False()
}
