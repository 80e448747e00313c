package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/beakerhub/beakerhub/pkg/domain/model"
)

// Service posts standup summaries into a lab's Slack channel
type Service interface {
	// AnnounceSummary posts the analysis of a completed standup and returns
	// the message timestamp.
	AnnounceSummary(ctx context.Context, channelID string, standup *model.Standup, labName string) (string, error)
}

// client implements Service interface
type client struct {
	api *slack.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		api: slack.New(token),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) AnnounceSummary(ctx context.Context, channelID string, standup *model.Standup, labName string) (string, error) {
	if standup.Analysis == nil {
		return "", goerr.New("standup has no analysis to announce")
	}

	blocks := buildSummaryBlocks(standup, labName)
	fallback := fmt.Sprintf("Standup summary for %s (%s)", labName, standup.Date.Format("2006-01-02"))

	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post standup summary",
			goerr.V("channelID", channelID))
	}

	return ts, nil
}

func buildSummaryBlocks(standup *model.Standup, labName string) []slack.Block {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(
		slack.PlainTextType,
		fmt.Sprintf("Standup: %s (%s)", labName, standup.Date.Format("2006-01-02")),
		false, false,
	))

	blocks := []slack.Block{
		header,
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, standup.Analysis.Summary, false, false),
			nil, nil,
		),
	}

	if len(standup.Analysis.ActionItems) > 0 {
		var sb strings.Builder
		sb.WriteString("*Action items*\n")
		for _, item := range standup.Analysis.ActionItems {
			if item.Assignee != "" {
				fmt.Fprintf(&sb, "• %s (%s)\n", item.Task, item.Assignee)
			} else {
				fmt.Fprintf(&sb, "• %s\n", item.Task)
			}
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, sb.String(), false, false),
			nil, nil,
		))
	}

	if len(standup.Analysis.Blockers) > 0 {
		var sb strings.Builder
		sb.WriteString("*Blockers*\n")
		for _, b := range standup.Analysis.Blockers {
			fmt.Fprintf(&sb, "• [%s] %s\n", b.Severity, b.Issue)
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, sb.String(), false, false),
			nil, nil,
		))
	}

	return blocks
}
