package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/beakerhub/beakerhub/pkg/service/slack"
)

// Slack holds configuration for the Slack announcement client
type Slack struct {
	botToken string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot token for summary announcements (disabled when empty)",
			Sources:     cli.EnvVars("BEAKERHUB_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
	}
}

// IsConfigured reports whether a bot token is set
func (s *Slack) IsConfigured() bool {
	return s.botToken != ""
}

// Configure builds the Slack service. Returns nil when no token is set.
func (s *Slack) Configure() (slack.Service, error) {
	if s.botToken == "" {
		return nil, nil
	}

	svc, err := slack.New(s.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return svc, nil
}
