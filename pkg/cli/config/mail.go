package config

import (
	"github.com/urfave/cli/v3"

	"github.com/beakerhub/beakerhub/pkg/service/mail"
)

// Mail holds configuration for the outbound email transport
type Mail struct {
	apiKey      string
	endpoint    string
	senderName  string
	senderEmail string
}

// Flags returns CLI flags for email transport configuration
func (m *Mail) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "mail-api-key",
			Usage:       "API key for the email delivery provider (email disabled when empty)",
			Sources:     cli.EnvVars("BEAKERHUB_MAIL_API_KEY"),
			Destination: &m.apiKey,
		},
		&cli.StringFlag{
			Name:        "mail-endpoint",
			Usage:       "Override the email delivery provider endpoint",
			Sources:     cli.EnvVars("BEAKERHUB_MAIL_ENDPOINT"),
			Destination: &m.endpoint,
		},
		&cli.StringFlag{
			Name:        "mail-sender-name",
			Usage:       "Default sender display name for summary emails",
			Value:       "BeakerHub",
			Sources:     cli.EnvVars("BEAKERHUB_MAIL_SENDER_NAME"),
			Destination: &m.senderName,
		},
		&cli.StringFlag{
			Name:        "mail-sender-email",
			Usage:       "Default sender address for summary emails",
			Sources:     cli.EnvVars("BEAKERHUB_MAIL_SENDER_EMAIL"),
			Destination: &m.senderEmail,
		},
	}
}

// IsConfigured reports whether an API key is set
func (m *Mail) IsConfigured() bool {
	return m.apiKey != ""
}

// SenderName returns the default sender display name
func (m *Mail) SenderName() string {
	return m.senderName
}

// SenderEmail returns the default sender address
func (m *Mail) SenderEmail() string {
	return m.senderEmail
}

// Configure builds the email transport from the flags
func (m *Mail) Configure() mail.Transport {
	var opts []mail.Option
	if m.endpoint != "" {
		opts = append(opts, mail.WithEndpoint(m.endpoint))
	}
	return mail.New(m.apiKey, opts...)
}
