package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/domain/types"
	"github.com/beakerhub/beakerhub/pkg/service/mail"
	"github.com/beakerhub/beakerhub/pkg/service/slack"
	"github.com/beakerhub/beakerhub/pkg/utils/async"
	"github.com/beakerhub/beakerhub/pkg/utils/logging"
)

// RateLimitWindow is the trailing window in which a standup summary is sent
// at most once
const RateLimitWindow = time.Hour

type NotifyUseCase struct {
	repo         interfaces.Repository
	mailer       mail.Transport
	labs         *model.LabRegistry
	slackService slack.Service
	now          func() time.Time

	defaultSenderName  string
	defaultSenderEmail string
}

func NewNotifyUseCase(repo interfaces.Repository, mailer mail.Transport, labs *model.LabRegistry, slackService slack.Service, now func() time.Time) *NotifyUseCase {
	return &NotifyUseCase{
		repo:         repo,
		mailer:       mailer,
		labs:         labs,
		slackService: slackService,
		now:          now,
	}
}

// SetDefaultSender sets the sender used when a request does not name one
func (uc *NotifyUseCase) SetDefaultSender(name, email string) {
	uc.defaultSenderName = name
	uc.defaultSenderEmail = email
}

// WasRecentlySent reports whether a summary email for the standup went out
// within the trailing window
func (uc *NotifyUseCase) WasRecentlySent(ctx context.Context, standupID model.StandupID, window time.Duration) (bool, error) {
	entries, err := uc.repo.EmailLog().ListSince(ctx, standupID, uc.now().Add(-window))
	if err != nil {
		return false, goerr.Wrap(err, "failed to check email log", goerr.V(types.StandupIDKey, standupID))
	}
	return len(entries) > 0, nil
}

// SendInput describes one summary email request
type SendInput struct {
	LabID       string
	StandupID   model.StandupID
	Recipients  []string
	SenderName  string
	SenderEmail string
	Subject     string
}

// Send emails the standup summary. A standup is mailed at most once per
// rate-limit window; the dispatch is recorded in the email log. When the lab
// has a Slack channel configured, the summary is announced there as well,
// best effort.
func (uc *NotifyUseCase) Send(ctx context.Context, input *SendInput) (*model.EmailLog, error) {
	if uc.mailer == nil {
		return nil, goerr.Wrap(types.ErrProviderUnconfigured, "email transport is not configured")
	}
	if len(input.Recipients) == 0 {
		return nil, goerr.Wrap(types.ErrValidation, "at least one recipient is required")
	}
	if input.SenderEmail == "" {
		input.SenderName = uc.defaultSenderName
		input.SenderEmail = uc.defaultSenderEmail
	}
	if input.SenderEmail == "" {
		return nil, goerr.Wrap(types.ErrValidation, "sender email is required")
	}

	standup, err := uc.repo.Standup().Get(ctx, input.LabID, input.StandupID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get standup for notification", goerr.V(types.StandupIDKey, input.StandupID))
	}

	recent, err := uc.WasRecentlySent(ctx, input.StandupID, RateLimitWindow)
	if err != nil {
		return nil, err
	}
	if recent {
		return nil, goerr.Wrap(types.ErrRateLimited, "summary was already sent within the last hour",
			goerr.V(types.StandupIDKey, input.StandupID))
	}

	labName := input.LabID
	var lab *model.Lab
	if uc.labs != nil {
		if l, err := uc.labs.Get(input.LabID); err == nil {
			lab = l
			labName = l.Name
		}
	}

	subject := input.Subject
	if subject == "" {
		subject = fmt.Sprintf("Standup summary: %s (%s)", labName, standup.Date.Format("2006-01-02"))
	}

	messageID, err := uc.mailer.Send(ctx, &mail.Message{
		SenderName:  input.SenderName,
		SenderEmail: input.SenderEmail,
		Recipients:  input.Recipients,
		Subject:     subject,
		Body:        buildEmailBody(standup, labName),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send summary email", goerr.V(types.StandupIDKey, input.StandupID))
	}

	entry, err := uc.repo.EmailLog().Append(ctx, &model.EmailLog{
		StandupID:  input.StandupID,
		LabID:      input.LabID,
		Recipients: input.Recipients,
		MessageID:  messageID,
		SentAt:     uc.now(),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to record email dispatch", goerr.V(types.StandupIDKey, input.StandupID))
	}

	if uc.slackService != nil && lab != nil && lab.SlackChannel != "" && standup.Analysis != nil {
		channel := lab.SlackChannel
		async.Dispatch(ctx, func(ctx context.Context) error {
			if _, err := uc.slackService.AnnounceSummary(ctx, channel, standup, labName); err != nil {
				logging.From(ctx).Warn("failed to announce summary on Slack",
					"standupID", input.StandupID,
					"channel", channel,
					"error", err)
			}
			return nil
		})
	}

	return entry, nil
}

// SuggestedRecipients merges the standup's participants with everyone the lab
// has mailed before, de-duplicated and sorted
func (uc *NotifyUseCase) SuggestedRecipients(ctx context.Context, labID string, standupID model.StandupID) ([]string, error) {
	standup, err := uc.repo.Standup().Get(ctx, labID, standupID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get standup for suggestions", goerr.V(types.StandupIDKey, standupID))
	}

	seen := make(map[string]struct{})
	var suggestions []string
	add := func(addr string) {
		key := strings.ToLower(strings.TrimSpace(addr))
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, strings.TrimSpace(addr))
	}

	for _, p := range standup.Participants {
		add(p)
	}

	prior, err := uc.repo.EmailLog().ListByLabID(ctx, labID, 100)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list prior recipients", goerr.V(types.LabIDKey, labID))
	}
	for _, e := range prior {
		for _, r := range e.Recipients {
			add(r)
		}
	}

	sort.Strings(suggestions)
	return suggestions, nil
}

// History returns all dispatch log entries for the standup, most recent first
func (uc *NotifyUseCase) History(ctx context.Context, standupID model.StandupID) ([]*model.EmailLog, error) {
	entries, err := uc.repo.EmailLog().ListByStandupID(ctx, standupID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list email history", goerr.V(types.StandupIDKey, standupID))
	}
	return entries, nil
}

func buildEmailBody(standup *model.Standup, labName string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Standup summary for %s on %s\n\n", labName, standup.Date.Format("2006-01-02"))

	if standup.Analysis == nil {
		sb.WriteString("No analysis is available for this standup yet.\n")
		return sb.String()
	}

	sb.WriteString(standup.Analysis.Summary)
	sb.WriteString("\n")

	if len(standup.Analysis.ActionItems) > 0 {
		sb.WriteString("\nAction items:\n")
		for _, item := range standup.Analysis.ActionItems {
			if item.Assignee != "" {
				fmt.Fprintf(&sb, "- %s (%s)\n", item.Task, item.Assignee)
			} else {
				fmt.Fprintf(&sb, "- %s\n", item.Task)
			}
		}
	}

	if len(standup.Analysis.Blockers) > 0 {
		sb.WriteString("\nBlockers:\n")
		for _, b := range standup.Analysis.Blockers {
			fmt.Fprintf(&sb, "- [%s] %s\n", b.Severity, b.Issue)
		}
	}

	if len(standup.Analysis.Updates) > 0 {
		sb.WriteString("\nUpdates:\n")
		for _, u := range standup.Analysis.Updates {
			fmt.Fprintf(&sb, "- %s\n", u)
		}
	}

	return sb.String()
}
