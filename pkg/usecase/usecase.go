package usecase

import (
	"time"

	"github.com/beakerhub/beakerhub/pkg/domain/interfaces"
	"github.com/beakerhub/beakerhub/pkg/domain/model"
	"github.com/beakerhub/beakerhub/pkg/service/analysis"
	"github.com/beakerhub/beakerhub/pkg/service/audiostore"
	"github.com/beakerhub/beakerhub/pkg/service/mail"
	"github.com/beakerhub/beakerhub/pkg/service/slack"
	"github.com/beakerhub/beakerhub/pkg/service/transcription"
)

type UseCases struct {
	repo         interfaces.Repository
	labs         *model.LabRegistry
	transcriber  transcription.Service
	analyzer     analysis.Service
	mailer       mail.Transport
	audioStore   audiostore.Store
	slackService slack.Service
	now          func() time.Time

	defaultSenderName  string
	defaultSenderEmail string

	Standup  *StandupUseCase
	Archive  *ArchiveUseCase
	Notify   *NotifyUseCase
	Pipeline *PipelineUseCase
}

type Option func(*UseCases)

func WithLabs(labs *model.LabRegistry) Option {
	return func(uc *UseCases) {
		uc.labs = labs
	}
}

func WithTranscriber(svc transcription.Service) Option {
	return func(uc *UseCases) {
		uc.transcriber = svc
	}
}

func WithAnalyzer(svc analysis.Service) Option {
	return func(uc *UseCases) {
		uc.analyzer = svc
	}
}

func WithMailer(transport mail.Transport) Option {
	return func(uc *UseCases) {
		uc.mailer = transport
	}
}

func WithAudioStore(store audiostore.Store) Option {
	return func(uc *UseCases) {
		uc.audioStore = store
	}
}

func WithSlackService(svc slack.Service) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
	}
}

func WithDefaultSender(name, email string) Option {
	return func(uc *UseCases) {
		uc.defaultSenderName = name
		uc.defaultSenderEmail = email
	}
}

func WithNowFunc(fn func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = fn
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		labs: model.NewLabRegistry(),
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Standup = NewStandupUseCase(repo, uc.now)
	uc.Archive = NewArchiveUseCase(repo, uc.labs, uc.now)
	uc.Notify = NewNotifyUseCase(repo, uc.mailer, uc.labs, uc.slackService, uc.now)
	uc.Notify.SetDefaultSender(uc.defaultSenderName, uc.defaultSenderEmail)
	uc.Pipeline = NewPipelineUseCase(uc.Standup, uc.audioStore, uc.transcriber, uc.analyzer)

	return uc
}
