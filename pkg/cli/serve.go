package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/beakerhub/beakerhub/pkg/cli/config"
	httpctrl "github.com/beakerhub/beakerhub/pkg/controller/http"
	"github.com/beakerhub/beakerhub/pkg/service/analysis"
	"github.com/beakerhub/beakerhub/pkg/service/worker"
	"github.com/beakerhub/beakerhub/pkg/usecase"
	"github.com/beakerhub/beakerhub/pkg/utils/logging"
	"github.com/beakerhub/beakerhub/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var cleanupInterval time.Duration
	var labsCfg config.Labs
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var speechCfg config.Speech
	var mailCfg config.Mail
	var audioCfg config.AudioStore
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("BEAKERHUB_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "cleanup-interval",
			Usage:       "Interval between transcript retention cleanup passes",
			Value:       time.Hour,
			Sources:     cli.EnvVars("BEAKERHUB_CLEANUP_INTERVAL"),
			Destination: &cleanupInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, labsCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, speechCfg.Flags()...)
	flags = append(flags, mailCfg.Flags()...)
	flags = append(flags, audioCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			registry, err := labsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load lab roster")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			ucOpts := []usecase.Option{
				usecase.WithLabs(registry),
				usecase.WithDefaultSender(mailCfg.SenderName(), mailCfg.SenderEmail()),
			}

			if speechCfg.IsConfigured() {
				ucOpts = append(ucOpts, usecase.WithTranscriber(speechCfg.Configure()))
				logging.Default().Info("Speech-to-text provider enabled")
			} else {
				logging.Default().Info("Speech API key not configured, recording uploads will be rejected")
			}

			geminiClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}
			if geminiClient != nil {
				ucOpts = append(ucOpts, usecase.WithAnalyzer(analysis.New(geminiClient)))
				logging.Default().Info("Transcript analysis enabled")
			} else {
				logging.Default().Info("Gemini project not configured, transcripts will be archived without analysis")
			}

			if mailCfg.IsConfigured() {
				ucOpts = append(ucOpts, usecase.WithMailer(mailCfg.Configure()))
				logging.Default().Info("Email transport enabled")
			} else {
				logging.Default().Info("Mail API key not configured, summary emails disabled")
			}

			audioStore, err := audioCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize audio store")
			}
			if audioStore != nil {
				ucOpts = append(ucOpts, usecase.WithAudioStore(audioStore))
				defer safe.Close(ctx, audioStore)
			}

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithSlackService(slackSvc))
				logging.Default().Info("Slack announcements enabled")
			}

			uc := usecase.New(repo, ucOpts...)

			// Start retention cleanup worker
			cleanupWorker := worker.NewRetentionWorker(repo, cleanupInterval)
			if err := cleanupWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start retention worker")
			}

			httpHandler := httpctrl.New(uc,
				httpctrl.WithLabs(registry),
				httpctrl.WithRetentionWorker(cleanupWorker),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				cleanupWorker.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop the cleanup worker before draining connections
				cleanupWorker.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
