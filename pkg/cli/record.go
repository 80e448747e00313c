package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/beakerhub/beakerhub/pkg/service/recorder"
	"github.com/beakerhub/beakerhub/pkg/utils/logging"
)

func defaultCaptureFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "alsa"
	}
}

func cmdRecord() *cli.Command {
	var format string
	var device string
	var output string
	var maxDuration time.Duration

	return &cli.Command{
		Name:    "record",
		Aliases: []string{"r"},
		Usage:   "Record standup audio from the microphone to a WAV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "capture-format",
				Usage:       "ffmpeg input format (alsa, avfoundation, dshow, pulse)",
				Value:       defaultCaptureFormat(),
				Sources:     cli.EnvVars("BEAKERHUB_CAPTURE_FORMAT"),
				Destination: &format,
			},
			&cli.StringFlag{
				Name:        "capture-device",
				Usage:       "ffmpeg input device name",
				Value:       "default",
				Sources:     cli.EnvVars("BEAKERHUB_CAPTURE_DEVICE"),
				Destination: &device,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output WAV file path (defaults to standup-<timestamp>.wav)",
				Destination: &output,
			},
			&cli.DurationFlag{
				Name:        "max-duration",
				Usage:       "Stop recording automatically after this duration (0 = until interrupted)",
				Destination: &maxDuration,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if output == "" {
				output = fmt.Sprintf("standup-%s.wav", time.Now().Format("20060102-150405"))
			}

			rec := recorder.New(recorder.NewFFmpegSource(format, device))
			if err := rec.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start recording")
			}

			color.Green("Recording... press Ctrl+C to stop") //nolint:errcheck
			logging.Default().Info("recording started",
				"format", format, "device", device, "output", output)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			var timeout <-chan time.Time
			if maxDuration > 0 {
				timer := time.NewTimer(maxDuration)
				defer timer.Stop()
				timeout = timer.C
			}

			select {
			case <-sigCh:
			case <-timeout:
				logging.Default().Info("max duration reached, stopping")
			case <-ctx.Done():
			}

			artifact, err := rec.Stop()
			if err != nil {
				return goerr.Wrap(err, "failed to stop recording")
			}
			if artifact == nil {
				return goerr.New("recording produced no audio")
			}

			data, err := artifact.Bytes()
			if err != nil {
				return goerr.Wrap(err, "failed to read recorded audio")
			}
			if err := os.WriteFile(output, data, 0600); err != nil {
				return goerr.Wrap(err, "failed to write output file", goerr.V("path", output))
			}

			color.Green("Saved %s (%s, %d bytes)", output, artifact.Duration().Round(time.Second), len(data)) //nolint:errcheck
			return nil
		},
	}
}
