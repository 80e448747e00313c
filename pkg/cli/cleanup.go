package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/beakerhub/beakerhub/pkg/cli/config"
	"github.com/beakerhub/beakerhub/pkg/service/worker"
	"github.com/beakerhub/beakerhub/pkg/utils/logging"
)

func cmdCleanup() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:    "cleanup",
		Aliases: []string{"c"},
		Usage:   "Run one transcript retention cleanup pass and exit",
		Flags:   repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			w := worker.NewRetentionWorker(repo, time.Hour)
			result, err := w.RunOnce(ctx)
			if err != nil {
				return goerr.Wrap(err, "cleanup pass failed")
			}

			printPassResult(result)
			if len(result.Errors) > 0 {
				return goerr.New("cleanup pass finished with errors",
					goerr.V("error_count", len(result.Errors)))
			}
			return nil
		},
	}
}

func printPassResult(result *worker.PassResult) {
	bold := color.New(color.Bold)
	bold.Println("Transcript retention cleanup") //nolint:errcheck
	fmt.Printf("  started:  %s\n", result.StartedAt.Format(time.RFC3339))
	fmt.Printf("  duration: %s\n", result.Duration)

	if result.DeletedCount > 0 {
		color.Green("  deleted:  %d", result.DeletedCount)
	} else {
		fmt.Printf("  deleted:  %d\n", result.DeletedCount)
	}

	for _, err := range result.Errors {
		color.Red("  error: %s", err.Error())
	}
}
