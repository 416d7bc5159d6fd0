package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bethropolis/logprefix/internal/config"
	"github.com/bethropolis/logprefix/internal/event"
	"github.com/bethropolis/logprefix/internal/logger"
	"github.com/bethropolis/logprefix/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <path>...",
	Short: "Transform the paths, then again whenever a file changes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

// runWatch runs a full pass and then re-transforms changed files until
// interrupted. Writing in place is refused since every write would
// trigger another pass.
func runWatch(cmd *cobra.Command, args []string) error {
	cfg, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()
	if cfg.Output.InPlace {
		return config.ErrWatchInPlace
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := event.NewManager()
	quiet, _ := cmd.Flags().GetBool("quiet")
	newReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), quiet).subscribe(events)

	runner, err := newRunner(cfg, events)
	if err != nil {
		return err
	}
	if _, err := runner.Run(ctx, args); err != nil {
		return err
	}

	w, err := watch.New(runner, args, cfg.WatchDebounce(), cfg.Output.Dir)
	if err != nil {
		return err
	}
	logger.Infof("Watching for changes, press Ctrl+C to stop")
	return w.Run(ctx)
}
