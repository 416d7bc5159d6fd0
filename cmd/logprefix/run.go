package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bethropolis/logprefix/internal/config"
	"github.com/bethropolis/logprefix/internal/diag"
	"github.com/bethropolis/logprefix/internal/event"
	"github.com/bethropolis/logprefix/internal/logger"
	"github.com/bethropolis/logprefix/internal/pipeline"
)

// runTransform executes the root command: it transforms stdin when the only
// path is "-", otherwise every file under the given paths.
func runTransform(cmd *cobra.Command, args []string) error {
	cfg, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(args) == 1 && args[0] == "-" {
		return runStdin(ctx, cmd, cfg)
	}

	events := event.NewManager()
	quiet, _ := cmd.Flags().GetBool("quiet")
	newReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), quiet).subscribe(events)

	runner, err := newRunner(cfg, events)
	if err != nil {
		return err
	}
	summary, err := runner.Run(ctx, args)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d %s failed", summary.Failed, plural(summary.Failed, "file", "files"))
	}
	return nil
}

func runStdin(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	opts, err := cfg.PluginOptions()
	if err != nil {
		return err
	}
	opts.Warner = diag.Log
	plugin, err := pipeline.NewPlugin(opts)
	if err != nil {
		return err
	}
	runOpts := cfg.RunnerOptions()
	runOpts.DryRun = true
	runner, err := pipeline.NewRunner(plugin, runOpts, nil)
	if err != nil {
		return err
	}
	id, _ := cmd.Flags().GetString("stdin-filename")
	return runner.Stream(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), id)
}

// newRunner builds the plugin and runner, routing warnings to both the log
// and the event bus.
func newRunner(cfg *config.Config, events *event.Manager) (*pipeline.Runner, error) {
	opts, err := cfg.PluginOptions()
	if err != nil {
		return nil, err
	}
	opts.Warner = diag.Multi(diag.Log, pipeline.EventWarner(events))
	plugin, err := pipeline.NewPlugin(opts)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Plugin %s: levels %v, policy %s", plugin.Name(), cfg.Transform.LogLevels, opts.Policy.Name())
	return pipeline.NewRunner(plugin, cfg.RunnerOptions(), events)
}
