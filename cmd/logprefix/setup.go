package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bethropolis/logprefix/internal/config"
	"github.com/bethropolis/logprefix/internal/logger"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

// setup loads the configuration, starts the logger and applies the color
// mode. The returned closer flushes the log file.
func setup(cmd *cobra.Command) (*config.Config, io.Closer, error) {
	cfg, err := config.LoadConfig(flags.ConfigFilePath, &flags)
	if err != nil {
		return nil, nil, err
	}
	closer, err := logger.Setup(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	cfg.ReportUndecoded()
	if cfg.Path != "" {
		logger.Debugf("Loaded configuration from %s", cfg.Path)
	}

	mode, _ := cmd.Flags().GetString("color")
	configureColor(mode, os.Stdout)
	return cfg, closer, nil
}

func configureColor(mode string, out *os.File) {
	switch mode {
	case "on", "always":
		color.NoColor = false
	case "off", "never":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(out)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
