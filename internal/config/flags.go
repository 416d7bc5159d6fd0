// internal/config/flags.go
package config

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bethropolis/logprefix/internal/logger"
	"github.com/bethropolis/logprefix/internal/policy"
)

// Flags holds values parsed from command-line flags. Only flags the user
// actually set override the config file.
type Flags struct {
	fs *pflag.FlagSet

	ConfigFilePath string
	LogLevel       string
	LogFilePath    string
	EnableTags     []string
	DisableTags    []string
	EnablePkgs     []string
	DisablePkgs    []string

	Levels         []string
	NoSourceMap    bool
	Lowres         bool
	PrefixMethod   string
	Policy         string
	ExtraReceivers []string

	Include []string
	Exclude []string

	OutDir    string
	InPlace   bool
	DryRun    bool
	InlineMap bool
	Jobs      int
}

// DefineFlags registers the flags on fs.
func (f *Flags) DefineFlags(fs *pflag.FlagSet) {
	f.fs = fs
	fs.StringVarP(&f.ConfigFilePath, "config", "c", "", fmt.Sprintf("Path to TOML configuration file (default ./%s or ~/.config/%s/%s)", LocalConfigFileName, AppName, DefaultConfigFileName))
	fs.StringVar(&f.LogLevel, "loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	fs.StringVar(&f.LogFilePath, "logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	fs.StringSliceVar(&f.EnableTags, "log-tags", nil, "Tags to enable - Overrides config file")
	fs.StringSliceVar(&f.DisableTags, "log-disable-tags", nil, "Tags to disable - Overrides config file")
	fs.StringSliceVar(&f.EnablePkgs, "log-packages", nil, "Packages to enable - Overrides config file")
	fs.StringSliceVar(&f.DisablePkgs, "log-disable-packages", nil, "Packages to disable - Overrides config file")

	fs.StringSliceVarP(&f.Levels, "levels", "l", nil, "Logger methods to rewrite (default trace,debug,info,warn,error)")
	fs.BoolVar(&f.NoSourceMap, "no-source-map", false, "Do not generate source maps")
	fs.BoolVar(&f.Lowres, "lowres", false, "Emit one mapping per unchanged run instead of per character")
	fs.StringVar(&f.PrefixMethod, "prefix-method", "", "Method called on the logger to format arguments (default prefix)")
	fs.StringVar(&f.Policy, "policy", "", fmt.Sprintf("Receiver policy, one of %v", policy.Available()))
	fs.StringSliceVar(&f.ExtraReceivers, "receiver", nil, "Extra receiver identifiers to accept")

	fs.StringSliceVar(&f.Include, "include", nil, "Glob patterns of files to transform")
	fs.StringSliceVar(&f.Exclude, "exclude", nil, "Glob patterns of files to leave alone")

	fs.StringVarP(&f.OutDir, "out-dir", "o", "", "Directory to write results to, mirroring the input tree")
	fs.BoolVarP(&f.InPlace, "in-place", "i", false, "Overwrite input files")
	fs.BoolVarP(&f.DryRun, "dry-run", "n", false, "Report what would change without writing")
	fs.BoolVar(&f.InlineMap, "inline-source-map", false, "Embed source maps as data URLs")
	fs.IntVarP(&f.Jobs, "jobs", "j", 0, "Files processed concurrently (default GOMAXPROCS)")
}

// ApplyOverrides updates cfg with the flags that were set.
func (f *Flags) ApplyOverrides(cfg *Config) {
	if f.fs == nil {
		return
	}
	f.fs.VisitAll(func(fl *pflag.Flag) {
		if !fl.Changed {
			return
		}
		logger.DebugTagf("config", "Applying flag override: %s=%s", fl.Name, fl.Value.String())
		switch fl.Name {
		case "loglevel":
			if f.LogLevel != "" {
				cfg.Logger.LogLevel = f.LogLevel
			}
		case "logfile":
			cfg.Logger.LogFilePath = f.LogFilePath
		case "log-tags":
			cfg.Logger.EnabledTags = f.EnableTags
		case "log-disable-tags":
			cfg.Logger.DisabledTags = f.DisableTags
		case "log-packages":
			cfg.Logger.EnabledPackages = f.EnablePkgs
		case "log-disable-packages":
			cfg.Logger.DisabledPackages = f.DisablePkgs
		case "levels":
			cfg.Transform.LogLevels = nonNil(f.Levels)
		case "no-source-map":
			cfg.Transform.SourceMap = !f.NoSourceMap
		case "lowres":
			cfg.Transform.Hires = !f.Lowres
		case "prefix-method":
			cfg.Transform.PrefixMethod = f.PrefixMethod
		case "policy":
			cfg.Transform.ReceiverPolicy = f.Policy
		case "receiver":
			cfg.Transform.ExtraReceivers = f.ExtraReceivers
		case "include":
			cfg.Files.Include = nonNil(f.Include)
		case "exclude":
			cfg.Files.Exclude = nonNil(f.Exclude)
		case "out-dir":
			cfg.Output.Dir = f.OutDir
		case "in-place":
			cfg.Output.InPlace = f.InPlace
		case "dry-run":
			cfg.Output.DryRun = f.DryRun
		case "inline-source-map":
			cfg.Output.InlineSourceMap = f.InlineMap
		case "jobs":
			cfg.Output.Jobs = f.Jobs
		}
	})
}

// nonNil keeps an explicitly empty flag value distinct from "unset".
func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
