// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/bethropolis/logprefix/internal/logger"
	"github.com/bethropolis/logprefix/internal/pipeline"
	"github.com/bethropolis/logprefix/internal/policy"
	"github.com/bethropolis/logprefix/internal/transform"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger    logger.Config   `toml:"logger"`
	Transform TransformConfig `toml:"transform"`
	Files     FilesConfig     `toml:"files"`
	Output    OutputConfig    `toml:"output"`
	Watch     WatchConfig     `toml:"watch"`

	// Path of the file the config was loaded from, empty for defaults only.
	Path string `toml:"-"`
	// Undecoded lists unknown keys found in the file.
	Undecoded []string `toml:"-"`
}

// TransformConfig holds rewriting settings.
type TransformConfig struct {
	LogLevels      []string `toml:"log_levels"`
	SourceMap      bool     `toml:"source_map"`
	Hires          bool     `toml:"hires"`
	PrefixMethod   string   `toml:"prefix_method"`
	ReceiverPolicy string   `toml:"receiver_policy"`
	ExtraReceivers []string `toml:"extra_receivers"` // accepted in addition to the policy
}

// FilesConfig holds the include/exclude globs.
type FilesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	Dir             string `toml:"dir"`
	InPlace         bool   `toml:"in_place"`
	DryRun          bool   `toml:"dry_run"`
	InlineSourceMap bool   `toml:"inline_source_map"`
	Jobs            int    `toml:"jobs"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		Transform: TransformConfig{
			LogLevels:      append([]string(nil), transform.DefaultLogLevels...),
			SourceMap:      true,
			Hires:          true,
			PrefixMethod:   transform.DefaultPrefixMethod,
			ReceiverPolicy: policy.Heuristic,
		},
		Files: FilesConfig{
			Include: append([]string(nil), pipeline.DefaultInclude...),
			Exclude: append([]string(nil), pipeline.DefaultExclude...),
		},
		Output: OutputConfig{
			Jobs: DefaultJobs,
		},
		Watch: WatchConfig{
			DebounceMS: int(DefaultWatchDebounce / time.Millisecond),
		},
	}
}

// decodeFile decodes filePath over cfg, so keys absent from the file keep
// their current values.
func decodeFile(filePath string, cfg *Config) error {
	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	cfg.Path = filePath
	for _, key := range metadata.Undecoded() {
		cfg.Undecoded = append(cfg.Undecoded, key.String())
	}
	return nil
}

// findConfigFile returns the first existing default config location, or "".
func findConfigFile() string {
	candidates := []string{LocalConfigFileName}
	if configDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(configDir, AppName, DefaultConfigFileName))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ErrInvalidPrefixMethod is returned for a prefix method that is not a plain
// identifier.
var ErrInvalidPrefixMethod = errors.New("invalid prefix method")

// validate resets out-of-range tuning values to defaults and rejects settings
// that would change what gets rewritten.
func (c *Config) validate() error {
	defaults := NewDefaultConfig()

	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.Logger.LogFilePath == "" {
		c.Logger.LogFilePath = defaults.Logger.LogFilePath
	}

	if c.Files.Include == nil {
		c.Files.Include = defaults.Files.Include
	}
	if c.Files.Exclude == nil {
		c.Files.Exclude = defaults.Files.Exclude
	}

	if c.Output.Jobs < 0 {
		c.Output.Jobs = defaults.Output.Jobs
	}
	if c.Watch.DebounceMS <= 0 {
		c.Watch.DebounceMS = defaults.Watch.DebounceMS
	}

	if !identPattern.MatchString(c.Transform.PrefixMethod) {
		return fmt.Errorf("%w: %q", ErrInvalidPrefixMethod, c.Transform.PrefixMethod)
	}
	if _, err := policy.Lookup(c.Transform.ReceiverPolicy); err != nil {
		return err
	}
	return nil
}

// LoadConfig loads defaults, then the config file, then flag overrides, and
// validates the result. An empty configFilePath searches the default
// locations, where a missing file is not an error; an explicit path must exist.
func LoadConfig(configFilePath string, flags *Flags) (*Config, error) {
	cfg := NewDefaultConfig()

	path := configFilePath
	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("error checking config file '%s': %w", path, err)
	}
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if flags != nil {
		flags.ApplyOverrides(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ReportUndecoded logs unknown config keys. Call it once the logger is set up.
func (c *Config) ReportUndecoded() {
	if len(c.Undecoded) > 0 {
		logger.Warnf("Config file '%s': Unrecognized keys: %v", c.Path, c.Undecoded)
	}
}

// TransformerConfig returns the core transformer configuration.
func (c *Config) TransformerConfig() transform.Config {
	return transform.Config{
		LogLevels:    c.Transform.LogLevels,
		SourceMap:    c.Transform.SourceMap,
		Hires:        c.Transform.Hires,
		PrefixMethod: c.Transform.PrefixMethod,
	}
}

// ReceiverPolicy resolves the configured policy, extended with any extra
// receiver names.
func (c *Config) ReceiverPolicy() (transform.ReceiverPolicy, error) {
	p, err := policy.Lookup(c.Transform.ReceiverPolicy)
	if err != nil {
		return nil, err
	}
	return policy.Extend(p, c.Transform.ExtraReceivers...), nil
}

// ErrWatchInPlace is returned when watch mode is combined with in-place output,
// which would re-trigger on its own writes.
var ErrWatchInPlace = errors.New("watch mode cannot write in place")

// PluginOptions returns the pipeline plugin options.
func (c *Config) PluginOptions() (pipeline.PluginOptions, error) {
	p, err := c.ReceiverPolicy()
	if err != nil {
		return pipeline.PluginOptions{}, err
	}
	return pipeline.PluginOptions{
		Include:   c.Files.Include,
		Exclude:   c.Files.Exclude,
		Transform: c.TransformerConfig(),
		Policy:    p,
	}, nil
}

// RunnerOptions returns the pipeline runner options.
func (c *Config) RunnerOptions() pipeline.Options {
	return pipeline.Options{
		OutDir:          c.Output.Dir,
		InPlace:         c.Output.InPlace,
		DryRun:          c.Output.DryRun,
		InlineSourceMap: c.Output.InlineSourceMap,
		Jobs:            c.Output.Jobs,
	}
}

// WatchDebounce returns the watch debounce interval.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
