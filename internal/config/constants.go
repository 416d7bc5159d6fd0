package config

import "time"

// Base application details
const AppName = "logprefix"
const DefaultConfigFileName = "config.toml"  // under the user config dir
const LocalConfigFileName = "logprefix.toml" // in the working directory

// Version is overridden at build time with -ldflags "-X ...config.Version=v1.2.3".
var Version = "dev"

// Watch behavior
const DefaultWatchDebounce = 100 * time.Millisecond

// Output
const DefaultJobs = 0 // GOMAXPROCS
