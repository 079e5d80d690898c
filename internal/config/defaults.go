// Package config provides configuration loading and defaults for driftscan.
package config

import "time"

// DefaultRoot is the default scan root. Empty means the current working
// directory at invocation time.
const DefaultRoot = ""

// DefaultDepth is the default maximum recursion depth below the scan root.
// Depth 0 means only the root itself is checked.
const DefaultDepth = 2

// DefaultConfigDir is the default location for driftscan configuration.
const DefaultConfigDir = "~/.config/driftscan"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultFetchTimeout bounds each `git fetch` invocation. A fetch that runs
// past this is reported as timed out rather than hanging the whole run.
const DefaultFetchTimeout = 60 * time.Second

// DefaultCommandTimeout bounds every non-fetch git invocation.
const DefaultCommandTimeout = 10 * time.Second

// DefaultSkipDirs are directory names never descended into during discovery.
var DefaultSkipDirs = []string{"node_modules", "vendor", ".cache"}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{Color: true}
