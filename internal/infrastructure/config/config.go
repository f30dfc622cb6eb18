// Package config provides configuration loading for nex. Settings layer
// in the usual order: built-in defaults, then NEX_-prefixed environment
// variables, then command-line flags bound by the cmd package.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyRoot        = "root"
	KeyBranch      = "branch"
	KeyRemote      = "remote"
	KeyProject     = "project"
	KeyProjectType = "type"
	KeyDryRun      = "dry_run"
	KeyLogLevel    = "log_level"
	KeyLogAppName  = "log_app_name"
)

// Default values.
const (
	DefaultBranch     = "master"
	DefaultRemote     = "nexus"
	DefaultLogLevel   = "info"
	DefaultLogAppName = "nex"
)

// EnvPrefix is the prefix for environment overrides, e.g. NEX_BRANCH.
const EnvPrefix = "NEX"

// Config holds all application configuration.
type Config struct {
	// Root is the directory tree scanned for projects. Defaults to the
	// working directory.
	Root string

	// Branch and Remote name the tracked branch and remote every project
	// reconciles against.
	Branch string
	Remote string

	// Project restricts the run to the project with this unscoped name.
	Project string

	// ProjectType restricts the run to manifests declaring this keyword.
	ProjectType string

	// DryRun simulates mutating actions where the underlying tool allows.
	DryRun bool

	// LogLevel is the logging level (debug, info, error).
	LogLevel string

	// LogAppName is the application name for log context.
	LogAppName string
}

// NewViper builds the viper instance the cmd package binds its flags
// into: defaults registered, environment enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeyBranch, DefaultBranch)
	v.SetDefault(KeyRemote, DefaultRemote)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogAppName, DefaultLogAppName)

	return v
}

// FromViper materializes a Config from a (flag-bound) viper instance.
// An unset root resolves to the current working directory. The bump-kind
// validation lives with the flag that supplies it, not here.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Root:        v.GetString(KeyRoot),
		Branch:      v.GetString(KeyBranch),
		Remote:      v.GetString(KeyRemote),
		Project:     v.GetString(KeyProject),
		ProjectType: v.GetString(KeyProjectType),
		DryRun:      v.GetBool(KeyDryRun),
		LogLevel:    v.GetString(KeyLogLevel),
		LogAppName:  v.GetString(KeyLogAppName),
	}

	if cfg.Root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("unable to determine working directory: %w", err)
		}
		cfg.Root = cwd
	}

	if cfg.Branch == "" || cfg.Remote == "" {
		return nil, fmt.Errorf("branch and remote must not be empty")
	}

	return cfg, nil
}
