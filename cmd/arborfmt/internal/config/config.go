// Package config is the layered configuration for the arborfmt CLI: flag
// defaults registered on a *pflag.FlagSet, then overlaid with viper reading
// ARBOR_* environment variables and an optional .arborfmt.yaml, following
// the arx-os-arxos cmd/config + MacroPower-x/log Flags/Config split.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flags holds the CLI flag names for config fields, letting callers
// rename flags while keeping NewConfig's defaults sane.
type Flags struct {
	LogLevel     string
	LogFormat    string
	MaxDepth     string
	AllowComments string
	Concurrency  string
	ConfigFile   string
}

func (f Flags) NewConfig() *Config {
	return &Config{Flags: f}
}

// NewConfig returns a Config with the standard flag names.
func NewConfig() *Config {
	f := Flags{
		LogLevel:      "log-level",
		LogFormat:     "log-format",
		MaxDepth:      "max-depth",
		AllowComments: "allow-comments",
		Concurrency:   "concurrency",
		ConfigFile:    "config",
	}
	return f.NewConfig()
}

// Config is the resolved configuration, populated first from flag
// defaults, then overlaid with .arborfmt.yaml and ARBOR_* environment
// variables via Load.
type Config struct {
	Flags Flags

	LogLevel      string
	LogFormat     string
	MaxDepth      int
	AllowComments bool
	Concurrency   int
	ConfigFile    string
}

// RegisterFlags adds arborfmt's persistent flags to flags, seeding c's
// zero-value fields with their defaults.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.LogLevel, c.Flags.LogLevel, "info", "log level: debug, info, warn, error")
	flags.StringVar(&c.LogFormat, c.Flags.LogFormat, "console", "log format: console, json")
	flags.IntVar(&c.MaxDepth, c.Flags.MaxDepth, 0, "maximum container nesting depth (0 = library default)")
	flags.BoolVar(&c.AllowComments, c.Flags.AllowComments, false, "allow // and /* */ comments in input")
	flags.IntVar(&c.Concurrency, c.Flags.Concurrency, 4, "bounded concurrency for multi-file operations")
	flags.StringVar(&c.ConfigFile, c.Flags.ConfigFile, "", "path to .arborfmt.yaml (default: searched in $HOME and .)")
}

// Load overlays c's flag-seeded fields with viper's view of ARBOR_*
// environment variables and an optional .arborfmt.yaml, the same
// viper-over-pflag layering arx-os-arxos's cmd/config/config.go uses.
// Flags explicitly set by the caller win over both the config file and
// the environment, since BindPFlag gives explicit-set flags top priority.
func (c *Config) Load(flags *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix("ARBOR")
	v.AutomaticEnv()

	if c.ConfigFile != "" {
		v.SetConfigFile(c.ConfigFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".arborfmt")
		v.SetConfigType("yaml")
	}

	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	c.LogLevel = v.GetString(c.Flags.LogLevel)
	c.LogFormat = v.GetString(c.Flags.LogFormat)
	c.MaxDepth = v.GetInt(c.Flags.MaxDepth)
	c.AllowComments = v.GetBool(c.Flags.AllowComments)
	c.Concurrency = v.GetInt(c.Flags.Concurrency)
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	return nil
}
