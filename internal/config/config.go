// Package config resolves settings from moveprobe.yaml, MOVEPROBE_*
// environment variables and command-line flags, in rising precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/morozRed/moveprobe/internal/callgraph"
	"github.com/morozRed/moveprobe/internal/parser"
)

// FileName is the config file looked up in the project root, without extension.
const FileName = "moveprobe"

const (
	KeyASTDir       = "ast_dir"
	KeyIgnore       = "ignore"
	KeyConcurrency  = "concurrency"
	KeyIncludeSpecs = "include_specs"
	KeyLogLevel     = "log_level"
	KeyBuiltins     = "rules.builtins"
	KeyStdModules   = "rules.std_modules"
	KeyStdAddresses = "rules.std_addresses"
	KeyAccessors    = "rules.accessors"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"ast-dir":       KeyASTDir,
	"concurrency":   KeyConcurrency,
	"include-specs": KeyIncludeSpecs,
	"log-level":     KeyLogLevel,
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the resolved configuration.
type Config struct {
	ASTDir       string
	Ignore       []string
	Concurrency  int
	IncludeSpecs bool
	LogLevel     string
	Rules        callgraph.Rules
	// File is the config file that was read, if any.
	File string
}

// Load resolves configuration for the project at root. flags may be nil.
func Load(root string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyASTDir, parser.DefaultASTDir)
	v.SetDefault(KeyIgnore, []string{})
	v.SetDefault(KeyConcurrency, 4)
	v.SetDefault(KeyIncludeSpecs, false)
	v.SetDefault(KeyLogLevel, "warn")

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(root)

	// Enable environment variable overrides
	v.SetEnvPrefix("MOVEPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s.yaml: %w", FileName, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	cfg := &Config{
		ASTDir:       v.GetString(KeyASTDir),
		Ignore:       listSetting(v, KeyIgnore),
		Concurrency:  v.GetInt(KeyConcurrency),
		IncludeSpecs: v.GetBool(KeyIncludeSpecs),
		LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
		Rules: callgraph.Rules{
			Builtins:     listSetting(v, KeyBuiltins),
			StdModules:   listSetting(v, KeyStdModules),
			StdAddresses: listSetting(v, KeyStdAddresses),
			Accessors:    listSetting(v, KeyAccessors),
		},
		File: v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// listSetting reads a list key. Entries may be separated by commas or
// whitespace, so MOVEPROBE_RULES_BUILTINS="assert,abort" and a YAML list
// give the same result.
func listSetting(v *viper.Viper, key string) []string {
	out := []string{}
	for _, raw := range v.GetStringSlice(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ASTDir) == "" {
		return fmt.Errorf("%s must not be empty", KeyASTDir)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyConcurrency, c.Concurrency)
	}
	for _, level := range logLevels {
		if c.LogLevel == level {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", KeyLogLevel, strings.Join(logLevels, "|"), c.LogLevel)
}

// ExtractOptions returns the call-graph options this config selects.
func (c *Config) ExtractOptions() callgraph.Options {
	return callgraph.Options{IncludeSpecs: c.IncludeSpecs, Rules: c.Rules}
}
