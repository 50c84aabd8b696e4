package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yacobolo/cssmod"
	"github.com/yacobolo/cssmod/internal/modules"
)

var k = koanf.New(".")

// Build modes accepted by --mode
const (
	modeDevelopment = "development"
	modeProduction  = "production"
)

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	// Resolve config file path from flag
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = ".cssmod.yaml"
	}

	// Load config file and env vars
	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence). Only flags that were explicitly set
	// are loaded, so flag defaults never shadow the file or env.
	flags := cmd.Flags()
	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(flags, f)
	}), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (CSSMOD_* prefix)
	if err := k.Load(env.Provider("CSSMOD_", ".", envKey), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// envKey maps an environment variable to a config key:
//
//	CSSMOD_BUILD_SOURCE       -> build.source
//	CSSMOD_BUILD_OUTPUT__DIR  -> build.output-dir
//	CSSMOD_VERBOSE            -> verbose
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "CSSMOD_"))
	s = strings.ReplaceAll(s, "__", "-")
	return strings.ReplaceAll(s, "_", ".")
}

// buildConfig constructs the library's Config struct from koanf state.
func buildConfig() (cssmod.Config, error) {
	mode := getStringWithFallback("mode", "mode", "")
	switch mode {
	case "", modeDevelopment, modeProduction:
	default:
		return cssmod.Config{}, fmt.Errorf("unknown mode %q (want development or production)", mode)
	}

	variables, err := parseVariables(getWithFallback("css-variables", "scope.css-variables"))
	if err != nil {
		return cssmod.Config{}, err
	}

	config := cssmod.Config{
		SourceDir:   getStringWithFallback("source", "build.source", "web/styles"),
		OutputDir:   getStringWithFallback("output-dir", "build.output-dir", "dist/styles"),
		Includes:    getStringsWithFallback("include", "build.include", []string{cssmod.DefaultInclude}),
		Excludes:    getStringsWithFallback("exclude", "build.exclude", nil),
		Manifest:    getStringWithFallback("manifest", "build.manifest", cssmod.DefaultManifest),
		Concurrency: getIntWithFallback("concurrency", "build.concurrency", 0),
		CacheSize:   getIntWithFallback("cache-size", "build.cache-size", cssmod.DefaultCacheSize),
		DryRun:      getBoolWithFallback("dry-run", "build.dry-run", false),
		Options: modules.Options{
			ScopeLength:  getIntWithFallback("scope-length", "scope.length", 0),
			Modules:      getBoolWithFallback("modules", "scope.enabled", true),
			CSSVariables: variables,
			Utility:      buildUtilityOptions(mode),
		},
	}

	return config, nil
}

// buildUtilityOptions returns nil unless utility extraction is enabled. An
// unset naming mode follows the build mode when one is given.
func buildUtilityOptions(mode string) *modules.UtilityOptions {
	if !getBoolWithFallback("utility", "utilities.enabled", false) {
		return nil
	}

	opts := modules.DefaultUtilityOptions()
	if name := getStringWithFallback("utility-mode", "utilities.mode", ""); name != "" {
		opts.Mode = modules.UtilityMode(name)
	} else if mode != "" {
		opts.Mode = modules.ModeForEnvironment(mode)
	}
	opts.Media = getBoolWithFallback("media", "utilities.media", false)
	opts.Container = getBoolWithFallback("container", "utilities.container", false)
	opts.Output = getBoolWithFallback("utility-output", "utilities.output", opts.Output)
	return &opts
}

// parseVariables accepts a boolean or a key. Any string other than a boolean
// literal is used as the key seeding the variable suffix.
func parseVariables(v any) (modules.Variables, error) {
	switch v := v.(type) {
	case nil:
		return modules.Variables{}, nil
	case bool:
		return modules.Variables{Enabled: v}, nil
	case string:
		if v == "" {
			return modules.Variables{}, nil
		}
		if b, err := strconv.ParseBool(v); err == nil {
			return modules.Variables{Enabled: b}, nil
		}
		return modules.Variables{Enabled: true, Key: v}, nil
	}
	return modules.Variables{}, fmt.Errorf("css-variables: expected a boolean or a string, got %T", v)
}

// buildReportOptions constructs the reporter settings from koanf state.
func buildReportOptions() (format string, printLines bool) {
	return getStringWithFallback("output-format", "build.output-format", "text"),
		getBoolWithFallback("print-lines", "build.print-lines", false)
}

// getWithFallback returns the raw value of the flag key, then the config key.
func getWithFallback(flagKey, configKey string) any {
	if k.Exists(flagKey) {
		return k.Get(flagKey)
	}
	return k.Get(configKey)
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}

// getDurationWithFallback checks the flag key first, then the config file key, then returns the default.
func getDurationWithFallback(flagKey, configKey string, defaultVal time.Duration) time.Duration {
	if k.Exists(flagKey) {
		return k.Duration(flagKey)
	}
	if k.Exists(configKey) {
		return k.Duration(configKey)
	}
	return defaultVal
}
