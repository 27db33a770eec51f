package main

import (
	"flag"
	"os"

	"github.com/redhaven/colony/internal/platform/config"
)

// ServerFlags holds the command line and environment overrides. Empty
// values keep what the config file (or the defaults) say.
type ServerFlags struct {
	ConfigPath string
	Addr       string
	SaveDir    string
	DBPath     string
	Backend    string
	LogLevel   string
	AssetRoot  string
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerFlags, string)
}

// loadServerFlags loads overrides from CLI flags and environment variables.
// A flag wins over its environment variable, which wins over the default.
func loadServerFlags() ServerFlags {
	f := ServerFlags{}

	// To add a new option, just add a new resolver here
	resolvers := []configResolver{
		{
			flagName:    "config",
			envVarName:  "COLONY_CONFIG",
			defaultVal:  "",
			description: "optional path to a YAML config file",
			setter:      func(s *ServerFlags, v string) { s.ConfigPath = v },
		},
		{
			flagName:    "addr",
			envVarName:  "COLONY_ADDR",
			defaultVal:  "",
			description: "HTTP listen address (e.g. :8080)",
			setter:      func(s *ServerFlags, v string) { s.Addr = v },
		},
		{
			flagName:    "save-dir",
			envVarName:  "COLONY_SAVE_DIR",
			defaultVal:  "",
			description: "directory holding the autosave and milestone slots",
			setter:      func(s *ServerFlags, v string) { s.SaveDir = v },
		},
		{
			flagName:    "db",
			envVarName:  "COLONY_DB",
			defaultVal:  "",
			description: "SQLite file for the event ledger (and slots with -store sqlite)",
			setter:      func(s *ServerFlags, v string) { s.DBPath = v },
		},
		{
			flagName:    "store",
			envVarName:  "COLONY_STORE",
			defaultVal:  "",
			description: "save slot backend: file or sqlite",
			setter:      func(s *ServerFlags, v string) { s.Backend = v },
		},
		{
			flagName:    "log-level",
			envVarName:  "COLONY_LOG_LEVEL",
			defaultVal:  "",
			description: "Log level: debug, info, warn, error",
			setter:      func(s *ServerFlags, v string) { s.LogLevel = v },
		},
		{
			flagName:    "assets",
			envVarName:  "COLONY_ASSETS",
			defaultVal:  "assets",
			description: "root the render clients load sprites from",
			setter:      func(s *ServerFlags, v string) { s.AssetRoot = v },
		},
	}

	// Register string flags first
	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	// Parse flags once
	flag.Parse()

	// Resolve values for each resolver
	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&f, value)
	}

	return f
}

// resolveConfig loads the config file, if any, and applies the overrides.
func resolveConfig(f ServerFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.ConfigPath != "" {
		loaded, err := config.Load(f.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.Addr != "" {
		cfg.Network.Addr = f.Addr
	}
	if f.SaveDir != "" {
		cfg.Storage.SaveDir = f.SaveDir
	}
	if f.DBPath != "" {
		cfg.Storage.DBPath = f.DBPath
	}
	if f.Backend != "" {
		cfg.Storage.Backend = f.Backend
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
