package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	envPrefix  = "TRAINER_"
	envConfig  = "TRAINER_CONFIG"
	flagConfig = "config"
)

// Flags returns the command-line flags Load understands. Flag names use
// dashes; they map to the underscore koanf keys.
func Flags(name string) *pflag.FlagSet {
	d := New()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String(flagConfig, "", "path to a YAML config file (or "+envConfig+")")
	fs.String("addr", d.Addr, "HTTP listen address")
	fs.String("log-level", d.LogLevel, "debug, info, warn or error")
	fs.String("log-format", d.LogFormat, "text or json")
	fs.String("db-driver", d.DBDriver, "sqlite, postgres or memory")
	fs.String("db-dsn", d.DBDSN, "database DSN")
	fs.String("redis-addr", d.RedisAddr, "Redis address for the lookup cache")
	fs.Int("generation-attempts", d.GenerationAttempts, "attempts per question before giving up")
	return fs
}

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. YAML file from --config or TRAINER_CONFIG
//  3. environment variables with the TRAINER_ prefix
//  4. flags explicitly set in args
func Load(_ context.Context, args []string) (*Config, error) {
	fs := Flags("trainer")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	path, _ := fs.GetString(flagConfig)
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// TRAINER_LOOKUP_TIMEOUT_MS -> lookup_timeout_ms
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	flags := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
		if !f.Changed || f.Name == flagConfig {
			return "", nil
		}
		return strings.ReplaceAll(f.Name, "-", "_"), f.Value.String()
	})
	if err := k.Load(flags, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
