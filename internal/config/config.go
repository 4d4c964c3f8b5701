package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "ACTIVITY"
	defaultEnvFile = ".env"
)

// Config holds settings for the sync command.
type Config struct {
	IndexerURL        string
	Accounts          []string
	PageSize          int
	FromVersion       uint64
	UntilVersion      uint64
	MaxPages          int
	Sink              string
	Out               string
	Errors            string
	PGDSN             string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	PageTTL           time.Duration
	LogLevel          string
}

// Load merges config file, .env, environment variables and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"page-size":           10,
		"sink":                "jsonl",
		"out":                 "./data/events.jsonl",
		"errors":              "./data/classify_errors.jsonl",
		"checkpoint":          "./data/checkpoint.json",
		"checkpoint-enabled":  true,
		"max-retries":         5,
		"retry-backoff":       500 * time.Millisecond,
		"requests-per-second": 5.0,
		"page-ttl":            60 * time.Second,
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		IndexerURL:        v.GetString("indexer-url"),
		Accounts:          getStringSlice(v, "account"),
		PageSize:          v.GetInt("page-size"),
		FromVersion:       v.GetUint64("from-version"),
		UntilVersion:      v.GetUint64("until-version"),
		MaxPages:          v.GetInt("max-pages"),
		Sink:              strings.ToLower(v.GetString("sink")),
		Out:               v.GetString("out"),
		Errors:            v.GetString("errors"),
		PGDSN:             v.GetString("pg-dsn"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		RequestsPerSecond: v.GetFloat64("requests-per-second"),
		PageTTL:           v.GetDuration("page-ttl"),
		LogLevel:          v.GetString("log-level"),
	}

	switch cfg.Sink {
	case "jsonl":
	case "postgres":
		if cfg.PGDSN == "" {
			return Config{}, fmt.Errorf("pg-dsn is required for the postgres sink")
		}
	default:
		return Config{}, fmt.Errorf("unknown sink: %s", cfg.Sink)
	}
	return cfg, nil
}

// newViper builds a viper instance with the shared layering: defaults, an
// optional config file, the .env file, ACTIVITY_* environment variables and
// finally flags.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("env-file", defaultEnvFile)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := loadEnvFile(v.GetString("env-file")); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// loadEnvFile exports the variables of a dotenv file without overriding the
// process environment. A missing default file is ignored.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if path == defaultEnvFile && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
