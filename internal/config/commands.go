package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// ClassifyConfig holds configuration for the classify command.
type ClassifyConfig struct {
	In       string
	Out      string
	Errors   string
	Account  string
	LogLevel string
}

// LoadClassify merges config sources into ClassifyConfig.
func LoadClassify(cfgFile string, flags *pflag.FlagSet) (ClassifyConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"out":    "./data/events.jsonl",
		"errors": "./data/classify_errors.jsonl",
	})
	if err != nil {
		return ClassifyConfig{}, err
	}

	cfg := ClassifyConfig{
		In:       v.GetString("in"),
		Out:      v.GetString("out"),
		Errors:   v.GetString("errors"),
		Account:  v.GetString("account"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.In == "" {
		return ClassifyConfig{}, fmt.Errorf("in is required")
	}
	return cfg, nil
}

// FeedConfig holds configuration for the feed command.
type FeedConfig struct {
	In       string
	Now      time.Time
	Filter   string
	LogLevel string
}

// LoadFeed merges config sources into FeedConfig. Now is zero unless set.
func LoadFeed(cfgFile string, flags *pflag.FlagSet) (FeedConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"in": "./data/events.jsonl",
	})
	if err != nil {
		return FeedConfig{}, err
	}

	now, err := ParseTimestamp(v.GetString("now"))
	if err != nil {
		return FeedConfig{}, fmt.Errorf("parse now: %w", err)
	}

	return FeedConfig{
		In:       v.GetString("in"),
		Now:      now,
		Filter:   v.GetString("filter"),
		LogLevel: v.GetString("log-level"),
	}, nil
}

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	Listen            string
	PGDSN             string
	PageSize          int
	MaxPageSize       int
	RequestsPerSecond float64
	Burst             int
	CacheTTL          time.Duration
	LogLevel          string
}

// LoadServe merges config sources into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"listen":              ":8080",
		"page-size":           10,
		"max-page-size":       100,
		"requests-per-second": 10.0,
		"burst":               30,
		"cache-ttl":           60 * time.Second,
	})
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		Listen:            v.GetString("listen"),
		PGDSN:             v.GetString("pg-dsn"),
		PageSize:          v.GetInt("page-size"),
		MaxPageSize:       v.GetInt("max-page-size"),
		RequestsPerSecond: v.GetFloat64("requests-per-second"),
		Burst:             v.GetInt("burst"),
		CacheTTL:          v.GetDuration("cache-ttl"),
		LogLevel:          v.GetString("log-level"),
	}
	if cfg.PGDSN == "" {
		return ServeConfig{}, fmt.Errorf("pg-dsn is required")
	}
	if cfg.PageSize <= 0 || cfg.MaxPageSize < cfg.PageSize {
		return ServeConfig{}, fmt.Errorf("invalid page sizes: page-size %d, max-page-size %d", cfg.PageSize, cfg.MaxPageSize)
	}
	return cfg, nil
}

// MigrateConfig holds configuration for the migrate command.
type MigrateConfig struct {
	PGDSN    string
	Down     bool
	LogLevel string
}

// LoadMigrate merges config sources into MigrateConfig.
func LoadMigrate(cfgFile string, flags *pflag.FlagSet) (MigrateConfig, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return MigrateConfig{}, err
	}
	cfg := MigrateConfig{
		PGDSN:    v.GetString("pg-dsn"),
		Down:     v.GetBool("down"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.PGDSN == "" {
		return MigrateConfig{}, fmt.Errorf("pg-dsn is required")
	}
	return cfg, nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339). An empty
// input yields the zero time.
func ParseTimestamp(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(val, 0).UTC(), nil
	}

	return time.Parse(time.RFC3339, input)
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
