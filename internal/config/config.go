// Package config handles loading and validating the runtime settings of
// the posts pipeline: logging, the optional mirror sinks, run history and
// metrics.
package config

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
)

// Config holds all configuration for the application. Values come from
// defaults, an optional YAML file and the environment, in that order.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Mongo    MongoConfig    `mapstructure:"mongo" yaml:"mongo"`
	SQL      SQLConfig      `mapstructure:"sql" yaml:"sql"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// HTTPConfig configures the client used by the extract step. A zero
// Timeout means the request is bounded only by the run context.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type ScheduleConfig struct {
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// MongoConfig configures the optional MongoDB mirror of the output file.
type MongoConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	URI        string `mapstructure:"uri" yaml:"uri"`
	Database   string `mapstructure:"database" yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// SQLConfig configures the optional SQL Server mirror of the output file.
type SQLConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	ConnString string `mapstructure:"connString" yaml:"connString"`
	Table      string `mapstructure:"table" yaml:"table"`
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewDefaultConfig returns the configuration used when nothing is set.
func NewDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Schedule: ScheduleConfig{
			Timezone: "UTC",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "posts-etl.db",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
		Mongo: MongoConfig{
			Database:   "posts_etl",
			Collection: "posts",
		},
		SQL: SQLConfig{
			Table: "posts",
		},
	}
}

// Validate reports every problem found, not just the first.
func (c *Config) Validate() []error {
	errs := make([]error, 0)

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, errors.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.Errorf("http.timeout must not be negative; got %s", c.HTTP.Timeout))
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		errs = append(errs, errors.Wrapf(err, "schedule.timezone %q", c.Schedule.Timezone))
	}

	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, errors.New("history.path is required when history is enabled"))
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr is required when metrics are enabled"))
	}

	if c.Mongo.Enabled {
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri (or MONGO_CONNECTION_STRING) is required when the mongo sink is enabled"))
		}
		if c.Mongo.Database == "" || c.Mongo.Collection == "" {
			errs = append(errs, errors.New("mongo.database and mongo.collection must not be empty"))
		}
	}

	if c.SQL.Enabled {
		if c.SQL.ConnString == "" {
			errs = append(errs, errors.New("sql.connString (or SQL_CONNECTION_STRING) is required when the sql sink is enabled"))
		}
		if !identifierPattern.MatchString(c.SQL.Table) {
			errs = append(errs, errors.Errorf("sql.table %q is not a valid identifier", c.SQL.Table))
		}
	}

	return errs
}

// Location returns the scheduler time zone. Call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
