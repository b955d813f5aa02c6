package config

import (
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. POSTS_ETL_LOG_LEVEL.
const EnvPrefix = "POSTS_ETL"

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment, later sources winning.
// SQL_CONNECTION_STRING and MONGO_CONNECTION_STRING are honoured as well,
// so an existing .env file keeps working.
func Load(path string) (*Config, error) {
	// 1. Start from the built-in defaults.
	// Every key needs a default, otherwise AutomaticEnv cannot see it
	// during Unmarshal.
	v := viper.New()
	setDefaults(v, NewDefaultConfig())

	// 2. Environment overrides: log.level is read from POSTS_ETL_LOG_LEVEL.
	// The two connection strings also accept the names used in .env files.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("sql.connString", EnvPrefix+"_SQL_CONNSTRING", "SQL_CONNECTION_STRING"); err != nil {
		return nil, errors.Wrap(err, "bind sql.connString")
	}
	if err := v.BindEnv("mongo.uri", EnvPrefix+"_MONGO_URI", "MONGO_CONNECTION_STRING"); err != nil {
		return nil, errors.Wrap(err, "bind mongo.uri")
	}

	// 3. Optional YAML file. A path that was given but does not exist is
	// an error, not a silent fallback to defaults.
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file '%s'", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file '%s'", path)
		}
	}

	// 4. Decode into the struct. "30s" style strings become durations.
	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("schedule.timezone", d.Schedule.Timezone)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("mongo.enabled", d.Mongo.Enabled)
	v.SetDefault("mongo.uri", d.Mongo.URI)
	v.SetDefault("mongo.database", d.Mongo.Database)
	v.SetDefault("mongo.collection", d.Mongo.Collection)
	v.SetDefault("sql.enabled", d.SQL.Enabled)
	v.SetDefault("sql.connString", d.SQL.ConnString)
	v.SetDefault("sql.table", d.SQL.Table)
}
