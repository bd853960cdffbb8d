package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the tracker reads.
const EnvPrefix = "DSATRACK"

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env        string `mapstructure:"env"`         // local, production
	LogLevel   string `mapstructure:"log_level"`   // zap level name
	DB         string `mapstructure:"db"`          // database or JSON file path; empty means the XDG default
	Backend    string `mapstructure:"backend"`     // sqlite or file
	Catalog    string `mapstructure:"catalog"`     // markdown catalog path
	CuratedTag string `mapstructure:"curated_tag"` // tag matched by the tagged filter
	BackupKeep int    `mapstructure:"backup_keep"` // backups retained after pruning
	Addr       string `mapstructure:"addr"`        // listen address for serve
}

// Load reads configuration from an optional config file, a .env file and
// DSATRACK_* environment variables, in increasing priority. An empty path
// looks for config.yaml in the working directory and ./config.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetDefault("env", "local")
	v.SetDefault("log_level", "warn")
	v.SetDefault("db", "")
	v.SetDefault("backend", "sqlite")
	v.SetDefault("catalog", "README.md")
	v.SetDefault("curated_tag", "blind75")
	v.SetDefault("backup_keep", 5)
	v.SetDefault("addr", "127.0.0.1:8765")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case "sqlite", "file":
	default:
		return fmt.Errorf("%w: backend %q (want sqlite or file)", ErrInvalidConfig, c.Backend)
	}
	if c.BackupKeep < 0 {
		return fmt.Errorf("%w: backup_keep %d is negative", ErrInvalidConfig, c.BackupKeep)
	}
	return nil
}
