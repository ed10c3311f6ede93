// Package config resolves runtime configuration from flags, environment and
// an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STUDENT_MODEL_PATH.
const EnvPrefix = "STUDENT_MODEL"

// Config holds all configuration for the CLI.
type Config struct {
	Path string    `mapstructure:"path"`
	Log  LogConfig `mapstructure:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Loader wraps a private viper instance so tests never share global state.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a Loader with defaults, env bindings and config search paths set.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "student-model"))
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlag lets a command-line flag override key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag not defined", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads the optional config file and resolves the final Config.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Path = expandHome(cfg.Path)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", DefaultPath())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// DefaultPath is ~/student_model.json, or ./student_model.json without a home dir.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "student_model.json"
	}
	return filepath.Join(home, "student_model.json")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
