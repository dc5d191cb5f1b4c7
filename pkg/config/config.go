// Package config loads lifedots settings from a .lifedots file and
// LIFEDOTS_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/lifedots/pkg/timeutil"
)

const (
	// DriverDiskv stores one JSON file per week.
	DriverDiskv = "diskv"
	// DriverSQLite stores weeks in a SQLite database.
	DriverSQLite = "sqlite"
	// DriverMemory keeps everything in process and forgets it on exit.
	DriverMemory = "memory"

	envPrefix = "LIFEDOTS"
)

// Config is the resolved configuration.
type Config struct {
	Path      string
	Driver    string
	User      string
	WeekStart time.Weekday
	Refresh   time.Duration

	Log    Log
	Server Server
	Remote Remote
}

// Log configures the zap logger.
type Log struct {
	Level  string
	Format string
	File   string
}

// Server configures the HTTP API.
type Server struct {
	Addr   string
	Secret string
}

// Remote points the CLI at a running API instead of local storage.
type Remote struct {
	URL   string
	Token string
}

// BasePath implements store.Config.
func (c *Config) BasePath() string { return c.Path }

// StoreDriver implements store.Config.
func (c *Config) StoreDriver() string { return c.Driver }

// IsRemote reports whether operations go through the HTTP API.
func (c *Config) IsRemote() bool { return c.Remote.URL != "" }

// Load resolves configuration. Environment variables override the config
// file, which overrides the defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(".lifedots") // .yaml is implicit
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv(envPrefix + "_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", "~/.lifedots")
	v.SetDefault("driver", DriverDiskv)
	v.SetDefault("user", "local")
	v.SetDefault("week_start", "sunday")
	v.SetDefault("refresh", timeutil.DefaultRefresh)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.secret", "")
	v.SetDefault("remote.url", "")
	v.SetDefault("remote.token", "")
}

func fromViper(v *viper.Viper) (*Config, error) {
	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}
	weekStart, err := timeutil.ParseWeekday(v.GetString("week_start"))
	if err != nil {
		return nil, fmt.Errorf("config: week_start: %w", err)
	}
	refresh, err := timeutil.ParseRefresh(v.GetString("refresh"))
	if err != nil {
		return nil, fmt.Errorf("config: refresh: %w", err)
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("driver")))
	switch driver {
	case DriverDiskv, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("config: unsupported driver %q (expected %s, %s or %s)", driver, DriverDiskv, DriverSQLite, DriverMemory)
	}

	logFile := v.GetString("log.file")
	if logFile != "" {
		if logFile, err = homedir.Expand(logFile); err != nil {
			return nil, fmt.Errorf("config: expand log.file: %w", err)
		}
	}

	return &Config{
		Path:      path,
		Driver:    driver,
		User:      strings.TrimSpace(v.GetString("user")),
		WeekStart: weekStart,
		Refresh:   refresh,
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   logFile,
		},
		Server: Server{
			Addr:   v.GetString("server.addr"),
			Secret: v.GetString("server.secret"),
		},
		Remote: Remote{
			URL:   strings.TrimRight(v.GetString("remote.url"), "/"),
			Token: v.GetString("remote.token"),
		},
	}, nil
}
