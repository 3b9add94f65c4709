package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type TimerConfig struct {
	RestMinutes float64 `mapstructure:"rest_minutes"`
	RestLabel   string  `mapstructure:"rest_label"`
}

type AuthConfig struct {
	Secret       string `mapstructure:"secret"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt; empty disables auth
	ExpireHours  int    `mapstructure:"expire_hours"`
}

type SinkConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Timer    TimerConfig    `mapstructure:"timer"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Sinks    SinkConfig     `mapstructure:"sinks"`
	Backup   BackupConfig   `mapstructure:"backup"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. POMO_SERVER_PORT=9000
		v.SetEnvPrefix("POMO")
		v.AutomaticEnv()

		v.SetDefault("server.address", "127.0.0.1")
		v.SetDefault("server.port", 8088)
		v.SetDefault("database.path", "data/pomodoro.db")
		v.SetDefault("timer.rest_minutes", 5)
		v.SetDefault("timer.rest_label", "Rest")
		v.SetDefault("auth.expire_hours", 24)
		v.SetDefault("backup.dir", "data/backups")

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
