package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix     = "FIELDSTUDIO"
	EnvConfigPath = "FIELDSTUDIO_CONFIG_PATH"
)

type Config struct {
	Port         string         `mapstructure:"port" validate:"required,numeric"`
	LogLevel     string         `mapstructure:"log_level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Database     DatabaseConfig `mapstructure:"database" validate:"required"`
	CORS         CORSConfig     `mapstructure:"cors"`
	Capabilities []string       `mapstructure:"capabilities"`
}

type DatabaseConfig struct {
	Host                string `mapstructure:"host" validate:"required"`
	Port                string `mapstructure:"port" validate:"required,numeric"`
	User                string `mapstructure:"user" validate:"required"`
	Password            string `mapstructure:"password"`
	Name                string `mapstructure:"name" validate:"required"`
	MaxOpenConns        int    `mapstructure:"max_open_conns" validate:"min=1"`
	ConnMaxLifetimeSecs int    `mapstructure:"conn_max_lifetime_secs" validate:"min=1"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads .env (when present), an optional YAML file and FIELDSTUDIO_*
// environment variables, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("port", "3001")
	v.SetDefault("log_level", "info")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "4000")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "fieldstudio")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.conn_max_lifetime_secs", 300)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("capabilities", []string{"LookupFields", "MultiSelectLists", "UniversalValueSets"})

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func load(v *viper.Viper) (*Config, error) {
	if configFile := os.Getenv(EnvConfigPath); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.CORS.AllowedOrigins = splitList(cfg.CORS.AllowedOrigins)
	cfg.Capabilities = splitList(cfg.Capabilities)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// splitList accepts comma separated values from the environment.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// DSN builds the MySQL data source name.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsLocal reports whether the database host is the local machine.
func (d DatabaseConfig) IsLocal() bool {
	return d.Host == "127.0.0.1" || d.Host == "localhost"
}

// IsDebug reports whether debug logging is requested.
func (c *Config) IsDebug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}
