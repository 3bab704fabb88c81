// Package config handles djboot tool configuration: which Python to use, which
// packages to install, and the defaults baked into generated artifacts.
// Values come from an optional .djboot.yaml config file and DJBOOT_* environment
// variables, in that order of increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/djboot/djboot/internal/errors"
)

// Config holds all tool configuration.
type Config struct {
	Python   PythonConfig   `mapstructure:"python"`
	Packages []string       `mapstructure:"packages"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Install  InstallConfig  `mapstructure:"install"`
}

// PythonConfig selects the interpreter used for venv creation and generation.
type PythonConfig struct {
	Binary     string `mapstructure:"binary"`
	MinVersion string `mapstructure:"min_version"`
}

// ServerConfig holds ports baked into generated compose files.
type ServerConfig struct {
	DevPort int `mapstructure:"dev_port"`
}

// DatabaseConfig holds the default PostgreSQL connection values written into
// the generated .env and compose files. The database name itself is derived
// from the project name.
type DatabaseConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Image    string `mapstructure:"image"`
}

// InstallConfig controls package installation behavior.
type InstallConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultPackages is the fixed dependency set installed into the project venv:
// the web framework, its REST toolkit, CORS middleware, a dotenv loader, the
// PostgreSQL adapter, and a production WSGI server.
var DefaultPackages = []string{
	"django",
	"djangorestframework",
	"django-cors-headers",
	"python-dotenv",
	"psycopg2-binary",
	"gunicorn",
}

const configName = ".djboot"

// Load reads configuration from cfgFile (if non-empty) or from .djboot.yaml in
// the current directory or configDir, overlays DJBOOT_* environment variables,
// and validates the result. A missing config file is not an error.
func Load(cfgFile, configDir string) (Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if configDir != "" {
			v.AddConfigPath(configDir)
		}
	}

	setDefaults(v)

	v.SetEnvPrefix("DJBOOT")
	// Environment variables can't have dots or dashes, so python.binary binds
	// to DJBOOT_PYTHON_BINARY.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// An explicitly named file must exist and parse.
			if cfgFile != "" {
				return Config{}, errors.Wrap(errors.EUsage, "failed to read config file "+cfgFile, err)
			}
			return Config{}, errors.Wrap(errors.EInternal, "failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.EInternal, "failed to parse configuration", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("python.binary", "python3")
	v.SetDefault("python.min_version", "3.10")
	v.SetDefault("packages", DefaultPackages)
	v.SetDefault("server.dev_port", 8000)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.image", "postgres:16-alpine")
	v.SetDefault("install.timeout", 10*time.Minute)
}

func validate(cfg Config) error {
	if cfg.Python.Binary == "" {
		return errors.New(errors.EUsage, "python.binary must not be empty")
	}
	if len(cfg.Packages) == 0 {
		return errors.New(errors.EUsage, "packages must not be empty")
	}
	if cfg.Server.DevPort < 1 || cfg.Server.DevPort > 65535 {
		return errors.New(errors.EUsage, fmt.Sprintf("server.dev_port out of range: %d", cfg.Server.DevPort))
	}
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return errors.New(errors.EUsage, fmt.Sprintf("database.port out of range: %d", cfg.Database.Port))
	}
	if cfg.Install.Timeout <= 0 {
		return errors.New(errors.EUsage, "install.timeout must be positive")
	}
	return nil
}
