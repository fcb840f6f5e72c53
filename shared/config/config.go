package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Upload   UploadConfig   `yaml:"upload"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	// SimulatedLatency delays image reads; useful for exercising clients against slow responses
	SimulatedLatency time.Duration `yaml:"simulated_latency" validate:"gte=0"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type AuthConfig struct {
	// JWTSecret is only needed by serve; the maintenance commands run without it
	JWTSecret    string `yaml:"jwt_secret" validate:"omitempty,min=16"`
	ProtectReads bool   `yaml:"protect_reads"`
}

type UploadConfig struct {
	Dir          string   `yaml:"dir" validate:"required"`
	URLPrefix    string   `yaml:"url_prefix" validate:"required,startswith=/"`
	MaxBytes     int64    `yaml:"max_bytes" validate:"gt=0"`
	AllowedTypes []string `yaml:"allowed_types" validate:"dive,required"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file or env overrides are given.
// The JWT secret has no default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "./gallery.db",
		},
		Upload: UploadConfig{
			Dir:          "./uploads",
			URLPrefix:    "/uploads",
			MaxBytes:     5 << 20,
			AllowedTypes: []string{"image/png", "image/jpeg"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("SQLITE_DB_PATH"); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		c.Auth.JWTSecret = v
	}
	if v, ok := lookup("UPLOAD_DIR"); ok && v != "" {
		c.Upload.Dir = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("PROTECT_READS"); ok {
		protect, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PROTECT_READS %q: %w", v, err)
		}
		c.Auth.ProtectReads = protect
	}
	if v, ok := lookup("SIMULATED_LATENCY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SIMULATED_LATENCY %q: %w", v, err)
		}
		c.Server.SimulatedLatency = d
	}

	return nil
}

// RequireSecret reports a missing JWT secret
func (c *Config) RequireSecret() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config Config.Auth.JWTSecret: a JWT secret is required (set auth.jwt_secret or JWT_SECRET)")
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("config %s: failed %q check", fe.Namespace(), fe.Tag()))
	}
	return errors.Join(errs...)
}
