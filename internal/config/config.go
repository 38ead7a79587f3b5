package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the complete converter configuration
type Config struct {
	Logging   LoggingConfig   `envconfig:"LOGGING"`
	Input     InputConfig     `envconfig:"INPUT"`
	Telemetry TelemetryConfig `envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `envconfig:"LEVEL" default:"warn" validate:"oneof=debug info warn warning error"`
	Format   string `envconfig:"FORMAT" default:"json" validate:"oneof=json"`
	Output   string `envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `envconfig:"FILE_PATH" default:"logs/convert.log" validate:"required_unless=Output console"`
}

// InputConfig controls how the input export is found and interpreted
type InputConfig struct {
	// Dir is scanned for *.csv candidates when no explicit input is given.
	Dir string `envconfig:"DIR" default:"." validate:"required"`
	// Timezone is the zone the export's wall-clock dates are read in.
	// "Local" means the host zone.
	Timezone string `envconfig:"TIMEZONE" default:"Local" validate:"tzname"`
}

// TelemetryConfig contains optional trace and metrics sinks. Empty disables the sink.
type TelemetryConfig struct {
	TraceFile   string `envconfig:"TRACE_FILE"`
	MetricsFile string `envconfig:"METRICS_FILE"`
}

// Load loads and validates configuration from CONVERT_* environment variables
func Load() (*Config, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadEnv reads CONVERT_* environment variables without validating them, so
// callers can apply overrides first.
func LoadEnv() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints declared in struct tags
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("tzname", isZoneName); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// Location resolves Input.Timezone
func (c *Config) Location() (*time.Location, error) {
	return LoadLocation(c.Input.Timezone)
}

// LoadLocation resolves a zone name, treating "" and "local" as the host zone
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}

func isZoneName(fl validator.FieldLevel) bool {
	_, err := LoadLocation(fl.Field().String())
	return err == nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value())
	case "tzname":
		return fmt.Sprintf("%s is not a known time zone: %q", fe.Namespace(), fe.Value())
	case "required", "required_unless":
		return fmt.Sprintf("%s is required", fe.Namespace())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag())
	}
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "warn",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/convert.log",
		},
		Input: InputConfig{
			Dir:      ".",
			Timezone: "Local",
		},
	}
}
