// FILE: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"eco/internal/scrape"
)

// Source configures the reference-site fetcher.
type Source struct {
	BaseURL           string `yaml:"base_url" validate:"required,url"`
	UserAgent         string `yaml:"user_agent" validate:"required"`
	TimeoutSeconds    int    `yaml:"timeout_seconds" validate:"min=1,max=300"`
	MaxAttempts       int    `yaml:"max_attempts" validate:"min=1,max=10"`
	RetryDelaySeconds int    `yaml:"retry_delay_seconds" validate:"min=0,max=60"`
}

// Dataset configures the annotated CSV location.
type Dataset struct {
	CSVPath string `yaml:"csv_path" validate:"required"`
}

// Server configures the lookup API server.
type Server struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	WebPort  int    `yaml:"web_port" validate:"min=1,max=65535"`
	DBPath   string `yaml:"db_path"`
	BookPath string `yaml:"book_path"`
	Dev      bool   `yaml:"dev"`
}

// Config is the full tree. Flags override file values; file values
// override defaults.
type Config struct {
	Source  Source  `yaml:"source"`
	Dataset Dataset `yaml:"dataset"`
	Server  Server  `yaml:"server"`
}

// Default returns the built-in configuration: the public reference
// site, 30 second requests, 3 attempts with a flat 1 second delay.
func Default() Config {
	return Config{
		Source: Source{
			BaseURL:           "https://www.365chess.com",
			UserAgent:         "Mozilla/5.0 (compatible; eco-update/1.0)",
			TimeoutSeconds:    30,
			MaxAttempts:       3,
			RetryDelaySeconds: 1,
		},
		Dataset: Dataset{
			CSVPath: "data/openings.csv",
		},
		Server: Server{
			Host:    "localhost",
			Port:    8080,
			WebPort: 3000,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An
// empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the whole tree and reports the first offending field.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("config: field %s fails rule %q", verrs[0].Namespace(), verrs[0].Tag())
	}
	return err
}

// FetcherOptions converts the source section into fetcher settings.
func (s Source) FetcherOptions() scrape.FetcherOptions {
	return scrape.FetcherOptions{
		BaseURL:     s.BaseURL,
		UserAgent:   s.UserAgent,
		Timeout:     time.Duration(s.TimeoutSeconds) * time.Second,
		MaxAttempts: s.MaxAttempts,
		Delay:       time.Duration(s.RetryDelaySeconds) * time.Second,
	}
}
