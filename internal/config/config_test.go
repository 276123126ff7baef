// FILE: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"eco/internal/testutil"
)

func TestDefaultValidates(t *testing.T) {
	testutil.NoError(t, Default().Validate())
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eco.yaml")
	content := `source:
  base_url: http://127.0.0.1:9999
  max_attempts: 5
server:
  port: 9000
  dev: true
`
	testutil.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	testutil.NoError(t, err)
	testutil.NoError(t, cfg.Validate())

	if cfg.Source.BaseURL != "http://127.0.0.1:9999" {
		t.Errorf("got base url %q", cfg.Source.BaseURL)
	}
	if cfg.Source.MaxAttempts != 5 {
		t.Errorf("got max attempts %d; want 5", cfg.Source.MaxAttempts)
	}

	// Fields missing from the file keep their defaults.
	if cfg.Source.TimeoutSeconds != 30 {
		t.Errorf("got timeout %d; want default 30", cfg.Source.TimeoutSeconds)
	}
	if cfg.Dataset.CSVPath != "data/openings.csv" {
		t.Errorf("got csv path %q; want default", cfg.Dataset.CSVPath)
	}
	if cfg.Server.Port != 9000 || !cfg.Server.Dev {
		t.Errorf("got port=%d dev=%v; want 9000 true", cfg.Server.Port, cfg.Server.Dev)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty user agent", func(c *Config) { c.Source.UserAgent = "" }},
		{"zero attempts", func(c *Config) { c.Source.MaxAttempts = 0 }},
		{"bad base url", func(c *Config) { c.Source.BaseURL = "not a url" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			testutil.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	testutil.Error(t, err)
}

func TestFetcherOptions(t *testing.T) {
	opts := Default().Source.FetcherOptions()
	if opts.Timeout.Seconds() != 30 || opts.MaxAttempts != 3 || opts.Delay.Seconds() != 1 {
		t.Errorf("unexpected options: %+v", opts)
	}
}
