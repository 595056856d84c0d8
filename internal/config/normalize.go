package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAPI()
	if err := c.normalizeAuth(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeAPI() {
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	if c.API.BaseURL == "" {
		c.API.BaseURL = envOr("API_URL", defaultBaseURL)
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
}

// envOr returns the trimmed value of key, or fallback when it is unset or blank.
func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func (c *Config) normalizeAuth() error {
	c.Auth.Mode = strings.ToLower(strings.TrimSpace(c.Auth.Mode))
	if c.Auth.Mode == "" {
		c.Auth.Mode = defaultAuthMode
	}
	if strings.TrimSpace(c.Auth.StateDir) == "" {
		c.Auth.StateDir = defaultStateDir
	}
	var err error
	if c.Auth.StateDir, err = expandPath(c.Auth.StateDir); err != nil {
		return fmt.Errorf("auth.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.TrimSpace(c.Logging.Level)
	if c.Logging.Level == "" {
		c.Logging.Level = envOr("FRAGMENTS_LOG_LEVEL", defaultLogLevel)
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if strings.TrimSpace(c.Logging.Dir) != "" {
		var err error
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}
