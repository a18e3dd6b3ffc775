package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Socket) == "" {
		return errors.New("paths.socket must be set")
	}
	if bind := strings.TrimSpace(c.Paths.APIBind); bind != "" {
		if _, _, err := net.SplitHostPort(bind); err != nil {
			return fmt.Errorf("paths.api_bind %q is not host:port: %w", bind, err)
		}
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if !strings.HasPrefix(c.Generation.BaseURL, "http://") && !strings.HasPrefix(c.Generation.BaseURL, "https://") {
		return fmt.Errorf("generation.base_url %q must be an http(s) URL", c.Generation.BaseURL)
	}
	if c.Generation.RetryAttempts > 10 {
		return errors.New("generation.retry_attempts must be 10 or fewer")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	return nil
}
