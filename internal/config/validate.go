package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.MaxGames < 0 {
		return errors.New("import.max_games must be >= 0 (0 imports every manifest entry)")
	}
	if c.Import.PersistWorkers <= 0 {
		return errors.New("import.persist_workers must be positive")
	}
	if err := validateExtension("import.track_extension", c.Import.TrackExtension); err != nil {
		return err
	}
	if err := validateExtension("import.stored_extension", c.Import.StoredExtension); err != nil {
		return err
	}
	return nil
}

func validateExtension(key, value string) error {
	if !strings.HasPrefix(value, ".") || len(value) < 2 {
		return fmt.Errorf("%s must start with '.' and name an extension, got %q", key, value)
	}
	if strings.ContainsAny(value, `/\`) {
		return fmt.Errorf("%s must not contain path separators, got %q", key, value)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
