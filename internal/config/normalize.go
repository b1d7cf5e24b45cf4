package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeImport()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv("VGMIMPORT_MANIFEST"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ManifestPath = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("VGMIMPORT_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.manifest_path", &c.Paths.ManifestPath, defaultManifestPath},
		{"paths.archive_dir", &c.Paths.ArchiveDir, defaultArchiveDir},
		{"paths.uploads_dir", &c.Paths.UploadsDir, defaultUploadsDir},
		{"paths.data_dir", &c.Paths.DataDir, defaultDataDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeImport() {
	c.Import.TrackExtension = strings.TrimSpace(c.Import.TrackExtension)
	if c.Import.TrackExtension == "" {
		c.Import.TrackExtension = defaultTrackExtension
	}
	c.Import.StoredExtension = strings.TrimSpace(c.Import.StoredExtension)
	if c.Import.StoredExtension == "" {
		c.Import.StoredExtension = defaultStoredExtension
	}
	if c.Import.PersistWorkers == 0 {
		c.Import.PersistWorkers = defaultPersistWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
