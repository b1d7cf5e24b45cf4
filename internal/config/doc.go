// Package config loads, normalizes, and validates vgmimport configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// VGMIMPORT_MANIFEST. The Config type centralizes every knob the importer and
// CLI need, so the manifest, archive, uploads, and catalogue locations are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths and clear validation errors.
package config
