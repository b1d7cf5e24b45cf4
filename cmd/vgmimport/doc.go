// Package main hosts the vgmimport CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, then hands off to the
// importer, the catalogue store, and the preflight checks. Commands own
// presentation only: tables, JSON output, and colorized status lines.
package main
