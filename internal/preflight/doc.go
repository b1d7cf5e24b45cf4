// Package preflight provides readiness checks for the filesystem paths an
// import depends on.
//
// The CLI "vgmimport check" command prints RunAll's results. The import
// command runs the same checks first and refuses to start when one fails,
// so a missing export directory is reported before any catalogue rows are
// written.
package preflight
