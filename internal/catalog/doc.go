// Package catalog persists the imported soundtrack catalogue in SQLite.
//
// The catalogue holds systems, games, tracks, and playlists. Store opens the
// database, creates the schema on first use, and refuses databases written by
// a different schema version. Each entity has a repository hanging off Store
// with find, create, and save operations; constructors such as NewGame build
// unsaved entities (ID zero) and Save assigns their IDs.
//
// The store keeps a single connection, so concurrent saves from the importer
// are serialized by database/sql rather than by SQLite locking.
package catalog
