// Package manifest reads the vgmrips export manifest.
//
// The manifest is a JSON object keyed by system name. Each value maps game
// names to the archive file holding that game's soundtrack:
//
//	{"Sega Genesis": {"Sonic": "sonic.zip"}}
//
// Open reads the file and checks its syntax and shape up front so a broken
// manifest fails before any import work starts. Archive names are relative
// to the archive directory and may name a subdirectory. Entries then yields
// the entries in key order, exactly once.
package manifest
