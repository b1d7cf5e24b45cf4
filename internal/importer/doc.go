// Package importer runs the vgmrips import: it walks the manifest, registers
// each game's system and game rows, streams the game's archive, stores every
// track file under the uploads directory, saves the track rows, and finishes
// each game with a "<game> OST" playlist.
//
// A run holds an exclusive lock file in the data directory, so two imports
// never interleave. The first error aborts the run; rows and files created
// before it stay in place.
package importer
