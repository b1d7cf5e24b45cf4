// Package trackname decides whether an archive entry is a track and, when it
// is, extracts the track ordinal and display name from the entry's file name.
//
// Track files are named "<2-3 digits> <name><ext>", for example
// "042 Title Theme.vgz". Entries with other extensions and directories are
// not tracks. An entry with the track extension whose name does not follow
// the pattern is a PatternError.
package trackname
