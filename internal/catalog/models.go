package catalog

import (
	"errors"
	"time"
)

// ErrNotSaved is returned when an entity references another entity that has
// not been persisted yet.
var ErrNotSaved = errors.New("referenced entity is not saved")

// System is a game platform, unique by name.
type System struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Game is one soundtrack source. Games are not deduplicated.
type Game struct {
	ID        int64
	Name      string
	Archive   string
	System    *System
	CreatedAt time.Time
}

// Track is one extracted audio file. File is the generated upload name, not
// the archive entry name.
type Track struct {
	ID        int64
	Name      string
	Ordinal   string
	File      string
	Games     []*Game
	CreatedAt time.Time
}

// Playlist groups the tracks of a game in archive order.
type Playlist struct {
	ID        int64
	Name      string
	Games     []*Game
	Tracks    []*Track
	CreatedAt time.Time
}

// NewSystem builds an unsaved system.
func NewSystem(name string) *System {
	return &System{Name: name}
}

// NewGame builds an unsaved game belonging to system.
func NewGame(system *System, name, archive string) *Game {
	return &Game{Name: name, Archive: archive, System: system}
}

// NewTrack builds an unsaved track linked to games.
func NewTrack(name, ordinal, file string, games ...*Game) *Track {
	return &Track{Name: name, Ordinal: ordinal, File: file, Games: games}
}

// NewPlaylist builds an unsaved playlist.
func NewPlaylist(name string, games []*Game, tracks []*Track) *Playlist {
	return &Playlist{Name: name, Games: games, Tracks: tracks}
}

// PlaylistName derives the playlist name for a game.
func PlaylistName(game string) string {
	return game + " OST"
}

// SystemSummary is a row of the systems listing.
type SystemSummary struct {
	ID        int64
	Name      string
	Games     int
	CreatedAt time.Time
}

// GameSummary is a row of the games listing.
type GameSummary struct {
	ID        int64
	Name      string
	System    string
	Archive   string
	Tracks    int
	CreatedAt time.Time
}

// PlaylistSummary is a row of the playlists listing.
type PlaylistSummary struct {
	ID        int64
	Name      string
	Tracks    int
	CreatedAt time.Time
}

// Counts holds row totals per entity.
type Counts struct {
	Systems   int `json:"systems"`
	Games     int `json:"games"`
	Tracks    int `json:"tracks"`
	Playlists int `json:"playlists"`
}
