package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PlaylistRepository reads and writes playlists.
type PlaylistRepository struct {
	db *sql.DB
}

// Save inserts an unsaved playlist with its games and tracks in one
// transaction. Track positions follow the order of Tracks.
func (r *PlaylistRepository) Save(ctx context.Context, playlist *Playlist) error {
	if playlist == nil {
		return errors.New("playlist is nil")
	}
	if playlist.ID != 0 {
		return fmt.Errorf("playlist %d is already saved", playlist.ID)
	}
	for _, game := range playlist.Games {
		if game == nil || game.ID == 0 {
			return fmt.Errorf("playlist %q: game: %w", playlist.Name, ErrNotSaved)
		}
	}
	for _, track := range playlist.Tracks {
		if track == nil || track.ID == 0 {
			return fmt.Errorf("playlist %q: track: %w", playlist.Name, ErrNotSaved)
		}
	}

	var (
		id      int64
		created = playlist.CreatedAt
	)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		ts, timestamp := now()
		var err error
		id, err = insert(ctx, tx, `INSERT INTO playlists (name, created_at) VALUES (?, ?)`, playlist.Name, timestamp)
		if err != nil {
			return fmt.Errorf("insert playlist %q: %w", playlist.Name, err)
		}
		for _, game := range playlist.Games {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO playlist_games (playlist_id, game_id) VALUES (?, ?)`, id, game.ID,
			); err != nil {
				return fmt.Errorf("link playlist game %d: %w", game.ID, err)
			}
		}
		for position, track := range playlist.Tracks {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO playlist_tracks (playlist_id, track_id, position) VALUES (?, ?, ?)`,
				id, track.ID, position,
			); err != nil {
				return fmt.Errorf("link playlist track %d: %w", track.ID, err)
			}
		}
		created = ts
		return nil
	})
	if err != nil {
		return err
	}
	playlist.ID = id
	playlist.CreatedAt = created
	return nil
}

// Get loads a playlist with its games and ordered tracks, or nil when it does
// not exist.
func (r *PlaylistRepository) Get(ctx context.Context, id int64) (*Playlist, error) {
	var (
		playlist Playlist
		created  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM playlists WHERE id = ?`, id).
		Scan(&playlist.ID, &playlist.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	playlist.CreatedAt = parseTime(created)

	games, err := r.db.QueryContext(ctx, `SELECT `+gameColumns+`
        FROM playlist_games pg
        JOIN games g ON g.id = pg.game_id
        JOIN systems s ON s.id = g.system_id
        WHERE pg.playlist_id = ? ORDER BY g.id`, id)
	if err != nil {
		return nil, fmt.Errorf("get playlist games: %w", err)
	}
	for games.Next() {
		game, err := scanGame(games)
		if err != nil {
			games.Close()
			return nil, fmt.Errorf("scan playlist game: %w", err)
		}
		playlist.Games = append(playlist.Games, game)
	}
	if err := games.Close(); err != nil {
		return nil, err
	}
	if err := games.Err(); err != nil {
		return nil, err
	}

	tracks, err := r.db.QueryContext(ctx, `SELECT t.id, t.name, t.ordinal, t.file, t.created_at
        FROM playlist_tracks pt JOIN tracks t ON t.id = pt.track_id
        WHERE pt.playlist_id = ? ORDER BY pt.position`, id)
	if err != nil {
		return nil, fmt.Errorf("get playlist tracks: %w", err)
	}
	defer tracks.Close()
	for tracks.Next() {
		track, err := scanTrack(tracks)
		if err != nil {
			return nil, fmt.Errorf("scan playlist track: %w", err)
		}
		playlist.Tracks = append(playlist.Tracks, track)
	}
	if err := tracks.Err(); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// List returns every playlist with its track count.
func (r *PlaylistRepository) List(ctx context.Context) ([]PlaylistSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT p.id, p.name, p.created_at, COUNT(pt.track_id)
        FROM playlists p LEFT JOIN playlist_tracks pt ON pt.playlist_id = p.id
        GROUP BY p.id ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var out []PlaylistSummary
	for rows.Next() {
		var (
			summary PlaylistSummary
			created sql.NullString
		)
		if err := rows.Scan(&summary.ID, &summary.Name, &created, &summary.Tracks); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		summary.CreatedAt = parseTime(created)
		out = append(out, summary)
	}
	return out, rows.Err()
}
