package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TrackRepository reads and writes tracks.
type TrackRepository struct {
	db *sql.DB
}

// Save inserts an unsaved track together with its game links. Every linked
// game must already be saved. Saved tracks are immutable.
func (r *TrackRepository) Save(ctx context.Context, track *Track) error {
	if track == nil {
		return errors.New("track is nil")
	}
	if track.ID != 0 {
		return fmt.Errorf("track %d is already saved", track.ID)
	}
	for _, game := range track.Games {
		if game == nil || game.ID == 0 {
			return fmt.Errorf("track %q: game: %w", track.Name, ErrNotSaved)
		}
	}

	var (
		id      int64
		created = track.CreatedAt
	)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		ts, timestamp := now()
		var err error
		id, err = insert(ctx, tx,
			`INSERT INTO tracks (name, ordinal, file, created_at) VALUES (?, ?, ?, ?)`,
			track.Name, track.Ordinal, track.File, timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert track %q: %w", track.Name, err)
		}
		for _, game := range track.Games {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO track_games (track_id, game_id) VALUES (?, ?)`, id, game.ID,
			); err != nil {
				return fmt.Errorf("link track %q to game %d: %w", track.Name, game.ID, err)
			}
		}
		created = ts
		return nil
	})
	if err != nil {
		return err
	}
	track.ID = id
	track.CreatedAt = created
	return nil
}

// ListByGame returns the tracks linked to a game ordered by ordinal.
func (r *TrackRepository) ListByGame(ctx context.Context, gameID int64) ([]*Track, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT t.id, t.name, t.ordinal, t.file, t.created_at
        FROM tracks t JOIN track_games tg ON tg.track_id = t.id
        WHERE tg.game_id = ? ORDER BY t.ordinal, t.id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var out []*Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		out = append(out, track)
	}
	return out, rows.Err()
}

func scanTrack(row scanner) (*Track, error) {
	var (
		track   Track
		created sql.NullString
	)
	if err := row.Scan(&track.ID, &track.Name, &track.Ordinal, &track.File, &created); err != nil {
		return nil, err
	}
	track.CreatedAt = parseTime(created)
	return &track, nil
}
