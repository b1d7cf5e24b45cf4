package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GameRepository reads and writes games.
type GameRepository struct {
	db *sql.DB
}

// Save inserts an unsaved game or updates a saved one. An unsaved system is
// inserted in the same transaction.
func (r *GameRepository) Save(ctx context.Context, game *Game) error {
	if game == nil {
		return errors.New("game is nil")
	}
	if game.System == nil {
		return fmt.Errorf("game %q has no system", game.Name)
	}
	newSystem, newGame := game.System.ID == 0, game.ID == 0
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if newSystem {
			if err := saveSystem(ctx, tx, game.System); err != nil {
				return err
			}
		}
		if game.ID != 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE games SET system_id = ?, name = ?, archive = ? WHERE id = ?`,
				game.System.ID, game.Name, nullableString(game.Archive), game.ID,
			); err != nil {
				return fmt.Errorf("update game: %w", err)
			}
			return nil
		}
		created, timestamp := now()
		id, err := insert(ctx, tx,
			`INSERT INTO games (system_id, name, archive, created_at) VALUES (?, ?, ?, ?)`,
			game.System.ID, game.Name, nullableString(game.Archive), timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert game %q: %w", game.Name, err)
		}
		game.ID = id
		game.CreatedAt = created
		return nil
	})
	if err != nil {
		if newSystem {
			game.System.ID = 0
		}
		if newGame {
			game.ID = 0
		}
	}
	return err
}

// GetByID fetches a game and its system, or nil when it does not exist.
func (r *GameRepository) GetByID(ctx context.Context, id int64) (*Game, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games g JOIN systems s ON s.id = g.system_id WHERE g.id = ?`, id)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return game, nil
}

// List returns every game with its system name and track count.
func (r *GameRepository) List(ctx context.Context) ([]GameSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT g.id, g.name, s.name, g.archive, g.created_at, COUNT(tg.track_id)
        FROM games g
        JOIN systems s ON s.id = g.system_id
        LEFT JOIN track_games tg ON tg.game_id = g.id
        GROUP BY g.id ORDER BY g.id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []GameSummary
	for rows.Next() {
		var (
			summary GameSummary
			archive sql.NullString
			created sql.NullString
		)
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.System, &archive, &created, &summary.Tracks); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		summary.Archive = archive.String
		summary.CreatedAt = parseTime(created)
		out = append(out, summary)
	}
	return out, rows.Err()
}

const gameColumns = "g.id, g.name, g.archive, g.created_at, s.id, s.name, s.created_at"

func scanGame(row scanner) (*Game, error) {
	var (
		game          Game
		system        System
		archive       sql.NullString
		created       sql.NullString
		systemCreated sql.NullString
	)
	if err := row.Scan(&game.ID, &game.Name, &archive, &created, &system.ID, &system.Name, &systemCreated); err != nil {
		return nil, err
	}
	game.Archive = archive.String
	game.CreatedAt = parseTime(created)
	system.CreatedAt = parseTime(systemCreated)
	game.System = &system
	return &game, nil
}
