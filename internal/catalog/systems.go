package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SystemRepository reads and writes systems.
type SystemRepository struct {
	db *sql.DB
}

// FindByName returns the system with exactly name, or nil when none exists.
func (r *SystemRepository) FindByName(ctx context.Context, name string) (*System, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM systems WHERE name = ?`, name)
	system, err := scanSystem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find system: %w", err)
	}
	return system, nil
}

// Save inserts an unsaved system or renames a saved one.
func (r *SystemRepository) Save(ctx context.Context, system *System) error {
	return saveSystem(ctx, r.db, system)
}

func saveSystem(ctx context.Context, db execer, system *System) error {
	if system == nil {
		return errors.New("system is nil")
	}
	if system.ID != 0 {
		if _, err := db.ExecContext(ctx, `UPDATE systems SET name = ? WHERE id = ?`, system.Name, system.ID); err != nil {
			return fmt.Errorf("update system: %w", err)
		}
		return nil
	}
	created, timestamp := now()
	id, err := insert(ctx, db, `INSERT INTO systems (name, created_at) VALUES (?, ?)`, system.Name, timestamp)
	if err != nil {
		return fmt.Errorf("insert system %q: %w", system.Name, err)
	}
	system.ID = id
	system.CreatedAt = created
	return nil
}

// List returns every system with its game count, ordered by name.
func (r *SystemRepository) List(ctx context.Context) ([]SystemSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT s.id, s.name, s.created_at, COUNT(g.id)
        FROM systems s LEFT JOIN games g ON g.system_id = s.id
        GROUP BY s.id ORDER BY s.name, s.id`)
	if err != nil {
		return nil, fmt.Errorf("list systems: %w", err)
	}
	defer rows.Close()

	var out []SystemSummary
	for rows.Next() {
		var (
			summary SystemSummary
			created sql.NullString
		)
		if err := rows.Scan(&summary.ID, &summary.Name, &created, &summary.Games); err != nil {
			return nil, fmt.Errorf("scan system: %w", err)
		}
		summary.CreatedAt = parseTime(created)
		out = append(out, summary)
	}
	return out, rows.Err()
}

func scanSystem(row scanner) (*System, error) {
	var (
		system  System
		created sql.NullString
	)
	if err := row.Scan(&system.ID, &system.Name, &created); err != nil {
		return nil, err
	}
	system.CreatedAt = parseTime(created)
	return &system, nil
}
