package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the tables and indexes if they do not exist.
// Times are unix nanoseconds and durations are nanoseconds.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			username_key TEXT NOT NULL UNIQUE,
			profile TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS registered_players (
			player_id TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS infinity_levels (
			difficulty TEXT PRIMARY KEY
		);`,
		`CREATE TABLE IF NOT EXISTS infinity_level_puzzles (
			difficulty TEXT NOT NULL,
			position INTEGER NOT NULL,
			puzzle_id TEXT NOT NULL,
			PRIMARY KEY (difficulty, position)
		);`,
		`CREATE TABLE IF NOT EXISTS speedrun_levels (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS repetition_levels (
			id TEXT PRIMARY KEY,
			number INTEGER NOT NULL UNIQUE,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS solved_infinity_puzzles (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			puzzle_id TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			solved_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS completed_speedruns (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			level_id TEXT NOT NULL,
			duration INTEGER NOT NULL,
			completed_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS completed_repetition_levels (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			level_id TEXT NOT NULL,
			completed_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS completed_repetition_rounds (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			level_id TEXT NOT NULL,
			duration INTEGER NOT NULL,
			completed_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_solves_player_difficulty ON solved_infinity_puzzles(player_id, difficulty, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_speedruns_player_level ON completed_speedruns(player_id, level_id, duration);`,
		`CREATE INDEX IF NOT EXISTS idx_repetition_levels_player ON completed_repetition_levels(player_id);`,
		`CREATE INDEX IF NOT EXISTS idx_repetition_rounds_player_level ON completed_repetition_rounds(player_id, level_id, seq);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
