package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		username_key TEXT NOT NULL UNIQUE,
		profile JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS registered_players (
		player_id TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS infinity_levels (
		difficulty TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS infinity_level_puzzles (
		difficulty TEXT NOT NULL,
		position INTEGER NOT NULL,
		puzzle_id TEXT NOT NULL,
		PRIMARY KEY (difficulty, position)
	)`,
	`CREATE TABLE IF NOT EXISTS speedrun_levels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS repetition_levels (
		id TEXT PRIMARY KEY,
		number INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS solved_infinity_puzzles (
		seq BIGSERIAL PRIMARY KEY,
		player_id TEXT NOT NULL,
		puzzle_id TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		solved_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS completed_speedruns (
		seq BIGSERIAL PRIMARY KEY,
		player_id TEXT NOT NULL,
		level_id TEXT NOT NULL,
		duration_ns BIGINT NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS completed_repetition_levels (
		seq BIGSERIAL PRIMARY KEY,
		player_id TEXT NOT NULL,
		level_id TEXT NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS completed_repetition_rounds (
		seq BIGSERIAL PRIMARY KEY,
		player_id TEXT NOT NULL,
		level_id TEXT NOT NULL,
		duration_ns BIGINT NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_solves_player_difficulty ON solved_infinity_puzzles(player_id, difficulty, seq DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_speedruns_player_level ON completed_speedruns(player_id, level_id, duration_ns)`,
	`CREATE INDEX IF NOT EXISTS idx_repetition_levels_player ON completed_repetition_levels(player_id)`,
	`CREATE INDEX IF NOT EXISTS idx_repetition_rounds_player_level ON completed_repetition_rounds(player_id, level_id, seq DESC)`,
}

// Migrate creates the tables and indexes if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}
