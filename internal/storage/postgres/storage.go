package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, applies the schema and returns a ready storage
func New(ctx context.Context, databaseURL string) (*Storage, error) {
	pool, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Storage{pool: pool}, nil
}

// NewWithPool wraps an existing pool; the schema must already be applied
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player, rp *model.RegisteredPlayer) error {
	player.EnsureProfile()
	profile, err := json.Marshal(player.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO players (id, username, username_key, profile, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, string(player.ID), player.Username, model.UsernameKey(player.Username), profile, player.CreatedAt)
		if isUniqueViolation(err) {
			return model.ErrUsernameTaken
		}
		if err != nil {
			return fmt.Errorf("failed to create player: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO registered_players (player_id, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
		`, string(rp.PlayerID), rp.PasswordHash, rp.CreatedAt, rp.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create registered player: %w", err)
		}
		return nil
	})
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	player.EnsureProfile()
	profile, err := json.Marshal(player.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO players (id, username, username_key, profile, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			username_key = EXCLUDED.username_key,
			profile = EXCLUDED.profile
	`, string(player.ID), player.Username, model.UsernameKey(player.Username), profile, player.CreatedAt)
	if isUniqueViolation(err) {
		return model.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

func (s *Storage) scanPlayer(row pgx.Row) (*model.Player, error) {
	var (
		p       model.Player
		profile []byte
	)
	if err := row.Scan(&p.ID, &p.Username, &profile, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	p.Profile = &model.Profile{}
	if err := json.Unmarshal(profile, p.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &p, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, username, profile, created_at FROM players WHERE id = $1`, string(id))
	return s.scanPlayer(row)
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, username, profile, created_at FROM players WHERE username_key = $1`, model.UsernameKey(username))
	return s.scanPlayer(row)
}

// Registered player operations

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	rp := &model.RegisteredPlayer{PlayerID: playerID}
	err := s.pool.QueryRow(ctx, `
		SELECT password_hash, created_at, updated_at FROM registered_players WHERE player_id = $1
	`, string(playerID)).Scan(&rp.PasswordHash, &rp.CreatedAt, &rp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get registered player: %w", err)
	}
	return rp, nil
}

// Catalogue operations

func (s *Storage) SaveInfinityLevel(ctx context.Context, level *model.InfinityLevel) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO infinity_levels (difficulty) VALUES ($1) ON CONFLICT DO NOTHING
		`, string(level.Difficulty)); err != nil {
			return fmt.Errorf("failed to save infinity level: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM infinity_level_puzzles WHERE difficulty = $1`, string(level.Difficulty)); err != nil {
			return fmt.Errorf("failed to clear infinity level: %w", err)
		}

		batch := &pgx.Batch{}
		for i, id := range level.Puzzles {
			batch.Queue(`
				INSERT INTO infinity_level_puzzles (difficulty, position, puzzle_id) VALUES ($1, $2, $3)
			`, string(level.Difficulty), i, string(id))
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save infinity level puzzles: %w", err)
		}
		return nil
	})
}

func (s *Storage) GetInfinityLevel(ctx context.Context, difficulty model.Difficulty) (*model.InfinityLevel, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM infinity_levels WHERE difficulty = $1)
	`, string(difficulty)).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to get infinity level: %w", err)
	}
	if !exists {
		return nil, model.ErrInfinityLevelNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT puzzle_id FROM infinity_level_puzzles WHERE difficulty = $1 ORDER BY position
	`, string(difficulty))
	if err != nil {
		return nil, fmt.Errorf("failed to get infinity level puzzles: %w", err)
	}
	puzzles, err := pgx.CollectRows(rows, pgx.RowTo[model.PuzzleID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan infinity level puzzles: %w", err)
	}
	return &model.InfinityLevel{Difficulty: difficulty, Puzzles: puzzles}, nil
}

func (s *Storage) SaveSpeedrunLevel(ctx context.Context, level *model.SpeedrunLevel) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO speedrun_levels (id, name, position) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, position = EXCLUDED.position
	`, string(level.ID), level.Name, level.Position)
	if err != nil {
		return fmt.Errorf("failed to save speedrun level: %w", err)
	}
	return nil
}

func (s *Storage) GetSpeedrunLevel(ctx context.Context, id model.SpeedrunLevelID) (*model.SpeedrunLevel, error) {
	level := &model.SpeedrunLevel{ID: id}
	err := s.pool.QueryRow(ctx, `SELECT name, position FROM speedrun_levels WHERE id = $1`, string(id)).
		Scan(&level.Name, &level.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSpeedrunLevelNotFound
		}
		return nil, fmt.Errorf("failed to get speedrun level: %w", err)
	}
	return level, nil
}

func (s *Storage) ListSpeedrunLevels(ctx context.Context) ([]*model.SpeedrunLevel, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, position FROM speedrun_levels ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list speedrun levels: %w", err)
	}

	levels, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.SpeedrunLevel, error) {
		var level model.SpeedrunLevel
		err := row.Scan(&level.ID, &level.Name, &level.Position)
		return &level, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan speedrun levels: %w", err)
	}
	return levels, nil
}

func (s *Storage) SaveRepetitionLevel(ctx context.Context, level *model.RepetitionLevel) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO repetition_levels (id, number, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET number = EXCLUDED.number, name = EXCLUDED.name
	`, string(level.ID), level.Number, level.Name)
	if err != nil {
		return fmt.Errorf("failed to save repetition level: %w", err)
	}
	return nil
}

func (s *Storage) scanRepetitionLevel(row pgx.Row) (*model.RepetitionLevel, error) {
	var level model.RepetitionLevel
	if err := row.Scan(&level.ID, &level.Number, &level.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRepetitionLevelNotFound
		}
		return nil, fmt.Errorf("failed to get repetition level: %w", err)
	}
	return &level, nil
}

func (s *Storage) GetRepetitionLevel(ctx context.Context, id model.RepetitionLevelID) (*model.RepetitionLevel, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, number, name FROM repetition_levels WHERE id = $1`, string(id))
	return s.scanRepetitionLevel(row)
}

func (s *Storage) GetRepetitionLevelByNumber(ctx context.Context, number int) (*model.RepetitionLevel, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, number, name FROM repetition_levels WHERE number = $1`, number)
	return s.scanRepetitionLevel(row)
}

// Infinity solve log

func (s *Storage) AppendSolvedPuzzle(ctx context.Context, solve *model.SolvedInfinityPuzzle) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO solved_infinity_puzzles (player_id, puzzle_id, difficulty, solved_at)
		VALUES ($1, $2, $3, $4)
		RETURNING seq
	`, string(solve.PlayerID), string(solve.PuzzleID), string(solve.Difficulty), solve.SolvedAt).Scan(&solve.Seq)
	if err != nil {
		return fmt.Errorf("failed to append solve: %w", err)
	}
	return nil
}

func (s *Storage) LastSolvedPuzzle(ctx context.Context, playerID model.PlayerID, difficulty *model.Difficulty) (*model.SolvedInfinityPuzzle, bool, error) {
	var filter *string
	if difficulty != nil {
		d := string(*difficulty)
		filter = &d
	}

	solve := &model.SolvedInfinityPuzzle{PlayerID: playerID}
	err := s.pool.QueryRow(ctx, `
		SELECT seq, puzzle_id, difficulty, solved_at
		FROM solved_infinity_puzzles
		WHERE player_id = $1 AND ($2::text IS NULL OR difficulty = $2)
		ORDER BY seq DESC
		LIMIT 1
	`, string(playerID), filter).Scan(&solve.Seq, &solve.PuzzleID, &solve.Difficulty, &solve.SolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get last solve: %w", err)
	}
	return solve, true, nil
}

func (s *Storage) CountSolvedPuzzles(ctx context.Context, playerID model.PlayerID, difficulty *model.Difficulty) (int, error) {
	var filter *string
	if difficulty != nil {
		d := string(*difficulty)
		filter = &d
	}

	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM solved_infinity_puzzles
		WHERE player_id = $1 AND ($2::text IS NULL OR difficulty = $2)
	`, string(playerID), filter).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count solves: %w", err)
	}
	return n, nil
}

// Speedrun log

func (s *Storage) AppendCompletedSpeedrun(ctx context.Context, run *model.CompletedSpeedrun) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO completed_speedruns (player_id, level_id, duration_ns, completed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING seq
	`, string(run.PlayerID), string(run.LevelID), int64(run.Duration), run.CompletedAt).Scan(&run.Seq)
	if err != nil {
		return fmt.Errorf("failed to append speedrun: %w", err)
	}
	return nil
}

func (s *Storage) CountCompletedSpeedruns(ctx context.Context, playerID model.PlayerID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM completed_speedruns WHERE player_id = $1`, string(playerID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count speedruns: %w", err)
	}
	return n, nil
}

func (s *Storage) FastestSpeedrun(ctx context.Context, playerID model.PlayerID, levelID *model.SpeedrunLevelID) (time.Duration, bool, error) {
	var filter *string
	if levelID != nil {
		id := string(*levelID)
		filter = &id
	}

	var fastest *int64
	err := s.pool.QueryRow(ctx, `
		SELECT MIN(duration_ns) FROM completed_speedruns
		WHERE player_id = $1 AND ($2::text IS NULL OR level_id = $2)
	`, string(playerID), filter).Scan(&fastest)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get fastest speedrun: %w", err)
	}
	if fastest == nil {
		return 0, false, nil
	}
	return time.Duration(*fastest), true, nil
}

// Repetition logs

func (s *Storage) AppendCompletedRepetitionLevel(ctx context.Context, completion *model.CompletedRepetitionLevel) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO completed_repetition_levels (player_id, level_id, completed_at)
		VALUES ($1, $2, $3)
		RETURNING seq
	`, string(completion.PlayerID), string(completion.LevelID), completion.CompletedAt).Scan(&completion.Seq)
	if err != nil {
		return fmt.Errorf("failed to append repetition completion: %w", err)
	}
	return nil
}

func (s *Storage) HighestCompletedRepetitionNumber(ctx context.Context, playerID model.PlayerID) (int, error) {
	var highest int
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(l.number), 0)
		FROM completed_repetition_levels c
		JOIN repetition_levels l ON l.id = c.level_id
		WHERE c.player_id = $1
	`, string(playerID)).Scan(&highest)
	if err != nil {
		return 0, fmt.Errorf("failed to get highest repetition level: %w", err)
	}
	return highest, nil
}

func (s *Storage) AppendRepetitionRound(ctx context.Context, round *model.CompletedRepetitionRound) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO completed_repetition_rounds (player_id, level_id, duration_ns, completed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING seq
	`, string(round.PlayerID), string(round.LevelID), int64(round.Duration), round.CompletedAt).Scan(&round.Seq)
	if err != nil {
		return fmt.Errorf("failed to append repetition round: %w", err)
	}
	return nil
}

func (s *Storage) RecentRepetitionRounds(ctx context.Context, playerID model.PlayerID, levelID model.RepetitionLevelID, limit int) ([]*model.CompletedRepetitionRound, error) {
	if limit <= 0 {
		return []*model.CompletedRepetitionRound{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT seq, duration_ns, completed_at FROM completed_repetition_rounds
		WHERE player_id = $1 AND level_id = $2
		ORDER BY seq DESC
		LIMIT $3
	`, string(playerID), string(levelID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent rounds: %w", err)
	}

	rounds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.CompletedRepetitionRound, error) {
		round := &model.CompletedRepetitionRound{PlayerID: playerID, LevelID: levelID}
		var duration int64
		if err := row.Scan(&round.Seq, &duration, &round.CompletedAt); err != nil {
			return nil, err
		}
		round.Duration = time.Duration(duration)
		return round, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan recent rounds: %w", err)
	}
	return rounds, nil
}
