package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens the database at path and returns a ready storage
func New(ctx context.Context, path string) (*Storage, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player, rp *model.RegisteredPlayer) error {
	player.EnsureProfile()
	profile, err := json.Marshal(player.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO players (id, username, username_key, profile, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, string(player.ID), player.Username, model.UsernameKey(player.Username), string(profile), toUnix(player.CreatedAt))
		if isUniqueViolation(err) {
			return model.ErrUsernameTaken
		}
		if err != nil {
			return fmt.Errorf("player create: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO registered_players (player_id, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?)
		`, string(rp.PlayerID), rp.PasswordHash, toUnix(rp.CreatedAt), toUnix(rp.UpdatedAt))
		if err != nil {
			return fmt.Errorf("registered player create: %w", err)
		}
		return nil
	})
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	player.EnsureProfile()
	profile, err := json.Marshal(player.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (id, username, username_key, profile, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			username_key = excluded.username_key,
			profile = excluded.profile
	`, string(player.ID), player.Username, model.UsernameKey(player.Username), string(profile), toUnix(player.CreatedAt))
	if isUniqueViolation(err) {
		return model.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("player save: %w", err)
	}
	return nil
}

func (s *Storage) scanPlayer(row *sql.Row) (*model.Player, error) {
	var (
		p         model.Player
		id        string
		profile   string
		createdAt int64
	)
	if err := row.Scan(&id, &p.Username, &profile, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("player get: %w", err)
	}

	p.ID = model.PlayerID(id)
	p.CreatedAt = fromUnix(createdAt)
	p.Profile = &model.Profile{}
	if err := json.Unmarshal([]byte(profile), p.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, profile, created_at FROM players WHERE id = ?`, string(id))
	return s.scanPlayer(row)
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, profile, created_at FROM players WHERE username_key = ?`, model.UsernameKey(username))
	return s.scanPlayer(row)
}

// Registered player operations

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var (
		rp                   model.RegisteredPlayer
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT password_hash, created_at, updated_at FROM registered_players WHERE player_id = ?
	`, string(playerID)).Scan(&rp.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("registered player get: %w", err)
	}

	rp.PlayerID = playerID
	rp.CreatedAt = fromUnix(createdAt)
	rp.UpdatedAt = fromUnix(updatedAt)
	return &rp, nil
}

// Catalogue operations

func (s *Storage) SaveInfinityLevel(ctx context.Context, level *model.InfinityLevel) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO infinity_levels (difficulty) VALUES (?)`, string(level.Difficulty)); err != nil {
			return fmt.Errorf("infinity level save: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM infinity_level_puzzles WHERE difficulty = ?`, string(level.Difficulty)); err != nil {
			return fmt.Errorf("infinity level clear: %w", err)
		}
		for i, id := range level.Puzzles {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO infinity_level_puzzles (difficulty, position, puzzle_id) VALUES (?, ?, ?)
			`, string(level.Difficulty), i, string(id)); err != nil {
				return fmt.Errorf("infinity level puzzle save: %w", err)
			}
		}
		return nil
	})
}

func (s *Storage) GetInfinityLevel(ctx context.Context, difficulty model.Difficulty) (*model.InfinityLevel, error) {
	var found string
	err := s.db.QueryRowContext(ctx, `SELECT difficulty FROM infinity_levels WHERE difficulty = ?`, string(difficulty)).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrInfinityLevelNotFound
		}
		return nil, fmt.Errorf("infinity level get: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT puzzle_id FROM infinity_level_puzzles WHERE difficulty = ? ORDER BY position
	`, string(difficulty))
	if err != nil {
		return nil, fmt.Errorf("infinity level puzzles: %w", err)
	}
	defer rows.Close()

	level := &model.InfinityLevel{Difficulty: difficulty, Puzzles: []model.PuzzleID{}}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("infinity level puzzles scan: %w", err)
		}
		level.Puzzles = append(level.Puzzles, model.PuzzleID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("infinity level puzzles rows: %w", err)
	}
	return level, nil
}

func (s *Storage) SaveSpeedrunLevel(ctx context.Context, level *model.SpeedrunLevel) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO speedrun_levels (id, name, position) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, position = excluded.position
	`, string(level.ID), level.Name, level.Position)
	if err != nil {
		return fmt.Errorf("speedrun level save: %w", err)
	}
	return nil
}

func (s *Storage) GetSpeedrunLevel(ctx context.Context, id model.SpeedrunLevelID) (*model.SpeedrunLevel, error) {
	level := &model.SpeedrunLevel{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT name, position FROM speedrun_levels WHERE id = ?`, string(id)).
		Scan(&level.Name, &level.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSpeedrunLevelNotFound
		}
		return nil, fmt.Errorf("speedrun level get: %w", err)
	}
	return level, nil
}

func (s *Storage) ListSpeedrunLevels(ctx context.Context) ([]*model.SpeedrunLevel, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, position FROM speedrun_levels ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("speedrun levels list: %w", err)
	}
	defer rows.Close()

	levels := []*model.SpeedrunLevel{}
	for rows.Next() {
		var (
			level model.SpeedrunLevel
			id    string
		)
		if err := rows.Scan(&id, &level.Name, &level.Position); err != nil {
			return nil, fmt.Errorf("speedrun levels scan: %w", err)
		}
		level.ID = model.SpeedrunLevelID(id)
		levels = append(levels, &level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("speedrun levels rows: %w", err)
	}
	return levels, nil
}

func (s *Storage) SaveRepetitionLevel(ctx context.Context, level *model.RepetitionLevel) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repetition_levels (id, number, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET number = excluded.number, name = excluded.name
	`, string(level.ID), level.Number, level.Name)
	if err != nil {
		return fmt.Errorf("repetition level save: %w", err)
	}
	return nil
}

func (s *Storage) scanRepetitionLevel(row *sql.Row) (*model.RepetitionLevel, error) {
	var (
		level model.RepetitionLevel
		id    string
	)
	if err := row.Scan(&id, &level.Number, &level.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRepetitionLevelNotFound
		}
		return nil, fmt.Errorf("repetition level get: %w", err)
	}
	level.ID = model.RepetitionLevelID(id)
	return &level, nil
}

func (s *Storage) GetRepetitionLevel(ctx context.Context, id model.RepetitionLevelID) (*model.RepetitionLevel, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, number, name FROM repetition_levels WHERE id = ?`, string(id))
	return s.scanRepetitionLevel(row)
}

func (s *Storage) GetRepetitionLevelByNumber(ctx context.Context, number int) (*model.RepetitionLevel, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, number, name FROM repetition_levels WHERE number = ?`, number)
	return s.scanRepetitionLevel(row)
}

// Infinity solve log

func (s *Storage) AppendSolvedPuzzle(ctx context.Context, solve *model.SolvedInfinityPuzzle) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO solved_infinity_puzzles (player_id, puzzle_id, difficulty, solved_at) VALUES (?, ?, ?, ?)
	`, string(solve.PlayerID), string(solve.PuzzleID), string(solve.Difficulty), toUnix(solve.SolvedAt))
	if err != nil {
		return fmt.Errorf("solve append: %w", err)
	}
	solve.Seq, err = res.LastInsertId()
	return err
}

func (s *Storage) LastSolvedPuzzle(ctx context.Context, playerID model.PlayerID, difficulty *model.Difficulty) (*model.SolvedInfinityPuzzle, bool, error) {
	query := `SELECT seq, puzzle_id, difficulty, solved_at FROM solved_infinity_puzzles WHERE player_id = ?`
	args := []any{string(playerID)}
	if difficulty != nil {
		query += ` AND difficulty = ?`
		args = append(args, string(*difficulty))
	}
	query += ` ORDER BY seq DESC LIMIT 1`

	var (
		solve          model.SolvedInfinityPuzzle
		puzzleID, diff string
		solvedAt       int64
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&solve.Seq, &puzzleID, &diff, &solvedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("last solve: %w", err)
	}

	solve.PlayerID = playerID
	solve.PuzzleID = model.PuzzleID(puzzleID)
	solve.Difficulty = model.Difficulty(diff)
	solve.SolvedAt = fromUnix(solvedAt)
	return &solve, true, nil
}

func (s *Storage) CountSolvedPuzzles(ctx context.Context, playerID model.PlayerID, difficulty *model.Difficulty) (int, error) {
	query := `SELECT COUNT(*) FROM solved_infinity_puzzles WHERE player_id = ?`
	args := []any{string(playerID)}
	if difficulty != nil {
		query += ` AND difficulty = ?`
		args = append(args, string(*difficulty))
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count solves: %w", err)
	}
	return n, nil
}

// Speedrun log

func (s *Storage) AppendCompletedSpeedrun(ctx context.Context, run *model.CompletedSpeedrun) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO completed_speedruns (player_id, level_id, duration, completed_at) VALUES (?, ?, ?, ?)
	`, string(run.PlayerID), string(run.LevelID), int64(run.Duration), toUnix(run.CompletedAt))
	if err != nil {
		return fmt.Errorf("speedrun append: %w", err)
	}
	run.Seq, err = res.LastInsertId()
	return err
}

func (s *Storage) CountCompletedSpeedruns(ctx context.Context, playerID model.PlayerID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM completed_speedruns WHERE player_id = ?`, string(playerID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count speedruns: %w", err)
	}
	return n, nil
}

func (s *Storage) FastestSpeedrun(ctx context.Context, playerID model.PlayerID, levelID *model.SpeedrunLevelID) (time.Duration, bool, error) {
	query := `SELECT MIN(duration) FROM completed_speedruns WHERE player_id = ?`
	args := []any{string(playerID)}
	if levelID != nil {
		query += ` AND level_id = ?`
		args = append(args, string(*levelID))
	}

	var fastest sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&fastest); err != nil {
		return 0, false, fmt.Errorf("fastest speedrun: %w", err)
	}
	if !fastest.Valid {
		return 0, false, nil
	}
	return time.Duration(fastest.Int64), true, nil
}

// Repetition logs

func (s *Storage) AppendCompletedRepetitionLevel(ctx context.Context, completion *model.CompletedRepetitionLevel) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO completed_repetition_levels (player_id, level_id, completed_at) VALUES (?, ?, ?)
	`, string(completion.PlayerID), string(completion.LevelID), toUnix(completion.CompletedAt))
	if err != nil {
		return fmt.Errorf("repetition completion append: %w", err)
	}
	completion.Seq, err = res.LastInsertId()
	return err
}

func (s *Storage) HighestCompletedRepetitionNumber(ctx context.Context, playerID model.PlayerID) (int, error) {
	var highest int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(l.number), 0)
		FROM completed_repetition_levels c
		JOIN repetition_levels l ON l.id = c.level_id
		WHERE c.player_id = ?
	`, string(playerID)).Scan(&highest)
	if err != nil {
		return 0, fmt.Errorf("highest repetition: %w", err)
	}
	return highest, nil
}

func (s *Storage) AppendRepetitionRound(ctx context.Context, round *model.CompletedRepetitionRound) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO completed_repetition_rounds (player_id, level_id, duration, completed_at) VALUES (?, ?, ?, ?)
	`, string(round.PlayerID), string(round.LevelID), int64(round.Duration), toUnix(round.CompletedAt))
	if err != nil {
		return fmt.Errorf("repetition round append: %w", err)
	}
	round.Seq, err = res.LastInsertId()
	return err
}

func (s *Storage) RecentRepetitionRounds(ctx context.Context, playerID model.PlayerID, levelID model.RepetitionLevelID, limit int) ([]*model.CompletedRepetitionRound, error) {
	rounds := []*model.CompletedRepetitionRound{}
	if limit <= 0 {
		return rounds, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, duration, completed_at FROM completed_repetition_rounds
		WHERE player_id = ? AND level_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, string(playerID), string(levelID), limit)
	if err != nil {
		return nil, fmt.Errorf("recent rounds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			round       model.CompletedRepetitionRound
			duration    int64
			completedAt int64
		)
		if err := rows.Scan(&round.Seq, &duration, &completedAt); err != nil {
			return nil, fmt.Errorf("recent rounds scan: %w", err)
		}
		round.PlayerID = playerID
		round.LevelID = levelID
		round.Duration = time.Duration(duration)
		round.CompletedAt = fromUnix(completedAt)
		rounds = append(rounds, &round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent rounds rows: %w", err)
	}
	return rounds, nil
}
