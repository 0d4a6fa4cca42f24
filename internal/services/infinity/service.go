// Package infinity decides which puzzle a player should attempt next.
package infinity

import (
	"context"
	"log/slog"

	"github.com/mcoot/tactics-progress/internal/dependencies/clock"
	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/services/ladder"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// Service derives infinity progress from the solve log
type Service struct {
	storage storage.Storage
	ladder  *ladder.Service
	clock   clock.Clock
	logger  *slog.Logger
}

// Status summarises a player's infinity progress
type Status struct {
	LatestDifficulty model.Difficulty
	NextPuzzle       model.PuzzleID
	SolvedCount      int
	Breakdown        []model.DifficultyCount
}

// New creates a new infinity Service
func New(storage storage.Storage, ladder *ladder.Service, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		ladder:  ladder,
		clock:   clock,
		logger:  logger,
	}
}

// LatestDifficulty returns the difficulty of the player's most recent solve,
// or the default difficulty if they have never solved a puzzle
func (s *Service) LatestDifficulty(ctx context.Context, playerID model.PlayerID) (model.Difficulty, error) {
	last, ok, err := s.storage.LastSolvedPuzzle(ctx, playerID, nil)
	if err != nil {
		return "", err
	}
	if !ok {
		return model.DefaultDifficulty, nil
	}
	return last.Difficulty, nil
}

// LastSolvedPuzzleID returns the most recently solved puzzle within d, or nil
func (s *Service) LastSolvedPuzzleID(ctx context.Context, playerID model.PlayerID, d model.Difficulty) (*model.PuzzleID, error) {
	last, ok, err := s.storage.LastSolvedPuzzle(ctx, playerID, &d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	id := last.PuzzleID
	return &id, nil
}

// NextPuzzle returns the puzzle after the player's last solve in their latest
// difficulty. Once that ladder is exhausted the terminal puzzle is returned
// again; the player is never moved to another difficulty here.
func (s *Service) NextPuzzle(ctx context.Context, playerID model.PlayerID) (model.PuzzleID, error) {
	d, err := s.LatestDifficulty(ctx, playerID)
	if err != nil {
		return "", err
	}
	return s.nextPuzzleIn(ctx, playerID, d)
}

func (s *Service) nextPuzzleIn(ctx context.Context, playerID model.PlayerID, d model.Difficulty) (model.PuzzleID, error) {
	last, err := s.LastSolvedPuzzleID(ctx, playerID, d)
	if err != nil {
		return "", err
	}

	candidates, err := s.ladder.PuzzlesAfter(ctx, d, last)
	if err != nil {
		return "", err
	}
	if len(candidates) > 0 {
		return candidates[0], nil
	}
	return s.ladder.LastPuzzle(ctx, d)
}

// SolvedCount returns the total number of solves by the player
func (s *Service) SolvedCount(ctx context.Context, playerID model.PlayerID) (int, error) {
	return s.storage.CountSolvedPuzzles(ctx, playerID, nil)
}

// SolvedBreakdown counts the player's solves for every difficulty, in order,
// including difficulties with no solves
func (s *Service) SolvedBreakdown(ctx context.Context, playerID model.PlayerID) ([]model.DifficultyCount, error) {
	difficulties := model.Difficulties()
	breakdown := make([]model.DifficultyCount, 0, len(difficulties))
	for _, d := range difficulties {
		n, err := s.storage.CountSolvedPuzzles(ctx, playerID, &d)
		if err != nil {
			return nil, err
		}
		breakdown = append(breakdown, model.DifficultyCount{Difficulty: d, Count: n})
	}
	return breakdown, nil
}

// Status gathers the player's latest difficulty, next puzzle and solve counts
func (s *Service) Status(ctx context.Context, playerID model.PlayerID) (*Status, error) {
	d, err := s.LatestDifficulty(ctx, playerID)
	if err != nil {
		return nil, err
	}
	next, err := s.nextPuzzleIn(ctx, playerID, d)
	if err != nil {
		return nil, err
	}
	count, err := s.SolvedCount(ctx, playerID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.SolvedBreakdown(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return &Status{
		LatestDifficulty: d,
		NextPuzzle:       next,
		SolvedCount:      count,
		Breakdown:        breakdown,
	}, nil
}

// RecordSolve appends a solve after checking the puzzle belongs to d
func (s *Service) RecordSolve(ctx context.Context, playerID model.PlayerID, puzzle model.PuzzleID, d model.Difficulty) (*model.SolvedInfinityPuzzle, error) {
	if _, err := s.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	ok, err := s.ladder.Contains(ctx, d, puzzle)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrPuzzleNotInLevel
	}

	solve := &model.SolvedInfinityPuzzle{
		PlayerID:   playerID,
		PuzzleID:   puzzle,
		Difficulty: d,
		SolvedAt:   s.clock.Now(),
	}
	if err := s.storage.AppendSolvedPuzzle(ctx, solve); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "infinity puzzle solved",
		"player_id", playerID, "puzzle_id", puzzle, "difficulty", d, "seq", solve.Seq)
	return solve, nil
}
