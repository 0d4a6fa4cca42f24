// Package ladder answers ordering questions about the infinity puzzle ladders.
package ladder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// Service reads per-difficulty puzzle sequences from the catalogue
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new ladder Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Level returns the ladder for a difficulty.
// A missing ladder means the catalogue was seeded incorrectly and is logged as an error.
func (s *Service) Level(ctx context.Context, d model.Difficulty) (*model.InfinityLevel, error) {
	if !d.IsValid() {
		return nil, model.ErrInvalidDifficulty
	}

	level, err := s.storage.GetInfinityLevel(ctx, d)
	if err != nil {
		if errors.Is(err, model.ErrInfinityLevelNotFound) {
			s.logger.ErrorContext(ctx, "infinity ladder missing from catalogue", "difficulty", d)
		}
		return nil, err
	}
	return level, nil
}

// PuzzlesAfter returns the puzzles of d strictly after the given puzzle, or
// the whole ladder when after is nil or not part of it
func (s *Service) PuzzlesAfter(ctx context.Context, d model.Difficulty, after *model.PuzzleID) ([]model.PuzzleID, error) {
	level, err := s.Level(ctx, d)
	if err != nil {
		return nil, err
	}
	return level.PuzzlesAfter(after), nil
}

// LastPuzzle returns the terminal puzzle of d
func (s *Service) LastPuzzle(ctx context.Context, d model.Difficulty) (model.PuzzleID, error) {
	level, err := s.Level(ctx, d)
	if err != nil {
		return "", err
	}

	last, ok := level.LastPuzzle()
	if !ok {
		s.logger.ErrorContext(ctx, "infinity ladder has no puzzles", "difficulty", d)
		return "", model.ErrEmptyLadder
	}
	return last, nil
}

// Contains reports whether puzzle belongs to the ladder for d
func (s *Service) Contains(ctx context.Context, d model.Difficulty, puzzle model.PuzzleID) (bool, error) {
	level, err := s.Level(ctx, d)
	if err != nil {
		return false, err
	}
	return level.Contains(puzzle), nil
}
