package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrUsernameTaken  = errors.New("username already registered")

	// Catalogue errors
	ErrInfinityLevelNotFound   = errors.New("infinity level not found")
	ErrEmptyLadder             = errors.New("infinity level has no puzzles")
	ErrPuzzleNotInLevel        = errors.New("puzzle is not part of this infinity level")
	ErrSpeedrunLevelNotFound   = errors.New("speedrun level not found")
	ErrRepetitionLevelNotFound = errors.New("repetition level not found")

	// Input errors
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidDuration   = errors.New("duration must be positive")
)
