package model

import "time"

// Difficulty is a tier of the infinity puzzle ladder
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyInsane Difficulty = "insane"
)

// DefaultDifficulty is where players with no solves start
const DefaultDifficulty = DifficultyEasy

// Difficulties returns all difficulties in catalogue order
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyInsane}
}

// IsValid returns true if d is one of the known difficulties
func (d Difficulty) IsValid() bool {
	for _, known := range Difficulties() {
		if d == known {
			return true
		}
	}
	return false
}

// PuzzleID identifies a puzzle in the catalogue
type PuzzleID string

// InfinityLevel is the ordered puzzle ladder for one difficulty
type InfinityLevel struct {
	Difficulty Difficulty
	Puzzles    []PuzzleID
}

// PuzzlesAfter returns the puzzles strictly after the given puzzle.
// A nil or unknown puzzle means the start of the ladder.
func (l *InfinityLevel) PuzzlesAfter(after *PuzzleID) []PuzzleID {
	start := 0
	if after != nil {
		for i, id := range l.Puzzles {
			if id == *after {
				start = i + 1
				break
			}
		}
	}
	result := make([]PuzzleID, len(l.Puzzles)-start)
	copy(result, l.Puzzles[start:])
	return result
}

// LastPuzzle returns the terminal puzzle of the ladder
func (l *InfinityLevel) LastPuzzle() (PuzzleID, bool) {
	if len(l.Puzzles) == 0 {
		return "", false
	}
	return l.Puzzles[len(l.Puzzles)-1], true
}

// Contains returns true if the puzzle is part of this ladder
func (l *InfinityLevel) Contains(id PuzzleID) bool {
	for _, p := range l.Puzzles {
		if p == id {
			return true
		}
	}
	return false
}

// SolvedInfinityPuzzle is one entry of a player's solve log
type SolvedInfinityPuzzle struct {
	Seq        int64 // solve order, assigned by storage
	PlayerID   PlayerID
	PuzzleID   PuzzleID
	Difficulty Difficulty
	SolvedAt   time.Time
}

// DifficultyCount pairs a difficulty with a solve count
type DifficultyCount struct {
	Difficulty Difficulty
	Count      int
}
