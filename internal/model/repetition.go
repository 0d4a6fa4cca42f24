package model

import "time"

// RepetitionLevelID identifies a repetition level in the catalogue
type RepetitionLevelID string

// RepetitionLevel is one rung of the sequential repetition ladder.
// Numbers start at 1 and have no gaps.
type RepetitionLevel struct {
	ID     RepetitionLevelID
	Number int
	Name   string
}

// CompletedRepetitionLevel records a player clearing a repetition level
type CompletedRepetitionLevel struct {
	Seq         int64
	PlayerID    PlayerID
	LevelID     RepetitionLevelID
	CompletedAt time.Time
}

// CompletedRepetitionRound is one practice round on a repetition level
type CompletedRepetitionRound struct {
	Seq         int64
	PlayerID    PlayerID
	LevelID     RepetitionLevelID
	Duration    time.Duration
	CompletedAt time.Time
}

// RecentRoundLimit is how many practice rounds are reported per level
const RecentRoundLimit = 10
