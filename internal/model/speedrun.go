package model

import "time"

// SpeedrunLevelID identifies a speedrun level in the catalogue
type SpeedrunLevelID string

// SpeedrunLevel is a timed challenge level
type SpeedrunLevel struct {
	ID       SpeedrunLevelID
	Name     string
	Position int // catalogue order, ascending
}

// CompletedSpeedrun is one finished speedrun attempt
type CompletedSpeedrun struct {
	Seq         int64
	PlayerID    PlayerID
	LevelID     SpeedrunLevelID
	Duration    time.Duration
	CompletedAt time.Time
}

// SpeedrunStat is one row of a player's speedrun stats table
type SpeedrunStat struct {
	LevelID      SpeedrunLevelID
	LevelName    string
	PersonalBest BestTime
}
