package storage

import (
	"context"
	"time"

	"github.com/mcoot/tactics-progress/internal/model"
)

// Storage defines the interface for data persistence.
//
// The four progress logs are append-only. Every Append* call assigns the
// record a Seq that is strictly greater than any previous Seq in the same log;
// "latest" and "recent" queries order by that key alone.
type Storage interface {
	// Player operations
	//
	// Both writes return model.ErrUsernameTaken when the case-folded username
	// already belongs to a different player. CreatePlayer stores the player and
	// its credential together or not at all.
	CreatePlayer(ctx context.Context, player *model.Player, rp *model.RegisteredPlayer) error
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// GetPlayerByUsername matches case-insensitively
	GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error)

	// Registered player operations
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)

	// Catalogue operations
	SaveInfinityLevel(ctx context.Context, level *model.InfinityLevel) error
	GetInfinityLevel(ctx context.Context, difficulty model.Difficulty) (*model.InfinityLevel, error)
	SaveSpeedrunLevel(ctx context.Context, level *model.SpeedrunLevel) error
	GetSpeedrunLevel(ctx context.Context, id model.SpeedrunLevelID) (*model.SpeedrunLevel, error)
	// ListSpeedrunLevels returns levels in catalogue order
	ListSpeedrunLevels(ctx context.Context) ([]*model.SpeedrunLevel, error)
	SaveRepetitionLevel(ctx context.Context, level *model.RepetitionLevel) error
	GetRepetitionLevel(ctx context.Context, id model.RepetitionLevelID) (*model.RepetitionLevel, error)
	GetRepetitionLevelByNumber(ctx context.Context, number int) (*model.RepetitionLevel, error)

	// Infinity solve log
	AppendSolvedPuzzle(ctx context.Context, solve *model.SolvedInfinityPuzzle) error
	// LastSolvedPuzzle returns the player's latest solve, restricted to a
	// difficulty when one is given. ok is false when there is none.
	LastSolvedPuzzle(ctx context.Context, playerID model.PlayerID, difficulty *model.Difficulty) (solve *model.SolvedInfinityPuzzle, ok bool, err error)
	CountSolvedPuzzles(ctx context.Context, playerID model.PlayerID, difficulty *model.Difficulty) (int, error)

	// Speedrun log
	AppendCompletedSpeedrun(ctx context.Context, run *model.CompletedSpeedrun) error
	CountCompletedSpeedruns(ctx context.Context, playerID model.PlayerID) (int, error)
	// FastestSpeedrun returns the minimum duration, optionally for one level.
	// ok is false when the player has no matching completion.
	FastestSpeedrun(ctx context.Context, playerID model.PlayerID, levelID *model.SpeedrunLevelID) (fastest time.Duration, ok bool, err error)

	// Repetition logs
	AppendCompletedRepetitionLevel(ctx context.Context, completion *model.CompletedRepetitionLevel) error
	// HighestCompletedRepetitionNumber joins completions to their level number; 0 when none
	HighestCompletedRepetitionNumber(ctx context.Context, playerID model.PlayerID) (int, error)
	AppendRepetitionRound(ctx context.Context, round *model.CompletedRepetitionRound) error
	// RecentRepetitionRounds returns at most limit rounds, newest first
	RecentRepetitionRounds(ctx context.Context, playerID model.PlayerID, levelID model.RepetitionLevelID, limit int) ([]*model.CompletedRepetitionRound, error)
}
