// Package repetition derives repetition ladder unlocks from completion history.
package repetition

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/tactics-progress/internal/dependencies/clock"
	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// Service computes repetition progress. Nothing about unlocks is stored;
// each call recomputes it from the completion log.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// Status summarises a player's repetition progress
type Status struct {
	HighestCompleted int
	// HighestUnlocked is nil once every level has been completed
	HighestUnlocked     *model.RepetitionLevel
	AllCleared          bool
	LegacyUnlockedCount int
}

// New creates a new repetition Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// HighestCompletedNumber returns the largest level number the player has completed, or 0
func (s *Service) HighestCompletedNumber(ctx context.Context, playerID model.PlayerID) (int, error) {
	return s.storage.HighestCompletedRepetitionNumber(ctx, playerID)
}

// HighestUnlocked returns the level after the highest completed one.
// ErrRepetitionLevelNotFound means the player has cleared all content.
func (s *Service) HighestUnlocked(ctx context.Context, playerID model.PlayerID) (*model.RepetitionLevel, error) {
	highest, err := s.HighestCompletedNumber(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return s.storage.GetRepetitionLevelByNumber(ctx, highest+1)
}

// LegacyUnlockedCount returns the number of distinct levels in the profile's unlock set
func (s *Service) LegacyUnlockedCount(ctx context.Context, playerID model.PlayerID) (int, error) {
	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return 0, err
	}
	return player.Profile.UnlockedLevelCount(), nil
}

// RecentRounds returns the player's latest rounds on a level, newest first
func (s *Service) RecentRounds(ctx context.Context, playerID model.PlayerID, levelID model.RepetitionLevelID) ([]*model.CompletedRepetitionRound, error) {
	if _, err := s.storage.GetRepetitionLevel(ctx, levelID); err != nil {
		return nil, err
	}
	return s.storage.RecentRepetitionRounds(ctx, playerID, levelID, model.RecentRoundLimit)
}

// RecentRoundTimes returns the formatted times of RecentRounds
func (s *Service) RecentRoundTimes(ctx context.Context, playerID model.PlayerID, levelID model.RepetitionLevelID) ([]string, error) {
	rounds, err := s.RecentRounds(ctx, playerID, levelID)
	if err != nil {
		return nil, err
	}

	times := make([]string, len(rounds))
	for i, r := range rounds {
		times[i] = model.FormatDuration(r.Duration)
	}
	return times, nil
}

// Status gathers highest completed, highest unlocked and the legacy unlock count
func (s *Service) Status(ctx context.Context, playerID model.PlayerID) (*Status, error) {
	legacy, err := s.LegacyUnlockedCount(ctx, playerID)
	if err != nil {
		return nil, err
	}
	highest, err := s.HighestCompletedNumber(ctx, playerID)
	if err != nil {
		return nil, err
	}

	status := &Status{
		HighestCompleted:    highest,
		LegacyUnlockedCount: legacy,
	}

	next, err := s.storage.GetRepetitionLevelByNumber(ctx, highest+1)
	switch {
	case errors.Is(err, model.ErrRepetitionLevelNotFound):
		status.AllCleared = true
	case err != nil:
		return nil, err
	default:
		status.HighestUnlocked = next
	}
	return status, nil
}

// RecordLevelCompletion appends a completion of a catalogue level
func (s *Service) RecordLevelCompletion(ctx context.Context, playerID model.PlayerID, levelID model.RepetitionLevelID) (*model.CompletedRepetitionLevel, error) {
	if _, err := s.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	level, err := s.storage.GetRepetitionLevel(ctx, levelID)
	if err != nil {
		return nil, err
	}

	completion := &model.CompletedRepetitionLevel{
		PlayerID:    playerID,
		LevelID:     levelID,
		CompletedAt: s.clock.Now(),
	}
	if err := s.storage.AppendCompletedRepetitionLevel(ctx, completion); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "repetition level completed",
		"player_id", playerID, "level_id", levelID, "number", level.Number, "seq", completion.Seq)
	return completion, nil
}

// RecordRound appends a practice round on a catalogue level
func (s *Service) RecordRound(ctx context.Context, playerID model.PlayerID, levelID model.RepetitionLevelID, d time.Duration) (*model.CompletedRepetitionRound, error) {
	if d <= 0 {
		return nil, model.ErrInvalidDuration
	}
	if _, err := s.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetRepetitionLevel(ctx, levelID); err != nil {
		return nil, err
	}

	round := &model.CompletedRepetitionRound{
		PlayerID:    playerID,
		LevelID:     levelID,
		Duration:    d,
		CompletedAt: s.clock.Now(),
	}
	if err := s.storage.AppendRepetitionRound(ctx, round); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "repetition round recorded",
		"player_id", playerID, "level_id", levelID, "duration", d, "seq", round.Seq)
	return round, nil
}
