// Package speedrun aggregates completion times into personal bests.
package speedrun

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/tactics-progress/internal/dependencies/clock"
	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/reqcache"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// Service reports on the speedrun completion log
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// Summary is everything shown on a player's speedrun page
type Summary struct {
	CompletedCount int
	BestOverall    model.BestTime
	Stats          []model.SpeedrunStat
}

// New creates a new speedrun Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

func completedCountKey(playerID model.PlayerID) string {
	return "speedrun:completed_count:" + string(playerID)
}

// CompletedCount returns how many speedruns the player has completed.
// The value is memoised on the request cache carried by ctx, if any.
func (s *Service) CompletedCount(ctx context.Context, playerID model.PlayerID) (int, error) {
	return reqcache.Memo(ctx, completedCountKey(playerID), func() (int, error) {
		return s.storage.CountCompletedSpeedruns(ctx, playerID)
	})
}

// PersonalBest returns the player's fastest time on a level, unrecorded if none
func (s *Service) PersonalBest(ctx context.Context, playerID model.PlayerID, levelID model.SpeedrunLevelID) (model.BestTime, error) {
	return s.fastest(ctx, playerID, &levelID)
}

// BestOverall returns the player's fastest time on any level, unrecorded if none
func (s *Service) BestOverall(ctx context.Context, playerID model.PlayerID) (model.BestTime, error) {
	return s.fastest(ctx, playerID, nil)
}

func (s *Service) fastest(ctx context.Context, playerID model.PlayerID, levelID *model.SpeedrunLevelID) (model.BestTime, error) {
	d, ok, err := s.storage.FastestSpeedrun(ctx, playerID, levelID)
	if err != nil {
		return model.BestTime{}, err
	}
	if !ok {
		return model.BestTime{}, nil
	}
	return model.RecordedTime(d), nil
}

// StatsTable pairs every catalogue level, in catalogue order, with the player's personal best
func (s *Service) StatsTable(ctx context.Context, playerID model.PlayerID) ([]model.SpeedrunStat, error) {
	levels, err := s.storage.ListSpeedrunLevels(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]model.SpeedrunStat, 0, len(levels))
	for _, level := range levels {
		best, err := s.PersonalBest(ctx, playerID, level.ID)
		if err != nil {
			return nil, err
		}
		stats = append(stats, model.SpeedrunStat{
			LevelID:      level.ID,
			LevelName:    level.Name,
			PersonalBest: best,
		})
	}
	return stats, nil
}

// Summary gathers the completed count, overall best and per-level table
func (s *Service) Summary(ctx context.Context, playerID model.PlayerID) (*Summary, error) {
	count, err := s.CompletedCount(ctx, playerID)
	if err != nil {
		return nil, err
	}
	best, err := s.BestOverall(ctx, playerID)
	if err != nil {
		return nil, err
	}
	stats, err := s.StatsTable(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		CompletedCount: count,
		BestOverall:    best,
		Stats:          stats,
	}, nil
}

// RecordCompletion appends a completion time for a catalogue level
func (s *Service) RecordCompletion(ctx context.Context, playerID model.PlayerID, levelID model.SpeedrunLevelID, d time.Duration) (*model.CompletedSpeedrun, error) {
	if d <= 0 {
		return nil, model.ErrInvalidDuration
	}
	if _, err := s.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetSpeedrunLevel(ctx, levelID); err != nil {
		return nil, err
	}

	run := &model.CompletedSpeedrun{
		PlayerID:    playerID,
		LevelID:     levelID,
		Duration:    d,
		CompletedAt: s.clock.Now(),
	}
	if err := s.storage.AppendCompletedSpeedrun(ctx, run); err != nil {
		return nil, err
	}
	reqcache.Invalidate(ctx, completedCountKey(playerID))

	s.logger.InfoContext(ctx, "speedrun completed",
		"player_id", playerID, "level_id", levelID, "duration", d, "seq", run.Seq)
	return run, nil
}
