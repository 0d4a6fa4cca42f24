package response

import (
	"encoding/json"
	"time"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/services/infinity"
	"github.com/mcoot/tactics-progress/internal/services/repetition"
	"github.com/mcoot/tactics-progress/internal/services/speedrun"
)

// Player represents a player in API responses
type Player struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Profile   json.RawMessage `json:"profile"`
	CreatedAt time.Time       `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	profile := json.RawMessage("{}")
	if p.Profile != nil {
		if raw, err := json.Marshal(p.Profile); err == nil {
			profile = raw
		}
	}
	return Player{
		ID:        string(p.ID),
		Username:  p.Username,
		Profile:   profile,
		CreatedAt: p.CreatedAt,
	}
}

// Time is a duration as shown to players, plus the raw value when one exists
type Time struct {
	Display    string `json:"display"`
	DurationMS *int64 `json:"duration_ms"`
}

// TimeFromBest converts a model.BestTime
func TimeFromBest(b model.BestTime) Time {
	t := Time{Display: b.String()}
	if b.Recorded {
		ms := b.Duration.Milliseconds()
		t.DurationMS = &ms
	}
	return t
}

// DifficultyCount is one row of the infinity breakdown
type DifficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// InfinityStatus is the response for a player's infinity progress
type InfinityStatus struct {
	LatestDifficulty string            `json:"latest_difficulty"`
	NextPuzzleID     string            `json:"next_puzzle_id"`
	SolvedCount      int               `json:"solved_count"`
	Breakdown        []DifficultyCount `json:"breakdown"`
}

// InfinityStatusFromService converts an infinity.Status
func InfinityStatusFromService(s *infinity.Status) InfinityStatus {
	breakdown := make([]DifficultyCount, len(s.Breakdown))
	for i, dc := range s.Breakdown {
		breakdown[i] = DifficultyCount{Difficulty: string(dc.Difficulty), Count: dc.Count}
	}
	return InfinityStatus{
		LatestDifficulty: string(s.LatestDifficulty),
		NextPuzzleID:     string(s.NextPuzzle),
		SolvedCount:      s.SolvedCount,
		Breakdown:        breakdown,
	}
}

// Solve is a recorded infinity solve
type Solve struct {
	Seq        int64     `json:"seq"`
	PuzzleID   string    `json:"puzzle_id"`
	Difficulty string    `json:"difficulty"`
	SolvedAt   time.Time `json:"solved_at"`
}

// SolveFromModel converts a model.SolvedInfinityPuzzle
func SolveFromModel(s *model.SolvedInfinityPuzzle) Solve {
	return Solve{
		Seq:        s.Seq,
		PuzzleID:   string(s.PuzzleID),
		Difficulty: string(s.Difficulty),
		SolvedAt:   s.SolvedAt,
	}
}

// SpeedrunStat is one row of the stats table
type SpeedrunStat struct {
	LevelID      string `json:"level_id"`
	LevelName    string `json:"level_name"`
	PersonalBest Time   `json:"personal_best"`
}

// SpeedrunSummary is the response for a player's speedrun progress
type SpeedrunSummary struct {
	CompletedCount int            `json:"completed_count"`
	BestOverall    Time           `json:"best_overall"`
	Stats          []SpeedrunStat `json:"stats"`
}

// SpeedrunSummaryFromService converts a speedrun.Summary
func SpeedrunSummaryFromService(s *speedrun.Summary) SpeedrunSummary {
	stats := make([]SpeedrunStat, len(s.Stats))
	for i, st := range s.Stats {
		stats[i] = SpeedrunStat{
			LevelID:      string(st.LevelID),
			LevelName:    st.LevelName,
			PersonalBest: TimeFromBest(st.PersonalBest),
		}
	}
	return SpeedrunSummary{
		CompletedCount: s.CompletedCount,
		BestOverall:    TimeFromBest(s.BestOverall),
		Stats:          stats,
	}
}

// CompletedSpeedrun is a recorded speedrun completion
type CompletedSpeedrun struct {
	Seq         int64     `json:"seq"`
	LevelID     string    `json:"level_id"`
	Time        Time      `json:"time"`
	CompletedAt time.Time `json:"completed_at"`
}

// CompletedSpeedrunFromModel converts a model.CompletedSpeedrun
func CompletedSpeedrunFromModel(r *model.CompletedSpeedrun) CompletedSpeedrun {
	return CompletedSpeedrun{
		Seq:         r.Seq,
		LevelID:     string(r.LevelID),
		Time:        TimeFromBest(model.RecordedTime(r.Duration)),
		CompletedAt: r.CompletedAt,
	}
}

// RepetitionLevel is a catalogue repetition level
type RepetitionLevel struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// RepetitionStatus is the response for a player's repetition progress
type RepetitionStatus struct {
	HighestCompleted    int              `json:"highest_completed"`
	HighestUnlocked     *RepetitionLevel `json:"highest_unlocked"`
	AllCleared          bool             `json:"all_cleared"`
	LegacyUnlockedCount int              `json:"legacy_unlocked_count"`
}

// RepetitionStatusFromService converts a repetition.Status
func RepetitionStatusFromService(s *repetition.Status) RepetitionStatus {
	status := RepetitionStatus{
		HighestCompleted:    s.HighestCompleted,
		AllCleared:          s.AllCleared,
		LegacyUnlockedCount: s.LegacyUnlockedCount,
	}
	if s.HighestUnlocked != nil {
		status.HighestUnlocked = &RepetitionLevel{
			ID:     string(s.HighestUnlocked.ID),
			Number: s.HighestUnlocked.Number,
			Name:   s.HighestUnlocked.Name,
		}
	}
	return status
}

// LevelCompletion is a recorded repetition level completion
type LevelCompletion struct {
	Seq         int64     `json:"seq"`
	LevelID     string    `json:"level_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// LevelCompletionFromModel converts a model.CompletedRepetitionLevel
func LevelCompletionFromModel(c *model.CompletedRepetitionLevel) LevelCompletion {
	return LevelCompletion{
		Seq:         c.Seq,
		LevelID:     string(c.LevelID),
		CompletedAt: c.CompletedAt,
	}
}

// Round is a recorded repetition round
type Round struct {
	Seq         int64     `json:"seq"`
	LevelID     string    `json:"level_id"`
	Time        Time      `json:"time"`
	CompletedAt time.Time `json:"completed_at"`
}

// RoundFromModel converts a model.CompletedRepetitionRound
func RoundFromModel(r *model.CompletedRepetitionRound) Round {
	return Round{
		Seq:         r.Seq,
		LevelID:     string(r.LevelID),
		Time:        TimeFromBest(model.RecordedTime(r.Duration)),
		CompletedAt: r.CompletedAt,
	}
}

// RecentRounds is the response for a player's latest rounds on a level, newest first
type RecentRounds struct {
	LevelID string  `json:"level_id"`
	Rounds  []Round `json:"rounds"`
}

// RecentRoundsFromModel converts a slice of rounds
func RecentRoundsFromModel(levelID model.RepetitionLevelID, rounds []*model.CompletedRepetitionRound) RecentRounds {
	out := make([]Round, len(rounds))
	for i, r := range rounds {
		out[i] = RoundFromModel(r)
	}
	return RecentRounds{LevelID: string(levelID), Rounds: out}
}

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
}
