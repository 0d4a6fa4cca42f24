package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case InfinityStatus:
		o.printInfinityStatus(v)
	case Solve:
		o.printf("Solved %s (%s)\n", v.PuzzleID, v.Difficulty)
	case SpeedrunSummary:
		o.printSpeedrunSummary(v)
	case CompletedSpeedrun:
		o.printf("Recorded %s on %s\n", v.Time.Display, v.LevelID)
	case RepetitionStatus:
		o.printRepetitionStatus(v)
	case LevelCompletion:
		o.printf("Completed %s\n", v.LevelID)
	case Round:
		o.printf("Recorded %s on %s\n", v.Time.Display, v.LevelID)
	case RecentRounds:
		o.printRecentRounds(v)
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// Player response type (matches API)
type Player struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the part of the player profile the CLI shows
type Profile struct {
	LevelsUnlocked []int `json:"levels_unlocked"`
}

// Time is a formatted duration with its raw value
type Time struct {
	Display    string `json:"display"`
	DurationMS *int64 `json:"duration_ms"`
}

// DifficultyCount response type
type DifficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// InfinityStatus response type
type InfinityStatus struct {
	LatestDifficulty string            `json:"latest_difficulty"`
	NextPuzzleID     string            `json:"next_puzzle_id"`
	SolvedCount      int               `json:"solved_count"`
	Breakdown        []DifficultyCount `json:"breakdown"`
}

// Solve response type
type Solve struct {
	Seq        int64     `json:"seq"`
	PuzzleID   string    `json:"puzzle_id"`
	Difficulty string    `json:"difficulty"`
	SolvedAt   time.Time `json:"solved_at"`
}

// SpeedrunStat response type
type SpeedrunStat struct {
	LevelID      string `json:"level_id"`
	LevelName    string `json:"level_name"`
	PersonalBest Time   `json:"personal_best"`
}

// SpeedrunSummary response type
type SpeedrunSummary struct {
	CompletedCount int            `json:"completed_count"`
	BestOverall    Time           `json:"best_overall"`
	Stats          []SpeedrunStat `json:"stats"`
}

// CompletedSpeedrun response type
type CompletedSpeedrun struct {
	Seq         int64     `json:"seq"`
	LevelID     string    `json:"level_id"`
	Time        Time      `json:"time"`
	CompletedAt time.Time `json:"completed_at"`
}

// RepetitionLevel response type
type RepetitionLevel struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// RepetitionStatus response type
type RepetitionStatus struct {
	HighestCompleted    int              `json:"highest_completed"`
	HighestUnlocked     *RepetitionLevel `json:"highest_unlocked"`
	AllCleared          bool             `json:"all_cleared"`
	LegacyUnlockedCount int              `json:"legacy_unlocked_count"`
}

// LevelCompletion response type
type LevelCompletion struct {
	Seq         int64     `json:"seq"`
	LevelID     string    `json:"level_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// Round response type
type Round struct {
	Seq         int64     `json:"seq"`
	LevelID     string    `json:"level_id"`
	Time        Time      `json:"time"`
	CompletedAt time.Time `json:"completed_at"`
}

// RecentRounds response type
type RecentRounds struct {
	LevelID string  `json:"level_id"`
	Rounds  []Round `json:"rounds"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	unlocked := make(map[int]struct{}, len(p.Profile.LevelsUnlocked))
	for _, n := range p.Profile.LevelsUnlocked {
		unlocked[n] = struct{}{}
	}

	o.printf("Player: %s (%s)\n", p.Username, p.ID)
	o.printf("Created: %s\n", p.CreatedAt.UTC().Format(time.RFC3339))
	o.printf("Legacy levels unlocked: %d\n", len(unlocked))
}

func (o *Output) printInfinityStatus(s InfinityStatus) {
	o.printf("Difficulty: %s\n", s.LatestDifficulty)
	o.printf("Next puzzle: %s\n", s.NextPuzzleID)
	o.printf("Solved: %d\n", s.SolvedCount)
	o.printf("Breakdown:\n")

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	for _, dc := range s.Breakdown {
		_, _ = fmt.Fprintf(tw, "  %s\t%d\n", dc.Difficulty, dc.Count)
	}
	_ = tw.Flush()
}

func (o *Output) printSpeedrunSummary(s SpeedrunSummary) {
	o.printf("Completed: %d\n", s.CompletedCount)
	o.printf("Best overall: %s\n", s.BestOverall.Display)

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LEVEL\tBEST")
	for _, stat := range s.Stats {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", stat.LevelName, stat.PersonalBest.Display)
	}
	_ = tw.Flush()
}

func (o *Output) printRepetitionStatus(s RepetitionStatus) {
	o.printf("Highest completed: %d\n", s.HighestCompleted)
	if s.AllCleared || s.HighestUnlocked == nil {
		o.printf("Next level: all levels cleared\n")
	} else {
		o.printf("Next level: %d %s (%s)\n", s.HighestUnlocked.Number, s.HighestUnlocked.Name, s.HighestUnlocked.ID)
	}
	o.printf("Legacy levels unlocked: %d\n", s.LegacyUnlockedCount)
}

func (o *Output) printRecentRounds(r RecentRounds) {
	if len(r.Rounds) == 0 {
		o.printf("No rounds recorded on %s\n", r.LevelID)
		return
	}

	o.printf("Recent rounds on %s:\n", r.LevelID)
	for _, round := range r.Rounds {
		o.printf("  %s\n", round.Time.Display)
	}
}
