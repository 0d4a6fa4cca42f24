package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Catalogue fixture used across service, API and CLI tests.
// The insane ladder exists but is empty.
var (
	EasyPuzzles   = []model.PuzzleID{"e1", "e2", "e3"}
	MediumPuzzles = []model.PuzzleID{"m1", "m2"}
	HardPuzzles   = []model.PuzzleID{"h1"}

	SpeedrunLevels = []*model.SpeedrunLevel{
		{ID: "sr-fast", Name: "Fast", Position: 1},
		{ID: "sr-quick", Name: "Quick", Position: 2},
		{ID: "sr-endurance", Name: "Endurance", Position: 3},
	}

	RepetitionLevels = []*model.RepetitionLevel{
		{ID: "rep-1", Number: 1, Name: "Forks"},
		{ID: "rep-2", Number: 2, Name: "Pins"},
		{ID: "rep-3", Number: 3, Name: "Skewers"},
	}
)

// SeedCatalogue writes the fixture catalogue to store
func SeedCatalogue(t testing.TB, store storage.Storage) {
	t.Helper()
	ctx := context.Background()

	ladders := map[model.Difficulty][]model.PuzzleID{
		model.DifficultyEasy:   EasyPuzzles,
		model.DifficultyMedium: MediumPuzzles,
		model.DifficultyHard:   HardPuzzles,
		model.DifficultyInsane: nil,
	}
	for d, puzzles := range ladders {
		require.NoError(t, store.SaveInfinityLevel(ctx, &model.InfinityLevel{Difficulty: d, Puzzles: puzzles}))
	}
	for _, level := range SpeedrunLevels {
		require.NoError(t, store.SaveSpeedrunLevel(ctx, level))
	}
	for _, level := range RepetitionLevels {
		require.NoError(t, store.SaveRepetitionLevel(ctx, level))
	}
}

// CreatePlayer saves a player with the default profile directly to store
func CreatePlayer(t testing.TB, store storage.Storage, id model.PlayerID, username string) *model.Player {
	t.Helper()
	player := model.NewPlayer(id, username, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, store.SavePlayer(context.Background(), player))
	return player
}
