package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
	"github.com/mcoot/tactics-progress/internal/storage/storagetest"
)

func newTestStorage(t *testing.T) *Storage {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "tactics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStorageContract(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage { return newTestStorage(t) },
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStorage(t)
	assert.NoError(t, Migrate(context.Background(), store.db))
}

func TestReopenKeepsProgress(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tactics.db")

	store, err := New(ctx, path)
	require.NoError(t, err)
	solve := &model.SolvedInfinityPuzzle{
		PlayerID:   "player-1",
		PuzzleID:   "e1",
		Difficulty: model.DifficultyEasy,
		SolvedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.AppendSolvedPuzzle(ctx, solve))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	last, ok, err := reopened.LastSolvedPuzzle(ctx, "player-1", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.PuzzleID("e1"), last.PuzzleID)
	assert.True(t, solve.SolvedAt.Equal(last.SolvedAt))
}

func TestUsernameKeyIsUnique(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SavePlayer(ctx, model.NewPlayer("player-1", "Alice", time.Now())))
	err := store.SavePlayer(ctx, model.NewPlayer("player-2", "ALICE", time.Now()))
	assert.ErrorIs(t, err, model.ErrUsernameTaken)
}
