// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// Suite runs the storage contract against a backend built by NewStorage.
// Backends embed it in their own test file and call suite.Run.
type Suite struct {
	suite.Suite

	// NewStorage returns an empty store; called before every test.
	// Backends register their own cleanup on t.
	NewStorage func(t *testing.T) storage.Storage

	Store storage.Storage
	Ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Store = s.NewStorage(s.T())
	s.Ctx = context.Background()
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func difficulty(d model.Difficulty) *model.Difficulty { return &d }

func speedrunLevel(id model.SpeedrunLevelID) *model.SpeedrunLevelID { return &id }

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := model.NewPlayer("player-1", "Alice_01", baseTime)
	player.Profile.LevelsUnlocked = []int{1, 2, 2}

	s.Require().NoError(s.Store.SavePlayer(s.Ctx, player))

	retrieved, err := s.Store.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Alice_01", retrieved.Username)
	s.Require().NotNil(retrieved.Profile)
	s.Equal([]int{1, 2, 2}, retrieved.Profile.LevelsUnlocked)
	s.True(baseTime.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Store.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestGetPlayerByUsernameIgnoresCase() {
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, model.NewPlayer("player-1", "alice_01", baseTime)))

	retrieved, err := s.Store.GetPlayerByUsername(s.Ctx, "ALICE_01")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.ID)
	s.Equal("alice_01", retrieved.Username)
}

func (s *Suite) TestGetPlayerByUsernameNotFound() {
	_, err := s.Store.GetPlayerByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerRejectsTakenUsername() {
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, model.NewPlayer("player-1", "alice", baseTime)))

	err := s.Store.SavePlayer(s.Ctx, model.NewPlayer("player-2", "ALICE", baseTime))
	s.ErrorIs(err, model.ErrUsernameTaken)

	owner, err := s.Store.GetPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), owner.ID)
	_, err = s.Store.GetPlayer(s.Ctx, "player-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerUpdatesOwnRecord() {
	player := model.NewPlayer("player-1", "alice", baseTime)
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, player))

	player.Username = "ALICE"
	player.Profile.LevelsUnlocked = []int{1, 2}
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, player))

	retrieved, err := s.Store.GetPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("ALICE", retrieved.Username)
	s.Equal([]int{1, 2}, retrieved.Profile.LevelsUnlocked)
}

func registeredPlayer(id model.PlayerID) *model.RegisteredPlayer {
	return &model.RegisteredPlayer{
		PlayerID:     id,
		PasswordHash: "hash-" + string(id),
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
}

func (s *Suite) TestCreatePlayerStoresCredential() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, model.NewPlayer("player-1", "alice", baseTime), registeredPlayer("player-1")))

	player, err := s.Store.GetPlayerByUsername(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), player.ID)

	retrieved, err := s.Store.GetRegisteredPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("hash-player-1", retrieved.PasswordHash)
}

func (s *Suite) TestCreatePlayerRejectsTakenUsername() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, model.NewPlayer("player-1", "alice_01", baseTime), registeredPlayer("player-1")))

	err := s.Store.CreatePlayer(s.Ctx, model.NewPlayer("player-2", "ALICE_01", baseTime), registeredPlayer("player-2"))
	s.ErrorIs(err, model.ErrUsernameTaken)

	// Neither half of the rejected player is stored
	_, err = s.Store.GetPlayer(s.Ctx, "player-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.Store.GetRegisteredPlayer(s.Ctx, "player-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	owner, err := s.Store.GetPlayerByUsername(s.Ctx, "alice_01")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), owner.ID)
}

func (s *Suite) TestConcurrentCreatePlayerClaimsUsernameOnce() {
	const writers = 8
	names := []string{"alice_01", "ALICE_01", "Alice_01", "aLiCe_01"}

	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := model.PlayerID(fmt.Sprintf("player-%d", i))
			errs[i] = s.Store.CreatePlayer(s.Ctx, model.NewPlayer(id, names[i%len(names)], baseTime), registeredPlayer(id))
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, model.ErrUsernameTaken):
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, created)

	owner, err := s.Store.GetPlayerByUsername(s.Ctx, "alice_01")
	s.Require().NoError(err)
	rp, err := s.Store.GetRegisteredPlayer(s.Ctx, owner.ID)
	s.Require().NoError(err)
	s.Equal("hash-"+string(owner.ID), rp.PasswordHash)
}

func (s *Suite) TestGetRegisteredPlayerNotFound() {
	_, err := s.Store.GetRegisteredPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Catalogue tests

func (s *Suite) TestSaveAndGetInfinityLevel() {
	level := &model.InfinityLevel{Difficulty: model.DifficultyMedium, Puzzles: []model.PuzzleID{"m3", "m1", "m2"}}
	s.Require().NoError(s.Store.SaveInfinityLevel(s.Ctx, level))

	retrieved, err := s.Store.GetInfinityLevel(s.Ctx, model.DifficultyMedium)
	s.Require().NoError(err)
	s.Equal([]model.PuzzleID{"m3", "m1", "m2"}, retrieved.Puzzles)
}

func (s *Suite) TestSaveInfinityLevelReplacesPuzzles() {
	s.Require().NoError(s.Store.SaveInfinityLevel(s.Ctx, &model.InfinityLevel{Difficulty: model.DifficultyEasy, Puzzles: []model.PuzzleID{"a", "b", "c"}}))
	s.Require().NoError(s.Store.SaveInfinityLevel(s.Ctx, &model.InfinityLevel{Difficulty: model.DifficultyEasy, Puzzles: []model.PuzzleID{"x"}}))

	retrieved, err := s.Store.GetInfinityLevel(s.Ctx, model.DifficultyEasy)
	s.Require().NoError(err)
	s.Equal([]model.PuzzleID{"x"}, retrieved.Puzzles)
}

func (s *Suite) TestGetInfinityLevelEmptyLadder() {
	s.Require().NoError(s.Store.SaveInfinityLevel(s.Ctx, &model.InfinityLevel{Difficulty: model.DifficultyInsane}))

	retrieved, err := s.Store.GetInfinityLevel(s.Ctx, model.DifficultyInsane)
	s.Require().NoError(err)
	s.Empty(retrieved.Puzzles)
}

func (s *Suite) TestGetInfinityLevelNotFound() {
	_, err := s.Store.GetInfinityLevel(s.Ctx, model.DifficultyHard)
	s.ErrorIs(err, model.ErrInfinityLevelNotFound)
}

func (s *Suite) TestListSpeedrunLevelsInCatalogueOrder() {
	s.Require().NoError(s.Store.SaveSpeedrunLevel(s.Ctx, &model.SpeedrunLevel{ID: "quick", Name: "Quick", Position: 2}))
	s.Require().NoError(s.Store.SaveSpeedrunLevel(s.Ctx, &model.SpeedrunLevel{ID: "fast", Name: "Fast", Position: 1}))
	s.Require().NoError(s.Store.SaveSpeedrunLevel(s.Ctx, &model.SpeedrunLevel{ID: "endurance", Name: "Endurance", Position: 3}))

	levels, err := s.Store.ListSpeedrunLevels(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(levels, 3)
	s.Equal(model.SpeedrunLevelID("fast"), levels[0].ID)
	s.Equal(model.SpeedrunLevelID("quick"), levels[1].ID)
	s.Equal("Endurance", levels[2].Name)
}

func (s *Suite) TestListSpeedrunLevelsEmpty() {
	levels, err := s.Store.ListSpeedrunLevels(s.Ctx)
	s.Require().NoError(err)
	s.Empty(levels)
}

func (s *Suite) TestGetSpeedrunLevel() {
	s.Require().NoError(s.Store.SaveSpeedrunLevel(s.Ctx, &model.SpeedrunLevel{ID: "fast", Name: "Fast", Position: 1}))

	level, err := s.Store.GetSpeedrunLevel(s.Ctx, "fast")
	s.Require().NoError(err)
	s.Equal("Fast", level.Name)

	_, err = s.Store.GetSpeedrunLevel(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSpeedrunLevelNotFound)
}

func (s *Suite) TestRepetitionLevelLookups() {
	s.Require().NoError(s.Store.SaveRepetitionLevel(s.Ctx, &model.RepetitionLevel{ID: "rep-1", Number: 1, Name: "One"}))
	s.Require().NoError(s.Store.SaveRepetitionLevel(s.Ctx, &model.RepetitionLevel{ID: "rep-2", Number: 2, Name: "Two"}))

	byID, err := s.Store.GetRepetitionLevel(s.Ctx, "rep-2")
	s.Require().NoError(err)
	s.Equal(2, byID.Number)

	byNumber, err := s.Store.GetRepetitionLevelByNumber(s.Ctx, 1)
	s.Require().NoError(err)
	s.Equal(model.RepetitionLevelID("rep-1"), byNumber.ID)

	_, err = s.Store.GetRepetitionLevel(s.Ctx, "rep-9")
	s.ErrorIs(err, model.ErrRepetitionLevelNotFound)
	_, err = s.Store.GetRepetitionLevelByNumber(s.Ctx, 3)
	s.ErrorIs(err, model.ErrRepetitionLevelNotFound)
}

// Solve log tests

func (s *Suite) appendSolve(player model.PlayerID, puzzle model.PuzzleID, d model.Difficulty) *model.SolvedInfinityPuzzle {
	solve := &model.SolvedInfinityPuzzle{PlayerID: player, PuzzleID: puzzle, Difficulty: d, SolvedAt: baseTime}
	s.Require().NoError(s.Store.AppendSolvedPuzzle(s.Ctx, solve))
	return solve
}

func (s *Suite) TestAppendSolvedPuzzleAssignsIncreasingSeq() {
	first := s.appendSolve("p1", "e1", model.DifficultyEasy)
	second := s.appendSolve("p1", "e2", model.DifficultyEasy)
	s.Positive(first.Seq)
	s.Greater(second.Seq, first.Seq)
}

func (s *Suite) TestLastSolvedPuzzleNoHistory() {
	_, ok, err := s.Store.LastSolvedPuzzle(s.Ctx, "p1", nil)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *Suite) TestLastSolvedPuzzleOverallAndPerDifficulty() {
	s.appendSolve("p1", "e1", model.DifficultyEasy)
	s.appendSolve("p1", "m1", model.DifficultyMedium)
	s.appendSolve("p1", "e2", model.DifficultyEasy)
	s.appendSolve("p2", "h1", model.DifficultyHard)

	last, ok, err := s.Store.LastSolvedPuzzle(s.Ctx, "p1", nil)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(model.PuzzleID("e2"), last.PuzzleID)
	s.Equal(model.DifficultyEasy, last.Difficulty)

	lastMedium, ok, err := s.Store.LastSolvedPuzzle(s.Ctx, "p1", difficulty(model.DifficultyMedium))
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(model.PuzzleID("m1"), lastMedium.PuzzleID)

	_, ok, err = s.Store.LastSolvedPuzzle(s.Ctx, "p1", difficulty(model.DifficultyHard))
	s.Require().NoError(err)
	s.False(ok)
}

func (s *Suite) TestCountSolvedPuzzles() {
	s.appendSolve("p1", "e1", model.DifficultyEasy)
	s.appendSolve("p1", "e1", model.DifficultyEasy)
	s.appendSolve("p1", "m1", model.DifficultyMedium)
	s.appendSolve("p2", "e1", model.DifficultyEasy)

	total, err := s.Store.CountSolvedPuzzles(s.Ctx, "p1", nil)
	s.Require().NoError(err)
	s.Equal(3, total)

	easy, err := s.Store.CountSolvedPuzzles(s.Ctx, "p1", difficulty(model.DifficultyEasy))
	s.Require().NoError(err)
	s.Equal(2, easy)

	hard, err := s.Store.CountSolvedPuzzles(s.Ctx, "p1", difficulty(model.DifficultyHard))
	s.Require().NoError(err)
	s.Equal(0, hard)
}

// Speedrun log tests

func (s *Suite) appendSpeedrun(player model.PlayerID, level model.SpeedrunLevelID, d time.Duration) {
	run := &model.CompletedSpeedrun{PlayerID: player, LevelID: level, Duration: d, CompletedAt: baseTime}
	s.Require().NoError(s.Store.AppendCompletedSpeedrun(s.Ctx, run))
	s.Positive(run.Seq)
}

func (s *Suite) TestCountCompletedSpeedruns() {
	s.appendSpeedrun("p1", "fast", 12*time.Second)
	s.appendSpeedrun("p1", "fast", 10*time.Second)
	s.appendSpeedrun("p2", "fast", 9*time.Second)

	count, err := s.Store.CountCompletedSpeedruns(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(2, count)

	count, err = s.Store.CountCompletedSpeedruns(s.Ctx, "p3")
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *Suite) TestFastestSpeedrun() {
	s.appendSpeedrun("p1", "fast", 12300*time.Millisecond)
	s.appendSpeedrun("p1", "fast", 9800*time.Millisecond)
	s.appendSpeedrun("p1", "fast", 15*time.Second)
	s.appendSpeedrun("p1", "slow", 5*time.Second)
	s.appendSpeedrun("p2", "fast", time.Second)

	fastest, ok, err := s.Store.FastestSpeedrun(s.Ctx, "p1", speedrunLevel("fast"))
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(9800*time.Millisecond, fastest)

	overall, ok, err := s.Store.FastestSpeedrun(s.Ctx, "p1", nil)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(5*time.Second, overall)

	_, ok, err = s.Store.FastestSpeedrun(s.Ctx, "p1", speedrunLevel("other"))
	s.Require().NoError(err)
	s.False(ok)

	_, ok, err = s.Store.FastestSpeedrun(s.Ctx, "p3", nil)
	s.Require().NoError(err)
	s.False(ok)
}

// Repetition log tests

var repetitionLevelIDs = []model.RepetitionLevelID{"a-level", "b-level", "c-level", "d-level"}

func (s *Suite) seedRepetitionLevels(n int) {
	for i, id := range repetitionLevelIDs[:n] {
		level := &model.RepetitionLevel{ID: id, Number: i + 1}
		s.Require().NoError(s.Store.SaveRepetitionLevel(s.Ctx, level))
	}
}

func (s *Suite) TestHighestCompletedRepetitionNumberDefaultsToZero() {
	s.seedRepetitionLevels(3)

	highest, err := s.Store.HighestCompletedRepetitionNumber(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(0, highest)
}

func (s *Suite) TestHighestCompletedRepetitionNumberJoinsLevelNumber() {
	s.seedRepetitionLevels(4)
	for _, id := range []model.RepetitionLevelID{"a-level", "c-level", "b-level", "a-level"} {
		s.Require().NoError(s.Store.AppendCompletedRepetitionLevel(s.Ctx, &model.CompletedRepetitionLevel{
			PlayerID: "p1", LevelID: id, CompletedAt: baseTime,
		}))
	}
	s.Require().NoError(s.Store.AppendCompletedRepetitionLevel(s.Ctx, &model.CompletedRepetitionLevel{
		PlayerID: "p2", LevelID: "d-level", CompletedAt: baseTime,
	}))

	highest, err := s.Store.HighestCompletedRepetitionNumber(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(3, highest)
}

func (s *Suite) TestRecentRepetitionRoundsNewestFirstAndLimited() {
	s.seedRepetitionLevels(2)
	for i := 1; i <= 15; i++ {
		round := &model.CompletedRepetitionRound{
			PlayerID:    "p1",
			LevelID:     "a-level",
			Duration:    time.Duration(i) * time.Second,
			CompletedAt: baseTime,
		}
		s.Require().NoError(s.Store.AppendRepetitionRound(s.Ctx, round))
	}
	s.Require().NoError(s.Store.AppendRepetitionRound(s.Ctx, &model.CompletedRepetitionRound{
		PlayerID: "p1", LevelID: "b-level", Duration: time.Minute, CompletedAt: baseTime,
	}))

	rounds, err := s.Store.RecentRepetitionRounds(s.Ctx, "p1", "a-level", 10)
	s.Require().NoError(err)
	s.Require().Len(rounds, 10)
	for i, round := range rounds {
		s.Equal(time.Duration(15-i)*time.Second, round.Duration)
		s.Equal(model.RepetitionLevelID("a-level"), round.LevelID)
	}
	s.Greater(rounds[0].Seq, rounds[9].Seq)
}

func (s *Suite) TestRecentRepetitionRoundsEmpty() {
	rounds, err := s.Store.RecentRepetitionRounds(s.Ctx, "p1", "a-level", 10)
	s.Require().NoError(err)
	s.NotNil(rounds)
	s.Empty(rounds)
}
