package infinity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tactics-progress/internal/dependencies/mocks"
	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/services/ladder"
	"github.com/mcoot/tactics-progress/internal/storage/memory"
	"github.com/mcoot/tactics-progress/internal/testutil"
)

const alice model.PlayerID = "player-alice"

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	testutil.SeedCatalogue(s.T(), s.storage)
	testutil.CreatePlayer(s.T(), s.storage, alice, "alice")

	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.service = New(s.storage, ladder.New(s.storage, logger), s.clock, logger)
	s.ctx = context.Background()
}

func (s *ServiceSuite) solve(puzzle model.PuzzleID, d model.Difficulty) {
	_, err := s.service.RecordSolve(s.ctx, alice, puzzle, d)
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
}

// Next puzzle selection

func (s *ServiceSuite) TestNewPlayerStartsOnEasy() {
	d, err := s.service.LatestDifficulty(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(model.DifficultyEasy, d)

	next, err := s.service.NextPuzzle(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(model.PuzzleID("e1"), next)
}

func (s *ServiceSuite) TestNewPlayerWithEmptyEasyLadder() {
	s.Require().NoError(s.storage.SaveInfinityLevel(s.ctx, &model.InfinityLevel{Difficulty: model.DifficultyEasy}))

	_, err := s.service.NextPuzzle(s.ctx, alice)
	s.ErrorIs(err, model.ErrEmptyLadder)
}

func (s *ServiceSuite) TestNextPuzzleFollowsLastSolve() {
	s.solve("e1", model.DifficultyEasy)

	next, err := s.service.NextPuzzle(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(model.PuzzleID("e2"), next)
}

func (s *ServiceSuite) TestNextPuzzleRepeatsTerminalWhenExhausted() {
	for _, p := range testutil.EasyPuzzles {
		s.solve(p, model.DifficultyEasy)
	}

	for i := 0; i < 2; i++ {
		next, err := s.service.NextPuzzle(s.ctx, alice)
		s.Require().NoError(err)
		s.Equal(model.PuzzleID("e3"), next)
		s.solve(next, model.DifficultyEasy)
	}

	d, err := s.service.LatestDifficulty(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(model.DifficultyEasy, d, "exhausting a ladder does not advance difficulty")
}

func (s *ServiceSuite) TestNextPuzzleUsesLatestDifficulty() {
	s.solve("e1", model.DifficultyEasy)
	s.solve("m1", model.DifficultyMedium)

	next, err := s.service.NextPuzzle(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(model.PuzzleID("m2"), next)
}

func (s *ServiceSuite) TestReturningToDifficultyResumesWhereLeft() {
	s.solve("e1", model.DifficultyEasy)
	s.solve("e2", model.DifficultyEasy)
	s.solve("m1", model.DifficultyMedium)
	s.solve("e1", model.DifficultyEasy)

	last, err := s.service.LastSolvedPuzzleID(s.ctx, alice, model.DifficultyEasy)
	s.Require().NoError(err)
	s.Require().NotNil(last)
	s.Equal(model.PuzzleID("e1"), *last)

	next, err := s.service.NextPuzzle(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(model.PuzzleID("e2"), next)
}

func (s *ServiceSuite) TestLastSolvedPuzzleIDAbsent() {
	s.solve("e1", model.DifficultyEasy)

	last, err := s.service.LastSolvedPuzzleID(s.ctx, alice, model.DifficultyHard)
	s.Require().NoError(err)
	s.Nil(last)
}

func (s *ServiceSuite) TestNextPuzzleForEveryPosition() {
	for k, p := range testutil.MediumPuzzles {
		s.solve(p, model.DifficultyMedium)

		next, err := s.service.NextPuzzle(s.ctx, alice)
		s.Require().NoError(err)
		if k+1 < len(testutil.MediumPuzzles) {
			s.Equal(testutil.MediumPuzzles[k+1], next)
		} else {
			s.Equal(testutil.MediumPuzzles[k], next)
		}
	}
}

// Counts

func (s *ServiceSuite) TestBreakdownSumsToSolvedCount() {
	s.solve("e1", model.DifficultyEasy)
	s.solve("e2", model.DifficultyEasy)
	s.solve("m1", model.DifficultyMedium)
	s.solve("h1", model.DifficultyHard)
	s.solve("h1", model.DifficultyHard)

	count, err := s.service.SolvedCount(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(5, count)

	breakdown, err := s.service.SolvedBreakdown(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal([]model.DifficultyCount{
		{Difficulty: model.DifficultyEasy, Count: 2},
		{Difficulty: model.DifficultyMedium, Count: 1},
		{Difficulty: model.DifficultyHard, Count: 2},
		{Difficulty: model.DifficultyInsane, Count: 0},
	}, breakdown)

	sum := 0
	for _, c := range breakdown {
		sum += c.Count
	}
	s.Equal(count, sum)
}

func (s *ServiceSuite) TestBreakdownForNewPlayerListsEveryDifficulty() {
	breakdown, err := s.service.SolvedBreakdown(s.ctx, alice)
	s.Require().NoError(err)
	s.Len(breakdown, len(model.Difficulties()))
	for _, c := range breakdown {
		s.Zero(c.Count)
	}
}

func (s *ServiceSuite) TestStatus() {
	s.solve("e1", model.DifficultyEasy)
	s.solve("m1", model.DifficultyMedium)

	status, err := s.service.Status(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(model.DifficultyMedium, status.LatestDifficulty)
	s.Equal(model.PuzzleID("m2"), status.NextPuzzle)
	s.Equal(2, status.SolvedCount)
	s.Len(status.Breakdown, 4)
}

// RecordSolve

func (s *ServiceSuite) TestRecordSolveStampsClock() {
	solve, err := s.service.RecordSolve(s.ctx, alice, "e1", model.DifficultyEasy)
	s.Require().NoError(err)
	s.True(s.clock.Now().Equal(solve.SolvedAt))
	s.Positive(solve.Seq)
}

func (s *ServiceSuite) TestRecordSolveRejectsPuzzleFromOtherLadder() {
	_, err := s.service.RecordSolve(s.ctx, alice, "m1", model.DifficultyEasy)
	s.ErrorIs(err, model.ErrPuzzleNotInLevel)

	count, err := s.service.SolvedCount(s.ctx, alice)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ServiceSuite) TestRecordSolveRejectsUnknownDifficulty() {
	_, err := s.service.RecordSolve(s.ctx, alice, "e1", model.Difficulty("nightmare"))
	s.ErrorIs(err, model.ErrInvalidDifficulty)
}

func (s *ServiceSuite) TestRecordSolveUnknownPlayer() {
	_, err := s.service.RecordSolve(s.ctx, "nobody", "e1", model.DifficultyEasy)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
