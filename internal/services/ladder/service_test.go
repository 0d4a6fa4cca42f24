package ladder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage/memory"
	"github.com/mcoot/tactics-progress/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	testutil.SeedCatalogue(s.T(), s.storage)
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func puzzle(id model.PuzzleID) *model.PuzzleID { return &id }

func (s *ServiceSuite) TestLevelReturnsLadder() {
	level, err := s.service.Level(s.ctx, model.DifficultyEasy)
	s.Require().NoError(err)
	s.Equal(testutil.EasyPuzzles, level.Puzzles)
}

func (s *ServiceSuite) TestLevelMissingFromCatalogue() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())

	_, err := s.service.Level(s.ctx, model.DifficultyEasy)
	s.ErrorIs(err, model.ErrInfinityLevelNotFound)
}

func (s *ServiceSuite) TestLevelRejectsUnknownDifficulty() {
	_, err := s.service.Level(s.ctx, model.Difficulty("nightmare"))
	s.ErrorIs(err, model.ErrInvalidDifficulty)
}

func (s *ServiceSuite) TestPuzzlesAfterNilIsWholeLadder() {
	puzzles, err := s.service.PuzzlesAfter(s.ctx, model.DifficultyEasy, nil)
	s.Require().NoError(err)
	s.Equal([]model.PuzzleID{"e1", "e2", "e3"}, puzzles)
}

func (s *ServiceSuite) TestPuzzlesAfterIsStrict() {
	puzzles, err := s.service.PuzzlesAfter(s.ctx, model.DifficultyEasy, puzzle("e1"))
	s.Require().NoError(err)
	s.Equal([]model.PuzzleID{"e2", "e3"}, puzzles)
}

func (s *ServiceSuite) TestPuzzlesAfterTerminalIsEmpty() {
	puzzles, err := s.service.PuzzlesAfter(s.ctx, model.DifficultyEasy, puzzle("e3"))
	s.Require().NoError(err)
	s.Empty(puzzles)
}

func (s *ServiceSuite) TestPuzzlesAfterUnknownPuzzleIsWholeLadder() {
	puzzles, err := s.service.PuzzlesAfter(s.ctx, model.DifficultyMedium, puzzle("e2"))
	s.Require().NoError(err)
	s.Equal(testutil.MediumPuzzles, puzzles)
}

func (s *ServiceSuite) TestPuzzlesAfterOnEmptyLadder() {
	puzzles, err := s.service.PuzzlesAfter(s.ctx, model.DifficultyInsane, nil)
	s.Require().NoError(err)
	s.Empty(puzzles)
}

func (s *ServiceSuite) TestLastPuzzle() {
	last, err := s.service.LastPuzzle(s.ctx, model.DifficultyMedium)
	s.Require().NoError(err)
	s.Equal(model.PuzzleID("m2"), last)
}

func (s *ServiceSuite) TestLastPuzzleEmptyLadder() {
	_, err := s.service.LastPuzzle(s.ctx, model.DifficultyInsane)
	s.ErrorIs(err, model.ErrEmptyLadder)
}

func (s *ServiceSuite) TestContains() {
	ok, err := s.service.Contains(s.ctx, model.DifficultyHard, "h1")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.Contains(s.ctx, model.DifficultyHard, "e1")
	s.Require().NoError(err)
	s.False(ok)
}
