package repetition

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tactics-progress/internal/dependencies/mocks"
	"github.com/mcoot/tactics-progress/internal/model"
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
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) complete(level model.RepetitionLevelID) {
	_, err := s.service.RecordLevelCompletion(s.ctx, alice, level)
	s.Require().NoError(err)
}

// Unlocks

func (s *ServiceSuite) TestNoCompletions() {
	highest, err := s.service.HighestCompletedNumber(s.ctx, alice)
	s.Require().NoError(err)
	s.Zero(highest)

	unlocked, err := s.service.HighestUnlocked(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(1, unlocked.Number)
}

func (s *ServiceSuite) TestHighestCompletedIsMaxNumberNotLatest() {
	s.Require().NoError(s.storage.SaveRepetitionLevel(s.ctx, &model.RepetitionLevel{ID: "rep-4", Number: 4, Name: "Discoveries"}))

	s.complete("rep-1")
	s.complete("rep-3")
	s.complete("rep-2")

	highest, err := s.service.HighestCompletedNumber(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(3, highest)

	unlocked, err := s.service.HighestUnlocked(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(model.RepetitionLevelID("rep-4"), unlocked.ID)
}

func (s *ServiceSuite) TestHighestUnlockedNotFoundWhenAllCleared() {
	s.complete("rep-1")
	s.complete("rep-3")
	s.complete("rep-2")

	_, err := s.service.HighestUnlocked(s.ctx, alice)
	s.ErrorIs(err, model.ErrRepetitionLevelNotFound)
}

func (s *ServiceSuite) TestRepeatedCompletionsCountOnce() {
	s.complete("rep-1")
	s.complete("rep-1")

	highest, err := s.service.HighestCompletedNumber(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(1, highest)
}

func (s *ServiceSuite) TestStatus() {
	s.complete("rep-1")

	status, err := s.service.Status(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(1, status.HighestCompleted)
	s.Require().NotNil(status.HighestUnlocked)
	s.Equal(2, status.HighestUnlocked.Number)
	s.False(status.AllCleared)
	s.Equal(1, status.LegacyUnlockedCount)
}

func (s *ServiceSuite) TestStatusAllCleared() {
	for _, level := range testutil.RepetitionLevels {
		s.complete(level.ID)
	}

	status, err := s.service.Status(s.ctx, alice)
	s.Require().NoError(err)
	s.True(status.AllCleared)
	s.Nil(status.HighestUnlocked)
	s.Equal(3, status.HighestCompleted)
}

// Legacy unlocks

func (s *ServiceSuite) TestLegacyUnlockedCountDeduplicates() {
	player, err := s.storage.GetPlayer(s.ctx, alice)
	s.Require().NoError(err)
	player.Profile.LevelsUnlocked = []int{1, 2, 2, 5, 1}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	count, err := s.service.LegacyUnlockedCount(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *ServiceSuite) TestLegacyUnlockedCountUnknownPlayer() {
	_, err := s.service.LegacyUnlockedCount(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Rounds

func (s *ServiceSuite) TestRecentRoundTimesNewestFirstLimited() {
	for i := 1; i <= 15; i++ {
		_, err := s.service.RecordRound(s.ctx, alice, "rep-1", time.Duration(i)*time.Second)
		s.Require().NoError(err)
	}

	times, err := s.service.RecentRoundTimes(s.ctx, alice, "rep-1")
	s.Require().NoError(err)
	s.Equal([]string{
		"15.0s", "14.0s", "13.0s", "12.0s", "11.0s",
		"10.0s", "9.0s", "8.0s", "7.0s", "6.0s",
	}, times)
}

func (s *ServiceSuite) TestRecentRoundTimesOrderedByInsertionNotDuration() {
	for _, d := range []time.Duration{3 * time.Second, time.Second, 2 * time.Second} {
		_, err := s.service.RecordRound(s.ctx, alice, "rep-2", d)
		s.Require().NoError(err)
	}

	times, err := s.service.RecentRoundTimes(s.ctx, alice, "rep-2")
	s.Require().NoError(err)
	s.Equal([]string{"2.0s", "1.0s", "3.0s"}, times)
}

func (s *ServiceSuite) TestRecentRoundTimesEmpty() {
	times, err := s.service.RecentRoundTimes(s.ctx, alice, "rep-3")
	s.Require().NoError(err)
	s.NotNil(times)
	s.Empty(times)
}

func (s *ServiceSuite) TestRecentRoundTimesUnknownLevel() {
	_, err := s.service.RecentRoundTimes(s.ctx, alice, "rep-99")
	s.ErrorIs(err, model.ErrRepetitionLevelNotFound)
}

func (s *ServiceSuite) TestRecordRoundRejectsNonPositiveDuration() {
	_, err := s.service.RecordRound(s.ctx, alice, "rep-1", 0)
	s.ErrorIs(err, model.ErrInvalidDuration)
}

func (s *ServiceSuite) TestRecordLevelCompletionUnknownLevel() {
	_, err := s.service.RecordLevelCompletion(s.ctx, alice, "rep-99")
	s.ErrorIs(err, model.ErrRepetitionLevelNotFound)
}
