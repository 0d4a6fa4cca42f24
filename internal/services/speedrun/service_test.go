package speedrun

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tactics-progress/internal/dependencies/mocks"
	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/reqcache"
	"github.com/mcoot/tactics-progress/internal/storage/memory"
	"github.com/mcoot/tactics-progress/internal/testutil"
)

const (
	alice model.PlayerID = "player-alice"
	bob   model.PlayerID = "player-bob"
)

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
	testutil.CreatePlayer(s.T(), s.storage, bob, "bob")

	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) record(ctx context.Context, player model.PlayerID, level model.SpeedrunLevelID, d time.Duration) {
	_, err := s.service.RecordCompletion(ctx, player, level, d)
	s.Require().NoError(err)
}

// Personal bests

func (s *ServiceSuite) TestPersonalBestIsMinimum() {
	for _, d := range []time.Duration{12300 * time.Millisecond, 9800 * time.Millisecond, 15 * time.Second} {
		s.record(s.ctx, alice, "sr-fast", d)
	}

	best, err := s.service.PersonalBest(s.ctx, alice, "sr-fast")
	s.Require().NoError(err)
	s.True(best.Recorded)
	s.Equal(9800*time.Millisecond, best.Duration)
	s.Equal("9.8s", best.String())
}

func (s *ServiceSuite) TestPersonalBestAbsentIsNotZero() {
	s.record(s.ctx, alice, "sr-fast", 10*time.Second)

	best, err := s.service.PersonalBest(s.ctx, alice, "sr-quick")
	s.Require().NoError(err)
	s.False(best.Recorded)
	s.Equal(model.NoTimeMarker, best.String())
}

func (s *ServiceSuite) TestPersonalBestIgnoresOtherPlayers() {
	s.record(s.ctx, bob, "sr-fast", 5*time.Second)
	s.record(s.ctx, alice, "sr-fast", 8*time.Second)

	best, err := s.service.PersonalBest(s.ctx, alice, "sr-fast")
	s.Require().NoError(err)
	s.Equal(8*time.Second, best.Duration)
}

func (s *ServiceSuite) TestBestOverall() {
	best, err := s.service.BestOverall(s.ctx, alice)
	s.Require().NoError(err)
	s.False(best.Recorded)

	s.record(s.ctx, alice, "sr-fast", 20*time.Second)
	s.record(s.ctx, alice, "sr-endurance", 65300*time.Millisecond)
	s.record(s.ctx, alice, "sr-quick", 11*time.Second)

	best, err = s.service.BestOverall(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal("11.0s", best.String())
}

func (s *ServiceSuite) TestStatsTableCoversCatalogueInOrder() {
	s.record(s.ctx, alice, "sr-endurance", 65300*time.Millisecond)
	s.record(s.ctx, alice, "sr-fast", 9800*time.Millisecond)

	stats, err := s.service.StatsTable(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(stats, 3)

	s.Equal("Fast", stats[0].LevelName)
	s.Equal("9.8s", stats[0].PersonalBest.String())
	s.Equal("Quick", stats[1].LevelName)
	s.Equal(model.NoTimeMarker, stats[1].PersonalBest.String())
	s.Equal("Endurance", stats[2].LevelName)
	s.Equal("1:05.3", stats[2].PersonalBest.String())
}

// Completed count

func (s *ServiceSuite) TestCompletedCount() {
	s.record(s.ctx, alice, "sr-fast", 10*time.Second)
	s.record(s.ctx, alice, "sr-fast", 9*time.Second)
	s.record(s.ctx, bob, "sr-fast", 9*time.Second)

	count, err := s.service.CompletedCount(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *ServiceSuite) TestCompletedCountMemoisedWithinRequest() {
	ctx := reqcache.WithCache(s.ctx, reqcache.New())

	count, err := s.service.CompletedCount(ctx, alice)
	s.Require().NoError(err)
	s.Zero(count)

	// a write from another request is not seen by this one
	s.record(s.ctx, alice, "sr-fast", 10*time.Second)
	count, err = s.service.CompletedCount(ctx, alice)
	s.Require().NoError(err)
	s.Zero(count)

	// a fresh request sees it
	count, err = s.service.CompletedCount(reqcache.WithCache(s.ctx, reqcache.New()), alice)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ServiceSuite) TestRecordCompletionInvalidatesRequestCount() {
	ctx := reqcache.WithCache(s.ctx, reqcache.New())

	_, err := s.service.CompletedCount(ctx, alice)
	s.Require().NoError(err)

	s.record(ctx, alice, "sr-fast", 10*time.Second)
	count, err := s.service.CompletedCount(ctx, alice)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ServiceSuite) TestCountWithoutCacheIsAlwaysFresh() {
	s.record(s.ctx, alice, "sr-fast", 10*time.Second)
	count, _ := s.service.CompletedCount(s.ctx, alice)
	s.Equal(1, count)

	s.record(s.ctx, alice, "sr-fast", 10*time.Second)
	count, _ = s.service.CompletedCount(s.ctx, alice)
	s.Equal(2, count)
}

// RecordCompletion

func (s *ServiceSuite) TestRecordCompletionRejectsNonPositiveDuration() {
	for _, d := range []time.Duration{0, -time.Second} {
		_, err := s.service.RecordCompletion(s.ctx, alice, "sr-fast", d)
		s.ErrorIs(err, model.ErrInvalidDuration)
	}
}

func (s *ServiceSuite) TestRecordCompletionRejectsUnknownLevel() {
	_, err := s.service.RecordCompletion(s.ctx, alice, "sr-missing", time.Second)
	s.ErrorIs(err, model.ErrSpeedrunLevelNotFound)
}

func (s *ServiceSuite) TestRecordCompletionRejectsUnknownPlayer() {
	_, err := s.service.RecordCompletion(s.ctx, "nobody", "sr-fast", time.Second)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestSummary() {
	s.record(s.ctx, alice, "sr-quick", 30*time.Second)

	summary, err := s.service.Summary(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(1, summary.CompletedCount)
	s.Equal("30.0s", summary.BestOverall.String())
	s.Len(summary.Stats, 3)
}
