package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/reqcache"
	redisstorage "github.com/mcoot/tactics-progress/internal/storage/redis"
	"github.com/mcoot/tactics-progress/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(s.T())
	s.ctx = context.Background()
}

// Test: a player registers and makes progress in every mode
func (s *IntegrationSuite) TestProgressAcrossModes() {
	player, err := s.app.AccountService.Register(s.ctx, "Alice_01", "password123")
	s.Require().NoError(err)

	// Infinity: work through easy into medium
	for _, p := range []model.PuzzleID{"e1", "e2"} {
		_, err := s.app.InfinityService.RecordSolve(s.ctx, player.ID, p, model.DifficultyEasy)
		s.Require().NoError(err)
		s.app.MockClock.Advance(time.Minute)
	}
	_, err = s.app.InfinityService.RecordSolve(s.ctx, player.ID, "m1", model.DifficultyMedium)
	s.Require().NoError(err)

	status, err := s.app.InfinityService.Status(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal(model.DifficultyMedium, status.LatestDifficulty)
	s.Equal(model.PuzzleID("m2"), status.NextPuzzle)
	s.Equal(3, status.SolvedCount)

	// Speedruns within one request scope
	reqCtx := reqcache.WithCache(s.ctx, reqcache.New())
	_, err = s.app.SpeedrunService.RecordCompletion(reqCtx, player.ID, "sr-fast", 9800*time.Millisecond)
	s.Require().NoError(err)
	summary, err := s.app.SpeedrunService.Summary(reqCtx, player.ID)
	s.Require().NoError(err)
	s.Equal(1, summary.CompletedCount)
	s.Equal("9.8s", summary.BestOverall.String())

	// Repetition
	_, err = s.app.RepetitionService.RecordLevelCompletion(s.ctx, player.ID, "rep-1")
	s.Require().NoError(err)
	rep, err := s.app.RepetitionService.Status(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal(1, rep.HighestCompleted)
	s.Equal(model.RepetitionLevelID("rep-2"), rep.HighestUnlocked.ID)

	// Credentials still work after all that
	authed, err := s.app.AccountService.Authenticate(s.ctx, "alice_01", "password123")
	s.Require().NoError(err)
	s.Equal(player.ID, authed.ID)
}

// Test: players do not see each other's progress
func (s *IntegrationSuite) TestPlayersAreIsolated() {
	testutil.CreatePlayer(s.T(), s.app.Storage, "p1", "alice")
	testutil.CreatePlayer(s.T(), s.app.Storage, "p2", "bob")

	_, err := s.app.InfinityService.RecordSolve(s.ctx, "p1", "h1", model.DifficultyHard)
	s.Require().NoError(err)

	d, err := s.app.InfinityService.LatestDifficulty(s.ctx, "p2")
	s.Require().NoError(err)
	s.Equal(model.DifficultyEasy, d)
}

// Factory construction

func TestNewDefaultsToMemoryWithBundledCatalogue(t *testing.T) {
	app, err := New(context.Background(), Config{})
	require.NoError(t, err)
	defer app.Close()

	next, err := app.InfinityService.NextPuzzle(context.Background(), "nobody-yet")
	require.NoError(t, err)
	require.NotEmpty(t, next)
}

func TestNewWithSQLite(t *testing.T) {
	app, err := New(context.Background(), Config{
		StorageType: StorageTypeSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "tactics.db"),
	})
	require.NoError(t, err)
	defer app.Close()

	levels, err := app.Storage.ListSpeedrunLevels(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, levels)
}

func TestNewWithRedis(t *testing.T) {
	mini := miniredis.RunT(t)
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mini.Addr()

	app, err := New(context.Background(), Config{
		StorageType: StorageTypeRedis,
		RedisConfig: &cfg,
	})
	require.NoError(t, err)
	defer app.Close()

	level, err := app.Storage.GetRepetitionLevelByNumber(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, level.Name)
}

func TestNewWithCataloguePath(t *testing.T) {
	app, err := New(context.Background(), Config{
		CataloguePath: filepath.Join("..", "catalogue", "testdata", "small.yaml"),
	})
	require.NoError(t, err)

	easy, err := app.Storage.GetInfinityLevel(context.Background(), model.DifficultyEasy)
	require.NoError(t, err)
	require.Equal(t, []model.PuzzleID{"e1", "e2", "e3"}, easy.Puzzles)
}

func TestNewRejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	for _, cfg := range []Config{
		{StorageType: "cassandra"},
		{StorageType: StorageTypeRedis},
		{StorageType: StorageTypeSQLite},
		{StorageType: StorageTypePostgres},
		{CataloguePath: "does-not-exist.yaml"},
	} {
		_, err := New(ctx, cfg)
		require.Error(t, err, "config %+v", cfg)
	}
}
