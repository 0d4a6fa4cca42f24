package cli_test

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tactics-progress/internal/api"
	"github.com/mcoot/tactics-progress/internal/cli"
	"github.com/mcoot/tactics-progress/internal/factory"
	"github.com/mcoot/tactics-progress/internal/testutil"
)

type cliEnv struct {
	server     *httptest.Server
	app        *factory.TestApp
	playerFile string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("TACTICS_PLAYER", "")
	t.Setenv("TACTICS_SERVER", "")

	app := factory.NewTestApp(t)
	server := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:            testutil.NopLogger(),
		AccountService:    app.AccountService,
		InfinityService:   app.InfinityService,
		SpeedrunService:   app.SpeedrunService,
		RepetitionService: app.RepetitionService,
	}))
	t.Cleanup(server.Close)

	return &cliEnv{
		server:     server,
		app:        app,
		playerFile: filepath.Join(t.TempDir(), "player"),
	}
}

// run executes the CLI in-process and returns stdout
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--server", e.server.URL, "--player-file", e.playerFile}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err)
	return out
}

// withPlayer creates the fixed player used by golden tests
func (e *cliEnv) withPlayer(t *testing.T) {
	t.Helper()
	testutil.CreatePlayer(t, e.app.Storage, "player-1", "alice")
}

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

func TestGoldenOutput(t *testing.T) {
	t.Run("player_show", func(t *testing.T) {
		env := newCLIEnv(t)
		env.withPlayer(t)

		assertGolden(t, "player_show", env.mustRun(t, "player", "show", "player-1"))
	})

	t.Run("infinity_status", func(t *testing.T) {
		env := newCLIEnv(t)
		env.withPlayer(t)

		env.mustRun(t, "--player", "player-1", "infinity", "solve", "e1", "--difficulty", "easy")
		env.mustRun(t, "--player", "player-1", "infinity", "solve", "e2", "--difficulty", "easy")
		env.mustRun(t, "--player", "player-1", "infinity", "solve", "m1", "--difficulty", "medium")

		assertGolden(t, "infinity_status", env.mustRun(t, "--player", "player-1", "infinity", "status"))
	})

	t.Run("infinity_status_json", func(t *testing.T) {
		env := newCLIEnv(t)
		env.withPlayer(t)

		assertGolden(t, "infinity_status_json", env.mustRun(t, "--player", "player-1", "-o", "json", "infinity", "status"))
	})

	t.Run("speedrun_stats", func(t *testing.T) {
		env := newCLIEnv(t)
		env.withPlayer(t)

		env.mustRun(t, "--player", "player-1", "speedrun", "record", "sr-quick", "--time", "12.3s")
		env.mustRun(t, "--player", "player-1", "speedrun", "record", "sr-quick", "--time", "9.8s")
		env.mustRun(t, "--player", "player-1", "speedrun", "record", "sr-endurance", "--time", "1m5.3s")

		assertGolden(t, "speedrun_stats", env.mustRun(t, "--player", "player-1", "speedrun", "stats"))
	})

	t.Run("repetition_status", func(t *testing.T) {
		env := newCLIEnv(t)
		env.withPlayer(t)

		env.mustRun(t, "--player", "player-1", "repetition", "complete", "rep-1")

		assertGolden(t, "repetition_status", env.mustRun(t, "--player", "player-1", "repetition", "status"))
	})

	t.Run("repetition_rounds", func(t *testing.T) {
		env := newCLIEnv(t)
		env.withPlayer(t)

		env.mustRun(t, "--player", "player-1", "repetition", "round", "rep-1", "--time", "8s")
		env.mustRun(t, "--player", "player-1", "repetition", "round", "rep-1", "--time", "7.5s")

		assertGolden(t, "repetition_rounds", env.mustRun(t, "--player", "player-1", "repetition", "rounds", "rep-1"))
	})
}

func TestRegisterRemembersPlayer(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "player", "register", "--user", "bob_99", "--pass", "secret123")
	assert.Contains(t, out, "Player: bob_99 (")

	saved, err := os.ReadFile(env.playerFile)
	require.NoError(t, err)
	assert.NotEmpty(t, saved)

	out = env.mustRun(t, "player", "show")
	assert.Contains(t, out, string(saved))

	out = env.mustRun(t, "infinity", "status")
	assert.Contains(t, out, "Next puzzle: e1")
}

func TestLoginSwitchesPlayer(t *testing.T) {
	env := newCLIEnv(t)

	env.mustRun(t, "player", "register", "--user", "bob_99", "--pass", "secret123")
	first, err := os.ReadFile(env.playerFile)
	require.NoError(t, err)

	env.mustRun(t, "player", "register", "--user", "carol", "--pass", "secret123")
	env.mustRun(t, "player", "login", "--user", "BOB_99", "--pass", "secret123")

	saved, err := os.ReadFile(env.playerFile)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(saved))
}

func TestCommandErrors(t *testing.T) {
	env := newCLIEnv(t)
	env.withPlayer(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no player selected",
			args:    []string{"speedrun", "stats"},
			wantErr: "no player selected",
		},
		{
			name:    "validation failure",
			args:    []string{"player", "register", "--user", "9lives", "--pass", "abc"},
			wantErr: "VALIDATION_FAILED",
		},
		{
			name:    "bad credentials",
			args:    []string{"player", "login", "--user", "alice", "--pass", "whatever"},
			wantErr: "Invalid username or password (INVALID_CREDENTIALS)",
		},
		{
			name:    "unknown level",
			args:    []string{"--player", "player-1", "speedrun", "record", "sr-nope", "--time", "5s"},
			wantErr: "LEVEL_NOT_FOUND",
		},
		{
			name:    "bad difficulty",
			args:    []string{"--player", "player-1", "infinity", "solve", "e1", "--difficulty", "brutal"},
			wantErr: "INVALID_DIFFICULTY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidationMessagesAreListed(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "player", "register", "--user", "ab", "--pass", "abc")
	require.Error(t, err)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "Validation failed (VALIDATION_FAILED): "), msg)
	assert.Contains(t, msg, "password is too short (minimum is 6 characters)")
	assert.Contains(t, msg, "username must be at least 3 letters, numbers, or underscores")
}

func TestHealth(t *testing.T) {
	env := newCLIEnv(t)

	assert.Equal(t, "Status: ok\n", env.mustRun(t, "health"))
	assert.JSONEq(t, `{"status":"ok"}`, env.mustRun(t, "health", "--output", "json"))
}
