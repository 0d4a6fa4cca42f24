package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	PlayerID   string
	PlayerFile string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  getEnvOrDefault("TACTICS_SERVER", "http://localhost:8080"),
		PlayerID:   os.Getenv("TACTICS_PLAYER"),
		PlayerFile: getEnvOrDefault("TACTICS_PLAYER_FILE", defaultPlayerFile()),
		Output:     "text",
		Verbose:    false,
	}
}

// LoadPlayer loads the player ID from file if not already set
func (c *Config) LoadPlayer() error {
	if c.PlayerID != "" {
		return nil
	}

	data, err := os.ReadFile(c.PlayerFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // No player file is fine
		}
		return err
	}

	c.PlayerID = strings.TrimSpace(string(data))
	return nil
}

// SavePlayer remembers the player ID for later commands
func (c *Config) SavePlayer(playerID string) error {
	c.PlayerID = playerID

	dir := filepath.Dir(c.PlayerFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.PlayerFile, []byte(playerID), 0600)
}

// RequirePlayer returns the current player ID or an error explaining how to set one
func (c *Config) RequirePlayer() (string, error) {
	if c.PlayerID == "" {
		return "", errors.New("no player selected: pass --player, set TACTICS_PLAYER or run 'tactics player login'")
	}
	return c.PlayerID, nil
}

func defaultPlayerFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tactics/player"
	}
	return filepath.Join(home, ".tactics", "player")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
