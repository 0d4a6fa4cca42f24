// Package account is the directory of registered players and their credentials.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tactics-progress/internal/dependencies/clock"
	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FieldPassword is the validation key for password errors
const FieldPassword = "password"

// Password length bounds; bcrypt ignores input beyond 72 bytes
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// Service handles registration and credential checks
type Service struct {
	storage    storage.Storage
	clock      clock.Clock
	logger     *slog.Logger
	bcryptCost int
}

// Config holds configuration for the account service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default account configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new account Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register validates and creates a player with the default profile.
// Validation failures are returned together as a *model.ValidationError
// and nothing is persisted.
func (s *Service) Register(ctx context.Context, username, password string) (*model.Player, error) {
	verr := model.ValidateUsername(username)
	if verr == nil {
		verr = &model.ValidationError{}
	}

	_, err := s.storage.GetPlayerByUsername(ctx, username)
	switch {
	case err == nil:
		verr.Add(model.FieldUsername, "is already registered")
	case !errors.Is(err, model.ErrPlayerNotFound):
		return nil, err
	}

	if len(password) < MinPasswordLength {
		verr.Add(FieldPassword, fmt.Sprintf("is too short (minimum is %d characters)", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		verr.Add(FieldPassword, fmt.Sprintf("is too long (maximum is %d characters)", MaxPasswordLength))
	}
	if verr.HasErrors() {
		return nil, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	player := model.NewPlayer(model.NewPlayerID(), username, now)
	registered := &model.RegisteredPlayer{
		PlayerID:     player.ID,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// A concurrent registration may claim the name after the lookup above
	if err := s.storage.CreatePlayer(ctx, player, registered); err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			verr.Add(model.FieldUsername, "is already registered")
			return nil, verr
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "player registered", "player_id", player.ID, "username", player.Username)
	return player, nil
}

// FindByUsername looks a player up by username, ignoring case
func (s *Service) FindByUsername(ctx context.Context, username string) (*model.Player, error) {
	return s.storage.GetPlayerByUsername(ctx, username)
}

// Authenticate returns the player if the password matches.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.Player, error) {
	player, err := s.storage.GetPlayerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	rp, err := s.storage.GetRegisteredPlayer(ctx, player.ID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rp.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "failed login", "player_id", player.ID)
		return nil, ErrInvalidCredentials
	}
	return player, nil
}

// GetPlayer returns a player by ID
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}
