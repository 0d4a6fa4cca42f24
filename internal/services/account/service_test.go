package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tactics-progress/internal/dependencies/mocks"
	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage/memory"
	"github.com/mcoot/tactics-progress/internal/testutil"
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
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger(), Config{BcryptCost: bcrypt.MinCost})
	s.ctx = context.Background()
}

func (s *ServiceSuite) validationFields(err error) map[string][]string {
	var verr *model.ValidationError
	s.Require().True(errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	player, err := s.service.Register(s.ctx, "Alice_01", "password123")
	s.Require().NoError(err)

	s.NotEmpty(player.ID)
	s.Equal("Alice_01", player.Username)
	s.Equal([]int{1}, player.Profile.LevelsUnlocked)
	s.True(s.clock.Now().Equal(player.CreatedAt))
}

func (s *ServiceSuite) TestRegisterPersistsHashedPassword() {
	player, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	rp, err := s.storage.GetRegisteredPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.NotEmpty(rp.PasswordHash)
	s.NotEqual("password123", rp.PasswordHash) // Should be hashed
}

func (s *ServiceSuite) TestRegisterRejectsShortUsername() {
	_, err := s.service.Register(s.ctx, "ab", "password123")
	fields := s.validationFields(err)
	s.Equal([]string{"must be at least 3 letters, numbers, or underscores"}, fields[model.FieldUsername])
}

func (s *ServiceSuite) TestRegisterRejectsLeadingDigit() {
	_, err := s.service.Register(s.ctx, "9alice", "password123")
	fields := s.validationFields(err)
	s.Contains(fields[model.FieldUsername], "must start with a letter")
}

func (s *ServiceSuite) TestRegisterRejectsDuplicateIgnoringCase() {
	_, err := s.service.Register(s.ctx, "alice_01", "password123")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "ALICE_01", "password123")
	fields := s.validationFields(err)
	s.Equal([]string{"is already registered"}, fields[model.FieldUsername])
}

func (s *ServiceSuite) TestConcurrentRegisterAcceptsOneSpelling() {
	names := []string{"alice_01", "ALICE_01"}
	players := make([]*model.Player, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			players[i], errs[i] = s.service.Register(s.ctx, name, "password123")
		}()
	}
	wg.Wait()

	winner, loser := 0, 1
	if errs[0] != nil {
		winner, loser = 1, 0
	}
	s.Require().NoError(errs[winner])
	fields := s.validationFields(errs[loser])
	s.Equal([]string{"is already registered"}, fields[model.FieldUsername])

	found, err := s.service.FindByUsername(s.ctx, "Alice_01")
	s.Require().NoError(err)
	s.Equal(players[winner].ID, found.ID)

	authed, err := s.service.Authenticate(s.ctx, names[loser], "password123")
	s.Require().NoError(err)
	s.Equal(players[winner].ID, authed.ID)
}

func (s *ServiceSuite) TestRegisterAccumulatesAllErrors() {
	_, err := s.service.Register(s.ctx, "_", "123")
	fields := s.validationFields(err)
	s.Len(fields[model.FieldUsername], 2)
	s.Len(fields[FieldPassword], 1)
}

func (s *ServiceSuite) TestRegisterFailurePersistsNothing() {
	_, err := s.service.Register(s.ctx, "ab", "password123")
	s.Require().Error(err)

	_, err = s.storage.GetPlayerByUsername(s.ctx, "ab")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestRegisterRejectsLongPassword() {
	long := make([]byte, MaxPasswordLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err := s.service.Register(s.ctx, "alice", string(long))
	fields := s.validationFields(err)
	s.Equal([]string{"is too long (maximum is 72 characters)"}, fields[FieldPassword])
}

// Lookup tests

func (s *ServiceSuite) TestFindByUsernameIgnoresCase() {
	registered, err := s.service.Register(s.ctx, "Alice_01", "password123")
	s.Require().NoError(err)

	found, err := s.service.FindByUsername(s.ctx, "aLiCe_01")
	s.Require().NoError(err)
	s.Equal(registered.ID, found.ID)
}

func (s *ServiceSuite) TestGetPlayer() {
	registered, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	player, err := s.service.GetPlayer(s.ctx, registered.ID)
	s.Require().NoError(err)
	s.Equal("alice", player.Username)

	_, err = s.service.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Authenticate tests

func (s *ServiceSuite) TestAuthenticateSucceeds() {
	registered, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	player, err := s.service.Authenticate(s.ctx, "ALICE", "password123")
	s.Require().NoError(err)
	s.Equal(registered.ID, player.ID)
}

func (s *ServiceSuite) TestAuthenticateWrongPassword() {
	_, err := s.service.Register(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.ctx, "alice", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateUnknownUser() {
	_, err := s.service.Authenticate(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticatePlayerWithoutCredential() {
	testutil.CreatePlayer(s.T(), s.storage, "player-1", "legacy")

	_, err := s.service.Authenticate(s.ctx, "legacy", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}
