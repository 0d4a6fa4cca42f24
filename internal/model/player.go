package model

import (
	"time"

	"github.com/google/uuid"
)

// PlayerID uniquely identifies a player across the system
type PlayerID string

// NewPlayerID generates a fresh random player ID
func NewPlayerID() PlayerID {
	return PlayerID(uuid.NewString())
}

// Player is a participant whose progress is tracked across all game modes
type Player struct {
	ID        PlayerID
	Username  string // immutable once validated
	Profile   *Profile
	CreatedAt time.Time
}

// NewPlayer creates a player with the default profile applied
func NewPlayer(id PlayerID, username string, createdAt time.Time) *Player {
	p := &Player{
		ID:        id,
		Username:  username,
		CreatedAt: createdAt,
	}
	p.EnsureProfile()
	return p
}

// EnsureProfile applies the default profile if, and only if, none is set.
// Existing profiles are never touched, so calling it repeatedly is safe.
func (p *Player) EnsureProfile() {
	if p.Profile == nil {
		p.Profile = DefaultProfile()
	}
}

// RegisteredPlayer holds the credential for a player known to the account directory
// Stored separately from Player so progress reads never load the hash
type RegisteredPlayer struct {
	PlayerID     PlayerID
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
