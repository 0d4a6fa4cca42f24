package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID

	infinityLevels   map[model.Difficulty]*model.InfinityLevel
	speedrunLevels   map[model.SpeedrunLevelID]*model.SpeedrunLevel
	repetitionLevels map[model.RepetitionLevelID]*model.RepetitionLevel

	// Append-only logs, each in Seq order
	solves                []model.SolvedInfinityPuzzle
	speedruns             []model.CompletedSpeedrun
	repetitionCompletions []model.CompletedRepetitionLevel
	repetitionRounds      []model.CompletedRepetitionRound

	seq int64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		infinityLevels:    make(map[model.Difficulty]*model.InfinityLevel),
		speedrunLevels:    make(map[model.SpeedrunLevelID]*model.SpeedrunLevel),
		repetitionLevels:  make(map[model.RepetitionLevelID]*model.RepetitionLevel),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// nextSeq must be called with mu held for writing
func (s *Storage) nextSeq() int64 {
	s.seq++
	return s.seq
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.putPlayer(player); err != nil {
		return err
	}
	s.registeredPlayers[rp.PlayerID] = rp
	return nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putPlayer(player)
}

// putPlayer must be called with mu held for writing
func (s *Storage) putPlayer(player *model.Player) error {
	key := model.UsernameKey(player.Username)
	if owner, ok := s.usernameIndex[key]; ok && owner != player.ID {
		return model.ErrUsernameTaken
	}
	if existing, ok := s.players[player.ID]; ok {
		delete(s.usernameIndex, model.UsernameKey(existing.Username))
	}
	s.players[player.ID] = player
	s.usernameIndex[key] = player.ID
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[model.UsernameKey(username)]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := s.players[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

// Registered player operations

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

// Catalogue operations

func (s *Storage) SaveInfinityLevel(ctx context.Context, level *model.InfinityLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	puzzles := make([]model.PuzzleID, len(level.Puzzles))
	copy(puzzles, level.Puzzles)
	s.infinityLevels[level.Difficulty] = &model.InfinityLevel{Difficulty: level.Difficulty, Puzzles: puzzles}
	return nil
}

func (s *Storage) GetInfinityLevel(ctx context.Context, difficulty model.Difficulty) (*model.InfinityLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	level, ok := s.infinityLevels[difficulty]
	if !ok {
		return nil, model.ErrInfinityLevelNotFound
	}
	return level, nil
}

func (s *Storage) SaveSpeedrunLevel(ctx context.Context, level *model.SpeedrunLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speedrunLevels[level.ID] = level
	return nil
}

func (s *Storage) GetSpeedrunLevel(ctx context.Context, id model.SpeedrunLevelID) (*model.SpeedrunLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	level, ok := s.speedrunLevels[id]
	if !ok {
		return nil, model.ErrSpeedrunLevelNotFound
	}
	return level, nil
}

func (s *Storage) ListSpeedrunLevels(ctx context.Context) ([]*model.SpeedrunLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	levels := make([]*model.SpeedrunLevel, 0, len(s.speedrunLevels))
	for _, level := range s.speedrunLevels {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].Position != levels[j].Position {
			return levels[i].Position < levels[j].Position
		}
		return levels[i].ID < levels[j].ID
	})
	return levels, nil
}

func (s *Storage) SaveRepetitionLevel(ctx context.Context, level *model.RepetitionLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repetitionLevels[level.ID] = level
	return nil
}

func (s *Storage) GetRepetitionLevel(ctx context.Context, id model.RepetitionLevelID) (*model.RepetitionLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	level, ok := s.repetitionLevels[id]
	if !ok {
		return nil, model.ErrRepetitionLevelNotFound
	}
	return level, nil
}

func (s *Storage) GetRepetitionLevelByNumber(ctx context.Context, number int) (*model.RepetitionLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, level := range s.repetitionLevels {
		if level.Number == number {
			return level, nil
		}
	}
	return nil, model.ErrRepetitionLevelNotFound
}

// Infinity solve log

func (s *Storage) AppendSolvedPuzzle(ctx context.Context, solve *model.SolvedInfinityPuzzle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	solve.Seq = s.nextSeq()
	s.solves = append(s.solves, *solve)
	return nil
}

func (s *Storage) LastSolvedPuzzle(ctx context.Context, playerID model.PlayerID, difficulty *model.Difficulty) (*model.SolvedInfinityPuzzle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.solves) - 1; i >= 0; i-- {
		solve := s.solves[i]
		if solve.PlayerID != playerID {
			continue
		}
		if difficulty != nil && solve.Difficulty != *difficulty {
			continue
		}
		return &solve, true, nil
	}
	return nil, false, nil
}

func (s *Storage) CountSolvedPuzzles(ctx context.Context, playerID model.PlayerID, difficulty *model.Difficulty) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, solve := range s.solves {
		if solve.PlayerID == playerID && (difficulty == nil || solve.Difficulty == *difficulty) {
			count++
		}
	}
	return count, nil
}

// Speedrun log

func (s *Storage) AppendCompletedSpeedrun(ctx context.Context, run *model.CompletedSpeedrun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.Seq = s.nextSeq()
	s.speedruns = append(s.speedruns, *run)
	return nil
}

func (s *Storage) CountCompletedSpeedruns(ctx context.Context, playerID model.PlayerID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, run := range s.speedruns {
		if run.PlayerID == playerID {
			count++
		}
	}
	return count, nil
}

func (s *Storage) FastestSpeedrun(ctx context.Context, playerID model.PlayerID, levelID *model.SpeedrunLevelID) (time.Duration, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var fastest time.Duration
	found := false
	for _, run := range s.speedruns {
		if run.PlayerID != playerID {
			continue
		}
		if levelID != nil && run.LevelID != *levelID {
			continue
		}
		if !found || run.Duration < fastest {
			fastest = run.Duration
			found = true
		}
	}
	return fastest, found, nil
}

// Repetition logs

func (s *Storage) AppendCompletedRepetitionLevel(ctx context.Context, completion *model.CompletedRepetitionLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	completion.Seq = s.nextSeq()
	s.repetitionCompletions = append(s.repetitionCompletions, *completion)
	return nil
}

func (s *Storage) HighestCompletedRepetitionNumber(ctx context.Context, playerID model.PlayerID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	highest := 0
	for _, c := range s.repetitionCompletions {
		if c.PlayerID != playerID {
			continue
		}
		level, ok := s.repetitionLevels[c.LevelID]
		if !ok {
			continue // inner join: completions of unknown levels are ignored
		}
		if level.Number > highest {
			highest = level.Number
		}
	}
	return highest, nil
}

func (s *Storage) AppendRepetitionRound(ctx context.Context, round *model.CompletedRepetitionRound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	round.Seq = s.nextSeq()
	s.repetitionRounds = append(s.repetitionRounds, *round)
	return nil
}

func (s *Storage) RecentRepetitionRounds(ctx context.Context, playerID model.PlayerID, levelID model.RepetitionLevelID, limit int) ([]*model.CompletedRepetitionRound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rounds := []*model.CompletedRepetitionRound{}
	for i := len(s.repetitionRounds) - 1; i >= 0 && len(rounds) < limit; i-- {
		round := s.repetitionRounds[i]
		if round.PlayerID == playerID && round.LevelID == levelID {
			rounds = append(rounds, &round)
		}
	}
	return rounds, nil
}
