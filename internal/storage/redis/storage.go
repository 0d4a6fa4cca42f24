package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().PingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) nextSeq(ctx context.Context) (int64, error) {
	seq, err := s.client.Incr(ctx, seqKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

func getJSON[T any](ctx context.Context, client *redis.Client, key string, notFound error) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Player operations

// claimUsername points the folded username at playerID unless another player holds it.
// It reports whether this call created the claim.
func (s *Storage) claimUsername(ctx context.Context, username string, playerID model.PlayerID) (bool, error) {
	key := usernameIndexKey(username)
	created, err := s.client.SetNX(ctx, key, string(playerID), 0).Result()
	if err != nil {
		return false, fmt.Errorf("claim username: %w", err)
	}
	if created {
		return true, nil
	}

	owner, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("claim username: %w", err)
	}
	if owner != string(playerID) {
		return false, model.ErrUsernameTaken
	}
	return false, nil
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player, rp *model.RegisteredPlayer) error {
	playerData, err := json.Marshal(player)
	if err != nil {
		return err
	}
	rpData, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	created, err := s.claimUsername(ctx, player.Username, player.ID)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, playerKey(player.ID), playerData, 0)
		pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), rpData, 0)
		return nil
	})
	if err != nil && created {
		// Release the claim so the username stays available
		_ = s.client.Del(context.WithoutCancel(ctx), usernameIndexKey(player.Username)).Err()
	}
	return err
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	previous, err := s.GetPlayer(ctx, player.ID)
	if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
		return err
	}

	if _, err := s.claimUsername(ctx, player.Username, player.ID); err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, playerKey(player.ID), data, 0)
		if previous != nil && model.UsernameKey(previous.Username) != model.UsernameKey(player.Username) {
			pipe.Del(ctx, usernameIndexKey(previous.Username))
		}
		return nil
	})
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player, err := getJSON[model.Player](ctx, s.client, playerKey(id), model.ErrPlayerNotFound)
	if err != nil {
		return nil, err
	}
	player.EnsureProfile()
	return player, nil
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetPlayer(ctx, model.PlayerID(playerIDStr))
}

// Registered player operations

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	return getJSON[model.RegisteredPlayer](ctx, s.client, registeredPlayerKey(playerID), model.ErrPlayerNotFound)
}

// Catalogue operations

func (s *Storage) SaveInfinityLevel(ctx context.Context, level *model.InfinityLevel) error {
	key := infinityLevelKey(level.Difficulty)

	// Replace the ladder atomically
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(level.Puzzles) > 0 {
			members := make([]interface{}, len(level.Puzzles))
			for i, id := range level.Puzzles {
				members[i] = string(id)
			}
			pipe.RPush(ctx, key, members...)
		}
		pipe.SAdd(ctx, infinityLevelsIndexKey(), string(level.Difficulty))
		return nil
	})
	return err
}

func (s *Storage) GetInfinityLevel(ctx context.Context, difficulty model.Difficulty) (*model.InfinityLevel, error) {
	exists, err := s.client.SIsMember(ctx, infinityLevelsIndexKey(), string(difficulty)).Result()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrInfinityLevelNotFound
	}

	ids, err := s.client.LRange(ctx, infinityLevelKey(difficulty), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	puzzles := make([]model.PuzzleID, len(ids))
	for i, id := range ids {
		puzzles[i] = model.PuzzleID(id)
	}
	return &model.InfinityLevel{Difficulty: difficulty, Puzzles: puzzles}, nil
}

func (s *Storage) SaveSpeedrunLevel(ctx context.Context, level *model.SpeedrunLevel) error {
	data, err := json.Marshal(level)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, speedrunLevelKey(level.ID), data, 0)
		pipe.ZAdd(ctx, speedrunLevelsIndexKey(), redis.Z{Score: float64(level.Position), Member: string(level.ID)})
		return nil
	})
	return err
}

func (s *Storage) GetSpeedrunLevel(ctx context.Context, id model.SpeedrunLevelID) (*model.SpeedrunLevel, error) {
	return getJSON[model.SpeedrunLevel](ctx, s.client, speedrunLevelKey(id), model.ErrSpeedrunLevelNotFound)
}

func (s *Storage) ListSpeedrunLevels(ctx context.Context) ([]*model.SpeedrunLevel, error) {
	// ZRANGE orders by score, then lexically by member for equal positions
	ids, err := s.client.ZRange(ctx, speedrunLevelsIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.SpeedrunLevel{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = speedrunLevelKey(model.SpeedrunLevelID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	levels := make([]*model.SpeedrunLevel, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var level model.SpeedrunLevel
		if err := json.Unmarshal([]byte(val.(string)), &level); err != nil {
			return nil, err
		}
		levels = append(levels, &level)
	}
	return levels, nil
}

func (s *Storage) SaveRepetitionLevel(ctx context.Context, level *model.RepetitionLevel) error {
	data, err := json.Marshal(level)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, repetitionLevelKey(level.ID), data, 0)
		pipe.HSet(ctx, repetitionNumberIndexKey(), strconv.Itoa(level.Number), string(level.ID))
		return nil
	})
	return err
}

func (s *Storage) GetRepetitionLevel(ctx context.Context, id model.RepetitionLevelID) (*model.RepetitionLevel, error) {
	return getJSON[model.RepetitionLevel](ctx, s.client, repetitionLevelKey(id), model.ErrRepetitionLevelNotFound)
}

func (s *Storage) GetRepetitionLevelByNumber(ctx context.Context, number int) (*model.RepetitionLevel, error) {
	id, err := s.client.HGet(ctx, repetitionNumberIndexKey(), strconv.Itoa(number)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRepetitionLevelNotFound
		}
		return nil, err
	}
	return s.GetRepetitionLevel(ctx, model.RepetitionLevelID(id))
}

// Infinity solve log

func (s *Storage) AppendSolvedPuzzle(ctx context.Context, solve *model.SolvedInfinityPuzzle) error {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}
	solve.Seq = seq

	data, err := json.Marshal(solve)
	if err != nil {
		return err
	}

	member := redis.Z{Score: float64(seq), Member: data}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, solvesKey(solve.PlayerID, nil), member)
		pipe.ZAdd(ctx, solvesKey(solve.PlayerID, &solve.Difficulty), member)
		return nil
	})
	return err
}

func (s *Storage) LastSolvedPuzzle(ctx context.Context, playerID model.PlayerID, difficulty *model.Difficulty) (*model.SolvedInfinityPuzzle, bool, error) {
	values, err := s.client.ZRevRange(ctx, solvesKey(playerID, difficulty), 0, 0).Result()
	if err != nil {
		return nil, false, err
	}
	if len(values) == 0 {
		return nil, false, nil
	}

	var solve model.SolvedInfinityPuzzle
	if err := json.Unmarshal([]byte(values[0]), &solve); err != nil {
		return nil, false, err
	}
	return &solve, true, nil
}

func (s *Storage) CountSolvedPuzzles(ctx context.Context, playerID model.PlayerID, difficulty *model.Difficulty) (int, error) {
	n, err := s.client.ZCard(ctx, solvesKey(playerID, difficulty)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Speedrun log

func (s *Storage) AppendCompletedSpeedrun(ctx context.Context, run *model.CompletedSpeedrun) error {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}
	run.Seq = seq

	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	timing := redis.Z{Score: float64(run.Duration), Member: strconv.FormatInt(seq, 10)}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, speedrunsKey(run.PlayerID), redis.Z{Score: float64(seq), Member: data})
		pipe.ZAdd(ctx, speedrunTimesKey(run.PlayerID, nil), timing)
		pipe.ZAdd(ctx, speedrunTimesKey(run.PlayerID, &run.LevelID), timing)
		return nil
	})
	return err
}

func (s *Storage) CountCompletedSpeedruns(ctx context.Context, playerID model.PlayerID) (int, error) {
	n, err := s.client.ZCard(ctx, speedrunsKey(playerID)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Storage) FastestSpeedrun(ctx context.Context, playerID model.PlayerID, levelID *model.SpeedrunLevelID) (time.Duration, bool, error) {
	fastest, err := s.client.ZRangeWithScores(ctx, speedrunTimesKey(playerID, levelID), 0, 0).Result()
	if err != nil {
		return 0, false, err
	}
	if len(fastest) == 0 {
		return 0, false, nil
	}
	return time.Duration(int64(fastest[0].Score)), true, nil
}

// Repetition logs

func (s *Storage) AppendCompletedRepetitionLevel(ctx context.Context, completion *model.CompletedRepetitionLevel) error {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}
	completion.Seq = seq

	data, err := json.Marshal(completion)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, repetitionCompletionsKey(completion.PlayerID), redis.Z{Score: float64(seq), Member: data})
		pipe.SAdd(ctx, repetitionCompletedLevelsKey(completion.PlayerID), string(completion.LevelID))
		return nil
	})
	return err
}

func (s *Storage) HighestCompletedRepetitionNumber(ctx context.Context, playerID model.PlayerID) (int, error) {
	ids, err := s.client.SMembers(ctx, repetitionCompletedLevelsKey(playerID)).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = repetitionLevelKey(model.RepetitionLevelID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, err
	}

	highest := 0
	for _, val := range values {
		if val == nil {
			continue // level no longer in the catalogue
		}
		var level model.RepetitionLevel
		if err := json.Unmarshal([]byte(val.(string)), &level); err != nil {
			return 0, err
		}
		if level.Number > highest {
			highest = level.Number
		}
	}
	return highest, nil
}

func (s *Storage) AppendRepetitionRound(ctx context.Context, round *model.CompletedRepetitionRound) error {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}
	round.Seq = seq

	data, err := json.Marshal(round)
	if err != nil {
		return err
	}
	return s.client.ZAdd(ctx, repetitionRoundsKey(round.PlayerID, round.LevelID), redis.Z{Score: float64(seq), Member: data}).Err()
}

func (s *Storage) RecentRepetitionRounds(ctx context.Context, playerID model.PlayerID, levelID model.RepetitionLevelID, limit int) ([]*model.CompletedRepetitionRound, error) {
	rounds := []*model.CompletedRepetitionRound{}
	if limit <= 0 {
		return rounds, nil
	}

	values, err := s.client.ZRevRange(ctx, repetitionRoundsKey(playerID, levelID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	for _, val := range values {
		var round model.CompletedRepetitionRound
		if err := json.Unmarshal([]byte(val), &round); err != nil {
			return nil, err
		}
		rounds = append(rounds, &round)
	}
	return rounds, nil
}
