package redis

import (
	"fmt"

	"github.com/mcoot/tactics-progress/internal/model"
)

// Key prefix for all progress data
const keyPrefix = "tactics"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the folded username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, model.UsernameKey(username))
}

// infinityLevelKey returns the Redis LIST of puzzle IDs for a difficulty
func infinityLevelKey(d model.Difficulty) string {
	return fmt.Sprintf("%s:infinity_level:%s", keyPrefix, d)
}

// infinityLevelsIndexKey returns the SET of difficulties that have a ladder
func infinityLevelsIndexKey() string {
	return fmt.Sprintf("%s:idx:infinity_levels", keyPrefix)
}

// speedrunLevelKey returns the Redis key for a SpeedrunLevel
func speedrunLevelKey(id model.SpeedrunLevelID) string {
	return fmt.Sprintf("%s:speedrun_level:%s", keyPrefix, id)
}

// speedrunLevelsIndexKey returns the ZSET of speedrun level IDs scored by position
func speedrunLevelsIndexKey() string {
	return fmt.Sprintf("%s:idx:speedrun_levels", keyPrefix)
}

// repetitionLevelKey returns the Redis key for a RepetitionLevel
func repetitionLevelKey(id model.RepetitionLevelID) string {
	return fmt.Sprintf("%s:repetition_level:%s", keyPrefix, id)
}

// repetitionNumberIndexKey returns the HASH of level number -> level ID
func repetitionNumberIndexKey() string {
	return fmt.Sprintf("%s:idx:repetition_number", keyPrefix)
}

// seqKey returns the counter used to order appends across all logs
func seqKey() string {
	return fmt.Sprintf("%s:seq", keyPrefix)
}

// solvesKey returns the ZSET of a player's solves scored by seq.
// With a difficulty it is the per-difficulty projection of the same log.
func solvesKey(playerID model.PlayerID, d *model.Difficulty) string {
	if d == nil {
		return fmt.Sprintf("%s:solves:%s", keyPrefix, playerID)
	}
	return fmt.Sprintf("%s:solves:%s:%s", keyPrefix, playerID, *d)
}

// speedrunsKey returns the ZSET of a player's speedrun completions scored by seq
func speedrunsKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:speedruns:%s", keyPrefix, playerID)
}

// speedrunTimesKey returns the ZSET of seq members scored by duration in ns.
// Without a level it covers every level.
func speedrunTimesKey(playerID model.PlayerID, levelID *model.SpeedrunLevelID) string {
	if levelID == nil {
		return fmt.Sprintf("%s:speedrun_times:%s", keyPrefix, playerID)
	}
	return fmt.Sprintf("%s:speedrun_times:%s:%s", keyPrefix, playerID, *levelID)
}

// repetitionCompletionsKey returns the ZSET of a player's level completions scored by seq
func repetitionCompletionsKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:repetition_completions:%s", keyPrefix, playerID)
}

// repetitionCompletedLevelsKey returns the SET of level IDs a player has completed
func repetitionCompletedLevelsKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:repetition_completed:%s", keyPrefix, playerID)
}

// repetitionRoundsKey returns the ZSET of rounds for a player and level scored by seq
func repetitionRoundsKey(playerID model.PlayerID, levelID model.RepetitionLevelID) string {
	return fmt.Sprintf("%s:repetition_rounds:%s:%s", keyPrefix, playerID, levelID)
}
