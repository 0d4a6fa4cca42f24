package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func puzzleID(s string) *PuzzleID {
	id := PuzzleID(s)
	return &id
}

func TestNewPlayerAppliesDefaultProfile(t *testing.T) {
	p := NewPlayer("p1", "alice", time.Now())
	require.NotNil(t, p.Profile)
	assert.Equal(t, []int{1}, p.Profile.LevelsUnlocked)
}

func TestEnsureProfileKeepsExistingUnlocks(t *testing.T) {
	p := &Player{ID: "p1", Profile: &Profile{LevelsUnlocked: []int{1, 2, 5}}}
	p.EnsureProfile()
	assert.Equal(t, []int{1, 2, 5}, p.Profile.LevelsUnlocked)
}

func TestUnlockedLevelCountDeduplicates(t *testing.T) {
	p := &Profile{LevelsUnlocked: []int{1, 2, 2, 3, 1}}
	assert.Equal(t, 3, p.UnlockedLevelCount())

	var nilProfile *Profile
	assert.Equal(t, 0, nilProfile.UnlockedLevelCount())
}

func TestProfileJSONPreservesUnknownKeys(t *testing.T) {
	in := []byte(`{"levels_unlocked":[1,2,2],"theme":"dark","board":{"flip":true}}`)

	var p Profile
	require.NoError(t, json.Unmarshal(in, &p))
	assert.Equal(t, []int{1, 2, 2}, p.LevelsUnlocked)
	assert.JSONEq(t, `"dark"`, string(p.Extra["theme"]))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}

func TestProfileJSONWithoutLevels(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.Nil(t, p.LevelsUnlocked)
	assert.Nil(t, p.Extra)
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		9800 * time.Millisecond:  "9.8s",
		12300 * time.Millisecond: "12.3s",
		0:                        "0.0s",
		59999 * time.Millisecond: "59.9s",
		time.Minute:              "1:00.0",
		65300 * time.Millisecond: "1:05.3",
		11*time.Minute + 2*time.Second: "11:02.0",
	}
	for d, want := range cases {
		assert.Equal(t, want, FormatDuration(d), d.String())
	}
}

func TestBestTimeString(t *testing.T) {
	assert.Equal(t, NoTimeMarker, BestTime{}.String())
	assert.Equal(t, "0.0s", RecordedTime(0).String())
	assert.Equal(t, "9.8s", RecordedTime(9800*time.Millisecond).String())
}

func TestInfinityLevelPuzzlesAfter(t *testing.T) {
	level := &InfinityLevel{Difficulty: DifficultyEasy, Puzzles: []PuzzleID{"a", "b", "c"}}

	assert.Equal(t, []PuzzleID{"a", "b", "c"}, level.PuzzlesAfter(nil))
	assert.Equal(t, []PuzzleID{"c"}, level.PuzzlesAfter(puzzleID("b")))
	assert.Empty(t, level.PuzzlesAfter(puzzleID("c")))
	assert.Equal(t, []PuzzleID{"a", "b", "c"}, level.PuzzlesAfter(puzzleID("zzz")))

	last, ok := level.LastPuzzle()
	assert.True(t, ok)
	assert.Equal(t, PuzzleID("c"), last)
	assert.True(t, level.Contains("b"))
	assert.False(t, level.Contains("d"))
}

func TestInfinityLevelEmpty(t *testing.T) {
	level := &InfinityLevel{Difficulty: DifficultyHard}
	assert.Empty(t, level.PuzzlesAfter(nil))
	_, ok := level.LastPuzzle()
	assert.False(t, ok)
}

func TestDifficultyOrderAndValidity(t *testing.T) {
	assert.Equal(t, []Difficulty{"easy", "medium", "hard", "insane"}, Difficulties())
	assert.Equal(t, DifficultyEasy, DefaultDifficulty)
	assert.True(t, DifficultyInsane.IsValid())
	assert.False(t, Difficulty("nightmare").IsValid())
}
