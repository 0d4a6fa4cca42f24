package model

import (
	"encoding/json"
	"maps"
)

const profileKeyLevelsUnlocked = "levels_unlocked"

// Profile is the open-ended per-player attribute bag.
// Known keys are typed fields; anything else is preserved verbatim in Extra.
type Profile struct {
	// LevelsUnlocked is the legacy repetition unlock set. Stored data may
	// contain duplicates.
	LevelsUnlocked []int

	Extra map[string]json.RawMessage
}

// DefaultProfile returns the profile given to newly registered players
func DefaultProfile() *Profile {
	return &Profile{LevelsUnlocked: []int{1}}
}

// UnlockedLevelCount returns the number of distinct legacy unlocked levels
func (p *Profile) UnlockedLevelCount() int {
	if p == nil {
		return 0
	}
	seen := make(map[int]struct{}, len(p.LevelsUnlocked))
	for _, n := range p.LevelsUnlocked {
		seen[n] = struct{}{}
	}
	return len(seen)
}

// MarshalJSON flattens typed fields and Extra into a single object
func (p Profile) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.Extra)+1)
	maps.Copy(out, p.Extra)

	if p.LevelsUnlocked != nil {
		raw, err := json.Marshal(p.LevelsUnlocked)
		if err != nil {
			return nil, err
		}
		out[profileKeyLevelsUnlocked] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits a flat object into typed fields and Extra
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.LevelsUnlocked = nil
	if v, ok := raw[profileKeyLevelsUnlocked]; ok {
		if err := json.Unmarshal(v, &p.LevelsUnlocked); err != nil {
			return err
		}
		delete(raw, profileKeyLevelsUnlocked)
	}

	p.Extra = nil
	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}
