// Package catalogue loads the fixed game content (puzzle ladders and levels)
// from YAML and seeds it into storage.
package catalogue

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/storage"
)

//go:embed default.yaml
var defaultCatalogue []byte

// Catalogue is the YAML document describing all game content
type Catalogue struct {
	// Infinity maps each difficulty to its ordered puzzle IDs.
	// Every difficulty must be present; a ladder may be empty.
	Infinity map[string][]string `yaml:"infinity"`

	// Speedruns are listed in catalogue order.
	Speedruns []SpeedrunLevel `yaml:"speedruns"`

	// Repetition levels must be numbered 1..n without gaps.
	Repetition []RepetitionLevel `yaml:"repetition"`
}

// SpeedrunLevel is a speedrun entry in the catalogue file
type SpeedrunLevel struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// RepetitionLevel is a repetition entry in the catalogue file
type RepetitionLevel struct {
	ID     string `yaml:"id"`
	Number int    `yaml:"number"`
	Name   string `yaml:"name"`
}

// Load reads and parses a catalogue file
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file: %w", err)
	}
	return Parse(data)
}

// Default returns the catalogue bundled with the binary
func Default() (*Catalogue, error) {
	return Parse(defaultCatalogue)
}

// Parse decodes a catalogue, rejecting unknown fields, and validates it
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue YAML: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every structural problem in the catalogue
func (c *Catalogue) Validate() error {
	var errs []error

	for name := range c.Infinity {
		if !model.Difficulty(name).IsValid() {
			errs = append(errs, fmt.Errorf("infinity: unknown difficulty %q", name))
		}
	}
	for _, d := range model.Difficulties() {
		puzzles, ok := c.Infinity[string(d)]
		if !ok {
			errs = append(errs, fmt.Errorf("infinity: missing ladder for difficulty %q", d))
			continue
		}
		seen := make(map[string]bool, len(puzzles))
		for _, id := range puzzles {
			if id == "" {
				errs = append(errs, fmt.Errorf("infinity.%s: empty puzzle id", d))
			}
			if seen[id] {
				errs = append(errs, fmt.Errorf("infinity.%s: duplicate puzzle id %q", d, id))
			}
			seen[id] = true
		}
	}

	speedrunIDs := make(map[string]bool, len(c.Speedruns))
	for i, level := range c.Speedruns {
		if level.ID == "" || level.Name == "" {
			errs = append(errs, fmt.Errorf("speedruns[%d]: id and name are required", i))
		}
		if speedrunIDs[level.ID] {
			errs = append(errs, fmt.Errorf("speedruns[%d]: duplicate id %q", i, level.ID))
		}
		speedrunIDs[level.ID] = true
	}

	repetitionIDs := make(map[string]bool, len(c.Repetition))
	numbers := make(map[int]bool, len(c.Repetition))
	for i, level := range c.Repetition {
		if level.ID == "" || level.Name == "" {
			errs = append(errs, fmt.Errorf("repetition[%d]: id and name are required", i))
		}
		if repetitionIDs[level.ID] {
			errs = append(errs, fmt.Errorf("repetition[%d]: duplicate id %q", i, level.ID))
		}
		repetitionIDs[level.ID] = true
		if numbers[level.Number] {
			errs = append(errs, fmt.Errorf("repetition[%d]: duplicate number %d", i, level.Number))
		}
		numbers[level.Number] = true
	}
	for n := 1; n <= len(c.Repetition); n++ {
		if !numbers[n] {
			errs = append(errs, fmt.Errorf("repetition: numbers must run 1..%d without gaps, missing %d", len(c.Repetition), n))
		}
	}

	return errors.Join(errs...)
}

// Seed writes the catalogue to store. Existing entries with the same IDs are replaced.
func (c *Catalogue) Seed(ctx context.Context, store storage.Storage) error {
	for _, d := range model.Difficulties() {
		raw := c.Infinity[string(d)]
		puzzles := make([]model.PuzzleID, len(raw))
		for i, id := range raw {
			puzzles[i] = model.PuzzleID(id)
		}
		if err := store.SaveInfinityLevel(ctx, &model.InfinityLevel{Difficulty: d, Puzzles: puzzles}); err != nil {
			return fmt.Errorf("seed infinity %s: %w", d, err)
		}
	}

	for i, level := range c.Speedruns {
		err := store.SaveSpeedrunLevel(ctx, &model.SpeedrunLevel{
			ID:       model.SpeedrunLevelID(level.ID),
			Name:     level.Name,
			Position: i + 1,
		})
		if err != nil {
			return fmt.Errorf("seed speedrun %s: %w", level.ID, err)
		}
	}

	for _, level := range c.Repetition {
		err := store.SaveRepetitionLevel(ctx, &model.RepetitionLevel{
			ID:     model.RepetitionLevelID(level.ID),
			Number: level.Number,
			Name:   level.Name,
		})
		if err != nil {
			return fmt.Errorf("seed repetition %s: %w", level.ID, err)
		}
	}
	return nil
}
