// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/quickly-vote/models"
)

var ErrInvalidDefinition = errors.New("invalid election definition")

// Definition is the election file.
type Definition struct {
	ID         string                `yaml:"id"`
	Name       string                `yaml:"name"`
	OpensAt    time.Time             `yaml:"opens_at"`
	ClosesAt   time.Time             `yaml:"closes_at"`
	Candidates []CandidateDefinition `yaml:"candidates"`
}

type CandidateDefinition struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Seeder is the store the definition is written to.
type Seeder interface {
	UpsertElection(ctx context.Context, e models.Election) error
	UpsertCandidate(ctx context.Context, c models.Candidate) error
}

// Load reads and validates an election file.
func Load(path string) (Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to open election file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates an election definition. Unknown keys are rejected.
// Candidates without an id get one derived from the election id and their name.
func Parse(r io.Reader) (Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	def.ID = strings.TrimSpace(def.ID)
	def.Name = strings.TrimSpace(def.Name)
	for i := range def.Candidates {
		c := &def.Candidates[i]
		c.Name = strings.TrimSpace(c.Name)
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" && c.Name != "" {
			c.ID = CandidateID(def.ID, c.Name)
		}
	}

	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// CandidateID derives a stable candidate id, so re-seeding the same file
// updates candidates instead of duplicating them.
func CandidateID(electionID, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(electionID+"/"+name)).String()
}

func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDefinition)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if d.OpensAt.IsZero() || d.ClosesAt.IsZero() {
		return fmt.Errorf("%w: opens_at and closes_at are required", ErrInvalidDefinition)
	}
	if !d.ClosesAt.After(d.OpensAt) {
		return fmt.Errorf("%w: closes_at must be after opens_at", ErrInvalidDefinition)
	}
	if len(d.Candidates) == 0 {
		return fmt.Errorf("%w: at least one candidate is required", ErrInvalidDefinition)
	}

	seen := make(map[string]bool, len(d.Candidates))
	for i, c := range d.Candidates {
		if c.Name == "" {
			return fmt.Errorf("%w: candidate %d has no name", ErrInvalidDefinition, i+1)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate candidate %q", ErrInvalidDefinition, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// Election returns the stored form of the definition.
func (d Definition) Election() models.Election {
	return models.Election{
		ID:       d.ID,
		Name:     d.Name,
		OpensAt:  d.OpensAt.UTC(),
		ClosesAt: d.ClosesAt.UTC(),
	}
}

// Seed writes the election and its candidates. It is safe to run on every
// start: existing tallies are kept and candidates missing from the file are
// left in place.
func Seed(ctx context.Context, s Seeder, d Definition) (models.Election, error) {
	e := d.Election()
	if err := s.UpsertElection(ctx, e); err != nil {
		return models.Election{}, fmt.Errorf("failed to seed election: %w", err)
	}

	for _, c := range d.Candidates {
		err := s.UpsertCandidate(ctx, models.Candidate{
			ID:          c.ID,
			ElectionID:  e.ID,
			DisplayName: c.Name,
		})
		if err != nil {
			return models.Election{}, fmt.Errorf("failed to seed candidate: %w", err)
		}
	}

	slog.Info("election seeded", "election_id", e.ID, "candidates", len(d.Candidates))
	return e, nil
}
