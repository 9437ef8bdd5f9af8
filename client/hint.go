// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Hint remembers a vote this machine made. It only saves a round trip; the
// server's answer always wins.
type Hint struct {
	ElectionID    string    `json:"election_id"`
	CandidateID   string    `json:"candidate_id"`
	CandidateName string    `json:"candidate_name"`
	VotedAt       time.Time `json:"voted_at"`
}

// HintFile stores hints as JSON keyed by election id.
type HintFile struct {
	path string
}

func NewHintFile(path string) HintFile {
	return HintFile{path: path}
}

// DefaultHintPath is votes.json under the user's config directory.
func DefaultHintPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "quickly-vote", "votes.json"), nil
}

// Get returns the hint for an election, if any.
func (h HintFile) Get(electionID string) (Hint, bool, error) {
	hints, err := h.load()
	if err != nil {
		return Hint{}, false, err
	}
	hint, ok := hints[electionID]
	return hint, ok, nil
}

// Put records a hint, replacing any earlier one for the same election.
func (h HintFile) Put(hint Hint) error {
	hints, err := h.load()
	if err != nil {
		return err
	}
	hints[hint.ElectionID] = hint

	data, err := json.MarshalIndent(hints, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode hints: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return fmt.Errorf("failed to create hint dir: %w", err)
	}

	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write hints: %w", err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		return fmt.Errorf("failed to write hints: %w", err)
	}
	return nil
}

func (h HintFile) load() (map[string]Hint, error) {
	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Hint{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read hints: %w", err)
	}

	hints := map[string]Hint{}
	if err := json.Unmarshal(data, &hints); err != nil {
		// A corrupt hint file is only a lost cache.
		return map[string]Hint{}, nil
	}
	return hints, nil
}
