package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/model"
)

// ErrNotFound is returned by Load when no checkpoint file exists.
// Callers treat it as "start fresh"; any other load error is fatal so
// partial progress is never silently discarded.
var ErrNotFound = errors.New("checkpoint not found")

// State is a durable snapshot of a crawl: the originating source
// configuration, the frontier, and every entry accumulated so far.
// Restoring a State replaces the frontier wholesale.
type State struct {
	// Source is the configuration the crawl was started with. Embedding
	// it makes a checkpoint self-describing and lets resume detect a
	// configuration switch.
	Source *config.Source `json:"source"`

	// Visited holds the normalized URLs already processed.
	Visited []string `json:"visited"`

	// Queue holds the pending URLs in FIFO order.
	Queue []string `json:"queue"`

	// Entries holds every entry extracted so far.
	Entries []model.Entry `json:"entries"`

	// SavedAt records when the checkpoint was written.
	SavedAt time.Time `json:"savedAt"`
}

// Save writes the state to path atomically: the JSON document is written
// to a temporary file in the same directory and renamed into place, so a
// concurrent reader sees either the old or the new complete content.
func Save(path string, state *State) error {
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshal state: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("checkpoint: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("checkpoint: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: rename into place: %w", err)
	}
	return nil
}

// Load reads a checkpoint from path. A missing file returns ErrNotFound;
// a malformed file is an error, never an empty state.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided checkpoint path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("checkpoint: read %s: %w", path, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("checkpoint: parse %s: %w", path, err)
	}
	return &state, nil
}
