// Package state persists tree expansion and selection between sessions.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "trees": {
//	    "net/http.Client": {
//	      "expanded": ["0", "0.child_3"],
//	      "selected": "0.child_3.child_1"
//	    }
//	  }
//	}
//
// Trees are keyed by the root query. A missing or corrupt file means no saved
// state; the user's session is never interrupted by persistence errors.
package state

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/npratt/typetree/internal/tree"
)

// Version is the current schema version.
const Version = 1

// TreeState is the saved view of one tree.
type TreeState struct {
	Expanded []string `json:"expanded"`
	Selected string   `json:"selected,omitempty"`
}

// File is the on-disk document.
type File struct {
	Version int                  `json:"version"`
	Trees   map[string]TreeState `json:"trees"`
}

func emptyFile() *File {
	return &File{Version: Version, Trees: make(map[string]TreeState)}
}

// Store reads and writes the state file. A Store with an empty path is
// disabled: loads find nothing and saves do nothing.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store backed by path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger.With("component", "state")}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole file. A missing or unreadable file yields an empty
// document; corruption is logged.
func (s *Store) Load() *File {
	if s.path == "" {
		return emptyFile()
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read tree state", "path", s.path, "error", err)
		}
		return emptyFile()
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		s.logger.Warn("ignoring corrupt tree state", "path", s.path, "error", err)
		return emptyFile()
	}
	if f.Version != Version {
		s.logger.Warn("ignoring tree state with unknown version", "path", s.path, "version", f.Version)
		return emptyFile()
	}
	if f.Trees == nil {
		f.Trees = make(map[string]TreeState)
	}
	return &f
}

// Get returns the saved state for key.
func (s *Store) Get(key string) (TreeState, bool) {
	ts, ok := s.Load().Trees[key]
	return ts, ok
}

// Save records ts under key, keeping other trees. The file is written to a
// temporary name and renamed into place.
func (s *Store) Save(key string, ts TreeState) error {
	if s.path == "" {
		return nil
	}
	f := s.Load()
	f.Trees[key] = ts

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tree state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tree-state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write tree state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close tree state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace tree state: %w", err)
	}
	return nil
}

// Capture snapshots the engine's expansion and selection.
func Capture(e *tree.Engine) TreeState {
	expanded := e.Expanded()
	ts := TreeState{Expanded: make([]string, len(expanded))}
	for i, p := range expanded {
		ts.Expanded[i] = p.String()
	}
	if p, ok := e.Selected(); ok {
		ts.Selected = p.String()
	}
	return ts
}

// Apply restores a snapshot into the engine, populating nodes as needed.
// Unparseable or stale paths are skipped. It returns how many expansions
// were restored.
func Apply(e *tree.Engine, ts TreeState) int {
	paths := make([]tree.Path, 0, len(ts.Expanded))
	for _, s := range ts.Expanded {
		p, err := tree.ParsePath(s)
		if err != nil {
			continue
		}
		paths = append(paths, p)
	}
	n := e.Restore(paths)
	if ts.Selected != "" {
		if p, err := tree.ParsePath(ts.Selected); err == nil {
			e.Select(p)
		}
	}
	return n
}
