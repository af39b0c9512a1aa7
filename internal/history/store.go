// Package history keeps completed runs on disk so they can be listed and
// replayed later. Each run lives in .turing/runs/<id>/ as run.yaml (the
// summary) and trace.json (the full response document).
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/thruflo/turing/internal/config"
	"github.com/thruflo/turing/internal/unary"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no run matches an ID.
var ErrNotFound = errors.New("run not found")

// Record summarizes one completed run.
type Record struct {
	ID        string    `yaml:"id"`
	A         int       `yaml:"a"`
	B         int       `yaml:"b"`
	Sum       int       `yaml:"sum"`
	Steps     int       `yaml:"steps"`
	FinalTape string    `yaml:"final_tape"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Store handles run storage under a project directory.
type Store struct {
	basePath string
	now      func() time.Time
}

// NewStore creates a Store rooted at basePath; runs are kept in
// basePath/.turing/runs.
func NewStore(basePath string) *Store {
	return &Store{basePath: basePath, now: time.Now}
}

func (s *Store) runsDir() string {
	return filepath.Join(s.basePath, config.DirName, "runs")
}

func (s *Store) runDir(id string) string {
	return filepath.Join(s.runsDir(), id)
}

// Save stores a completed run and returns its record with ID and
// CreatedAt filled in.
func (s *Store) Save(a, b int, resp *unary.Response) (*Record, error) {
	rec := &Record{
		ID:        uuid.NewString(),
		A:         a,
		B:         b,
		Sum:       resp.Sum(),
		Steps:     resp.Steps,
		FinalTape: resp.FinalTape,
		CreatedAt: s.now().UTC(),
	}

	dir := s.runDir(rec.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run.yaml"), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write run file: %w", err)
	}

	trace, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trace: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "trace.json"), trace, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write trace file: %w", err)
	}

	return rec, nil
}

// Get reads the record for id.
func (s *Store) Get(id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	data, err := os.ReadFile(filepath.Join(s.runDir(id), "run.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}
	return &rec, nil
}

// Trace reads the stored response document for id.
func (s *Store) Trace(id string) (*unary.Response, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	data, err := os.ReadFile(filepath.Join(s.runDir(id), "trace.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}

	var resp unary.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse trace file: %w", err)
	}
	return &resp, nil
}

// List returns all stored runs, newest first. Unreadable entries are skipped.
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.runsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []*Record{}, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	records := make([]*Record, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := s.Get(entry.Name())
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes a stored run.
func (s *Store) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := os.RemoveAll(s.runDir(id)); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}
