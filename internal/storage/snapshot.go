package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Default snapshot locations, relative to the working directory
const (
	DefaultCheckpointVisitedPath  = "crawler_checkpoint.json"
	DefaultCheckpointFrontierPath = "to_visit_checkpoint.json"
	DefaultFinalVisitedPath       = "crawler.json"
	DefaultFinalFrontierPath      = "to_visit.json"
)

// SnapshotPaths names the four output slots of a crawl
type SnapshotPaths struct {
	CheckpointVisited  string
	CheckpointFrontier string
	FinalVisited       string
	FinalFrontier      string
}

// DefaultSnapshotPaths returns the fixed output slots
func DefaultSnapshotPaths() SnapshotPaths {
	return SnapshotPaths{
		CheckpointVisited:  DefaultCheckpointVisitedPath,
		CheckpointFrontier: DefaultCheckpointFrontierPath,
		FinalVisited:       DefaultFinalVisitedPath,
		FinalFrontier:      DefaultFinalFrontierPath,
	}
}

// SnapshotStore writes crawl state to the rolling checkpoint slots and the
// final slots
type SnapshotStore struct {
	paths SnapshotPaths
}

// NewSnapshotStore creates a store writing to the given slots
func NewSnapshotStore(paths SnapshotPaths) *SnapshotStore {
	return &SnapshotStore{paths: paths}
}

// Paths returns the slots this store writes to
func (s *SnapshotStore) Paths() SnapshotPaths {
	return s.paths
}

// Checkpoint overwrites the rolling checkpoint files
func (s *SnapshotStore) Checkpoint(visited map[string][]string, frontier []string) error {
	return s.write(s.paths.CheckpointVisited, s.paths.CheckpointFrontier, visited, frontier)
}

// Final writes the completion files
func (s *SnapshotStore) Final(visited map[string][]string, frontier []string) error {
	return s.write(s.paths.FinalVisited, s.paths.FinalFrontier, visited, frontier)
}

func (s *SnapshotStore) write(visitedPath, frontierPath string, visited map[string][]string, frontier []string) error {
	if err := SaveVisited(visitedPath, visited); err != nil {
		return err
	}
	return SaveFrontier(frontierPath, frontier)
}

// SaveVisited writes the visited map as an indented JSON object.
// Reference lists are written sorted and never as null.
func SaveVisited(path string, visited map[string][]string) error {
	doc := make(map[string][]string, len(visited))
	for name, refs := range visited {
		doc[name] = normalizeNames(refs)
	}
	return writeJSON(path, doc)
}

// SaveFrontier writes the frontier as an indented JSON array
func SaveFrontier(path string, frontier []string) error {
	return writeJSON(path, normalizeNames(frontier))
}

// LoadVisited reads a visited map written by SaveVisited
func LoadVisited(path string) (map[string][]string, error) {
	var doc map[string][]string
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("failed to parse %s: expected a JSON object", path)
	}

	visited := make(map[string][]string, len(doc))
	for name, refs := range doc {
		key := strings.ToLower(name)
		visited[key] = normalizeNames(append(visited[key], refs...))
	}
	return visited, nil
}

// LoadFrontier reads a frontier written by SaveFrontier
func LoadFrontier(path string) ([]string, error) {
	var doc []string
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("failed to parse %s: expected a JSON array", path)
	}
	return normalizeNames(doc), nil
}

// normalizeNames lower-cases, deduplicates and sorts a list of names
func normalizeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON replaces path atomically so a crash never leaves a torn file
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
