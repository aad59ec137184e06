package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alvmarrod/sidebar-weaver/internal/storage"
	"github.com/sirupsen/logrus"
)

// Graph is the visited map: every fetched community and the sorted list of
// communities its description references. Entries are never removed.
type Graph struct {
	adjacency map[string][]string
	edgeCount int
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
	}
}

// FromAdjacency builds a graph from a loaded visited map
func FromAdjacency(adjacency map[string][]string) *Graph {
	g := NewGraph()
	for name, refs := range adjacency {
		g.Record(name, refs)
	}
	return g
}

// Record stores the references of a community. Returns false, leaving the
// graph untouched, if the community was already recorded.
func (g *Graph) Record(name string, refs []string) bool {
	name = strings.ToLower(name)
	if _, exists := g.adjacency[name]; exists {
		return false
	}

	sorted := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		ref = strings.ToLower(ref)
		if seen[ref] {
			continue
		}
		seen[ref] = true
		sorted = append(sorted, ref)
	}
	sort.Strings(sorted)

	g.adjacency[name] = sorted
	g.edgeCount += len(sorted)
	return true
}

// Has reports whether a community has been recorded
func (g *Graph) Has(name string) bool {
	_, exists := g.adjacency[strings.ToLower(name)]
	return exists
}

// References returns a copy of a community's references
func (g *Graph) References(name string) ([]string, bool) {
	refs, exists := g.adjacency[strings.ToLower(name)]
	if !exists {
		return nil, false
	}
	out := make([]string, len(refs))
	copy(out, refs)
	return out, true
}

// Len returns the number of recorded communities
func (g *Graph) Len() int {
	return len(g.adjacency)
}

// GetStats returns current graph statistics
func (g *Graph) GetStats() (nodeCount, edgeCount int) {
	return len(g.adjacency), g.edgeCount
}

// Adjacency returns a copy of the visited map suitable for serialization
func (g *Graph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.adjacency))
	for name, refs := range g.adjacency {
		cp := make([]string, len(refs))
		copy(cp, refs)
		out[name] = cp
	}
	return out
}

// Flush writes every community and reference to SQLite storage.
// Referenced communities that were never fetched are stored unvisited.
func (g *Graph) Flush(store *storage.Storage) error {
	startTime := time.Now()
	logrus.Info("Starting flush to database...")

	names := make([]string, 0, len(g.adjacency))
	for name := range g.adjacency {
		names = append(names, name)
	}
	sort.Strings(names)

	ids := make(map[string]int, len(names))
	for _, name := range names {
		id, err := store.UpsertCommunity(name, true, len(g.adjacency[name]))
		if err != nil {
			return fmt.Errorf("failed to flush community %s: %w", name, err)
		}
		ids[name] = id
	}

	edgesWritten := 0
	for _, name := range names {
		for _, ref := range g.adjacency[name] {
			toID, ok := ids[ref]
			if !ok {
				id, err := store.UpsertCommunity(ref, false, 0)
				if err != nil {
					return fmt.Errorf("failed to flush community %s: %w", ref, err)
				}
				ids[ref] = id
				toID = id
			}

			if err := store.UpsertEdge(ids[name], toID); err != nil {
				return fmt.Errorf("failed to flush edge %s -> %s: %w", name, ref, err)
			}
			edgesWritten++
		}
	}

	logrus.Infof("Flush complete: %d communities, %d edges written in %v",
		len(ids), edgesWritten, time.Since(startTime))
	return nil
}
