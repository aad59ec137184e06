package crawler

import (
	"sort"
	"strings"
)

// Frontier is the set of communities discovered but not yet fetched.
// Pop order is unspecified: it follows Go map iteration, so two crawls from
// the same state may visit communities in a different order.
type Frontier struct {
	items map[string]struct{}
}

// NewFrontier creates a frontier holding the given communities
func NewFrontier(names ...string) *Frontier {
	f := &Frontier{
		items: make(map[string]struct{}, len(names)),
	}
	for _, name := range names {
		f.Push(name)
	}
	return f
}

// Push adds a community if not already queued
// Returns true if added, false if duplicate
func (f *Frontier) Push(name string) bool {
	name = strings.ToLower(name)
	if _, queued := f.items[name]; queued {
		return false
	}
	f.items[name] = struct{}{}
	return true
}

// Pop removes and returns an arbitrary community
// Returns ("", false) if the frontier is empty
func (f *Frontier) Pop() (string, bool) {
	for name := range f.items {
		delete(f.items, name)
		return name, true
	}
	return "", false
}

// Contains reports whether a community is queued
func (f *Frontier) Contains(name string) bool {
	_, queued := f.items[strings.ToLower(name)]
	return queued
}

// Remove drops a community from the frontier, reporting whether it was queued
func (f *Frontier) Remove(name string) bool {
	name = strings.ToLower(name)
	if _, queued := f.items[name]; !queued {
		return false
	}
	delete(f.items, name)
	return true
}

// IsEmpty returns true if nothing is queued
func (f *Frontier) IsEmpty() bool {
	return len(f.items) == 0
}

// Len returns the number of queued communities
func (f *Frontier) Len() int {
	return len(f.items)
}

// GetAllEntries returns the queued communities, sorted
// Used for persisting frontier state on checkpoint/completion
func (f *Frontier) GetAllEntries() []string {
	entries := make([]string, 0, len(f.items))
	for name := range f.items {
		entries = append(entries, name)
	}
	sort.Strings(entries)
	return entries
}
