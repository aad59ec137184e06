package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alvmarrod/sidebar-weaver/internal/storage"
)

// Tracker holds and manages crawl metrics. It is owned by the crawl loop
// and not safe for concurrent use.
type Tracker struct {
	data             storage.Metrics
	totalFetchTimeMs int64
	fetchCount       int
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: storage.Metrics{
			StartTime: time.Now(),
		},
	}
}

// IncrementCommunitiesFetched counts a successful description fetch
func (t *Tracker) IncrementCommunitiesFetched() {
	t.data.CommunitiesFetched++
}

// IncrementAccessFailures counts a fetch rejected by the platform
func (t *Tracker) IncrementAccessFailures() {
	t.data.AccessFailures++
}

// AddReferencesFound adds the references extracted from one community
func (t *Tracker) AddReferencesFound(n int) {
	t.data.ReferencesFound += n
}

// IncrementCommunitiesEnqueued counts a community added to the frontier
func (t *Tracker) IncrementCommunitiesEnqueued() {
	t.data.CommunitiesEnqueued++
}

// IncrementCheckpoints counts a rolling checkpoint write
func (t *Tracker) IncrementCheckpoints() {
	t.data.CheckpointsWritten++
}

// SetProgress records the iteration count and current set sizes
func (t *Tracker) SetProgress(iterations, visited, pending int) {
	t.data.Iterations = iterations
	t.data.Visited = visited
	t.data.Pending = pending
}

// RecordFetchTime records a community fetch duration
func (t *Tracker) RecordFetchTime(duration time.Duration) {
	t.totalFetchTimeMs += duration.Milliseconds()
	t.fetchCount++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	snapshot := t.data
	snapshot.TotalFetchTimeMs = t.totalFetchTimeMs

	if t.fetchCount > 0 {
		snapshot.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	return snapshot
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason

	jsonData, err := json.MarshalIndent(t.GetSnapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress renders the current counters as one line
func (t *Tracker) LogProgress() string {
	return fmt.Sprintf("Visited: %d | To visit: %d | Fetched: %d, failed: %d | References: %d",
		t.data.Visited,
		t.data.Pending,
		t.data.CommunitiesFetched,
		t.data.AccessFailures,
		t.data.ReferencesFound,
	)
}
