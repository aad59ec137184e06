package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alvmarrod/sidebar-weaver/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerCounters(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.IncrementCommunitiesFetched()
	tracker.IncrementCommunitiesFetched()
	tracker.IncrementAccessFailures()
	tracker.AddReferencesFound(7)
	tracker.IncrementCommunitiesEnqueued()
	tracker.IncrementCheckpoints()
	tracker.SetProgress(3, 3, 5)

	snap := tracker.GetSnapshot()
	assert.Equal(t, 2, snap.CommunitiesFetched)
	assert.Equal(t, 1, snap.AccessFailures)
	assert.Equal(t, 7, snap.ReferencesFound)
	assert.Equal(t, 1, snap.CommunitiesEnqueued)
	assert.Equal(t, 1, snap.CheckpointsWritten)
	assert.Equal(t, 3, snap.Iterations)
	assert.False(t, snap.StartTime.IsZero())

	assert.Equal(t, "Visited: 3 | To visit: 5 | Fetched: 2, failed: 1 | References: 7", tracker.LogProgress())
}

func TestTrackerFetchTimes(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	assert.Zero(t, tracker.GetSnapshot().AvgFetchTimeMs)

	tracker.RecordFetchTime(100 * time.Millisecond)
	tracker.RecordFetchTime(300 * time.Millisecond)

	snap := tracker.GetSnapshot()
	assert.Equal(t, int64(400), snap.TotalFetchTimeMs)
	assert.Equal(t, int64(200), snap.AvgFetchTimeMs)
}

func TestWriteToFile(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.SetProgress(10, 10, 4)
	path := filepath.Join(t.TempDir(), "metrics.json")

	require.NoError(t, tracker.WriteToFile(path, "max_iterations"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got storage.Metrics
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "max_iterations", got.TerminationReason)
	assert.Equal(t, 10, got.Iterations)
	assert.Equal(t, 4, got.Pending)
	assert.False(t, got.EndTime.Before(got.StartTime))

	err = tracker.WriteToFile(filepath.Join(t.TempDir(), "missing", "metrics.json"), "error")
	assert.ErrorContains(t, err, "failed to write metrics file")
}
