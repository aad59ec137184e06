package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/alvmarrod/sidebar-weaver/internal/memory"
	"github.com/alvmarrod/sidebar-weaver/internal/metrics"
	"github.com/sirupsen/logrus"
)

// DefaultSeed is the community a fresh crawl starts from
const DefaultSeed = "microfinance"

// Termination reasons reported by Run
const (
	ReasonFrontierEmpty = "frontier_empty"
	ReasonMaxIterations = "max_iterations"
)

// Checkpointer persists crawl state. Checkpoint overwrites the rolling
// slots, Final writes the completion slots.
type Checkpointer interface {
	Checkpoint(visited map[string][]string, frontier []string) error
	Final(visited map[string][]string, frontier []string) error
}

// Options bounds a crawl
type Options struct {
	// MaxIterations caps the number of fetches; 0 means unbounded
	MaxIterations int
	// CheckpointInterval is the number of fetches between checkpoints
	CheckpointInterval int
}

// State is everything a crawl mutates. Visited keys and Frontier members
// are disjoint.
type State struct {
	Visited   *memory.Graph
	Frontier  *Frontier
	Iteration int
}

// NewState builds crawl state from a visited graph and a frontier, dropping
// frontier members that were already visited
func NewState(visited *memory.Graph, frontier *Frontier) *State {
	for _, name := range frontier.GetAllEntries() {
		if visited.Has(name) {
			frontier.Remove(name)
			logrus.Warnf("%s is already visited, removed from frontier", name)
		}
	}

	return &State{
		Visited:  visited,
		Frontier: frontier,
	}
}

// SeedState returns fresh state with only the seed queued
func SeedState(seed string) *State {
	return NewState(memory.NewGraph(), NewFrontier(seed))
}

// Crawler drives the fetch, extract, enqueue, checkpoint loop
type Crawler struct {
	opts      Options
	fetcher   *Fetcher
	snapshots Checkpointer
	tracker   *metrics.Tracker
}

// NewCrawler creates a new crawler instance
func NewCrawler(opts Options, fetcher *Fetcher, snapshots Checkpointer, tracker *metrics.Tracker) *Crawler {
	if tracker == nil {
		tracker = metrics.NewTracker()
	}

	return &Crawler{
		opts:      opts,
		fetcher:   fetcher,
		snapshots: snapshots,
		tracker:   tracker,
	}
}

// Run crawls until the frontier is empty or the iteration cap is reached,
// then writes the final snapshot. On error or cancellation it returns
// without a final snapshot; the last checkpoint stays on disk.
func (c *Crawler) Run(ctx context.Context, state *State) (string, error) {
	logrus.Infof("Starting crawl: %d visited, %d pending", state.Visited.Len(), state.Frontier.Len())
	c.tracker.SetProgress(state.Iteration, state.Visited.Len(), state.Frontier.Len())

	for !state.Frontier.IsEmpty() && !c.capReached(state) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if err := c.step(ctx, state); err != nil {
			return "", err
		}
	}

	reason := ReasonFrontierEmpty
	if !state.Frontier.IsEmpty() {
		reason = ReasonMaxIterations
	}

	logrus.Infof("Crawl finished (%s), writing final snapshot", reason)
	if err := c.snapshots.Final(state.Visited.Adjacency(), state.Frontier.GetAllEntries()); err != nil {
		return "", fmt.Errorf("failed to write final snapshot: %w", err)
	}

	return reason, nil
}

func (c *Crawler) capReached(state *State) bool {
	return c.opts.MaxIterations > 0 && state.Iteration >= c.opts.MaxIterations
}

// step processes exactly one community from the frontier
func (c *Crawler) step(ctx context.Context, state *State) error {
	name, ok := state.Frontier.Pop()
	if !ok {
		return nil
	}

	start := time.Now()
	text, fetched, err := c.fetcher.Fetch(ctx, name)
	c.tracker.RecordFetchTime(time.Since(start))
	if err != nil {
		return fmt.Errorf("iteration %d: %w", state.Iteration, err)
	}

	refs := []string{}
	if fetched {
		c.tracker.IncrementCommunitiesFetched()
		refs = ExtractCommunities(text, name)
	} else {
		c.tracker.IncrementAccessFailures()
	}

	if !state.Visited.Record(name, refs) {
		logrus.Warnf("%s was already visited, keeping the first result", name)
	}
	c.tracker.AddReferencesFound(len(refs))

	for _, ref := range refs {
		if state.Visited.Has(ref) || state.Frontier.Contains(ref) {
			continue
		}
		state.Frontier.Push(ref)
		c.tracker.IncrementCommunitiesEnqueued()
	}

	processed := state.Iteration + 1
	c.tracker.SetProgress(processed, state.Visited.Len(), state.Frontier.Len())
	logrus.Infof("Iteration %d: %s -> %d references | %s",
		state.Iteration, name, len(refs), c.tracker.LogProgress())

	if c.opts.CheckpointInterval > 0 && processed%c.opts.CheckpointInterval == 0 {
		logrus.Infof("Checkpointing after %d iterations", processed)
		if err := c.snapshots.Checkpoint(state.Visited.Adjacency(), state.Frontier.GetAllEntries()); err != nil {
			return fmt.Errorf("failed to write checkpoint: %w", err)
		}
		c.tracker.IncrementCheckpoints()
	}

	state.Iteration = processed
	return nil
}
