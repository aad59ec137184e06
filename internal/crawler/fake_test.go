package crawler

import (
	"context"
	"fmt"

	"github.com/alvmarrod/sidebar-weaver/internal/reddit"
)

// fakeSource serves canned descriptions and errors
type fakeSource struct {
	full   map[string]*string
	public map[string]*string
	errs   map[string]error
	calls  []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		full:   map[string]*string{},
		public: map[string]*string{},
		errs:   map[string]error{},
	}
}

func (s *fakeSource) set(name, full, public string) *fakeSource {
	s.full[name] = &full
	s.public[name] = &public
	return s
}

func (s *fakeSource) forbid(name string) *fakeSource {
	s.errs[name] = &reddit.AccessError{Kind: reddit.Forbidden, Community: name, StatusCode: 403}
	return s
}

func (s *fakeSource) FullDescription(_ context.Context, name string) (*string, error) {
	s.calls = append(s.calls, name)
	if err, ok := s.errs[name]; ok {
		return nil, err
	}
	return s.full[name], nil
}

func (s *fakeSource) PublicDescription(_ context.Context, name string) (*string, error) {
	if err, ok := s.errs[name]; ok {
		return nil, err
	}
	return s.public[name], nil
}

type snapshot struct {
	visited  map[string][]string
	frontier []string
}

// recordingCheckpointer keeps every snapshot in memory
type recordingCheckpointer struct {
	checkpoints  []snapshot
	finals       []snapshot
	onCheckpoint func(visited map[string][]string, frontier []string)
	failAfter    int
}

func (r *recordingCheckpointer) Checkpoint(visited map[string][]string, frontier []string) error {
	if r.failAfter > 0 && len(r.checkpoints) >= r.failAfter {
		return fmt.Errorf("disk full")
	}
	if r.onCheckpoint != nil {
		r.onCheckpoint(visited, frontier)
	}
	r.checkpoints = append(r.checkpoints, snapshot{visited: visited, frontier: frontier})
	return nil
}

func (r *recordingCheckpointer) Final(visited map[string][]string, frontier []string) error {
	r.finals = append(r.finals, snapshot{visited: visited, frontier: frontier})
	return nil
}
