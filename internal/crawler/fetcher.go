package crawler

import (
	"context"
	"strings"

	"github.com/alvmarrod/sidebar-weaver/internal/reddit"
	"github.com/sirupsen/logrus"
)

// DescriptionSource reads the two free-text descriptions of a community.
// A nil result means the community has no such text.
type DescriptionSource interface {
	FullDescription(ctx context.Context, name string) (*string, error)
	PublicDescription(ctx context.Context, name string) (*string, error)
}

// Fetcher turns a community name into the text to scan for references
type Fetcher struct {
	source DescriptionSource
}

// NewFetcher creates a fetcher over the given source
func NewFetcher(source DescriptionSource) *Fetcher {
	return &Fetcher{source: source}
}

// Fetch returns the full and public descriptions joined by a space.
// Access failures are logged and reported as ok=false with a nil error;
// any other error is returned.
func (f *Fetcher) Fetch(ctx context.Context, name string) (text string, ok bool, err error) {
	name = strings.ToLower(name)

	full, err := f.source.FullDescription(ctx, name)
	if err != nil {
		return f.handleError(name, err)
	}

	public, err := f.source.PublicDescription(ctx, name)
	if err != nil {
		return f.handleError(name, err)
	}

	return deref(full) + " " + deref(public), true, nil
}

func (f *Fetcher) handleError(name string, err error) (string, bool, error) {
	if reddit.IsAccessError(err) {
		logrus.Warnf("%s: %v", name, err)
		return "", false, nil
	}
	return "", false, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
