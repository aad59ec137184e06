package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL serves anonymous requests
	DefaultBaseURL = "https://www.reddit.com"
	// OAuthBaseURL serves requests carrying a bearer token
	OAuthBaseURL = "https://oauth.reddit.com"
)

// Options configures a Client
type Options struct {
	BaseURL        string
	UserAgent      string
	RequestTimeout time.Duration
	RequestDelay   time.Duration
	// Tokens is nil for anonymous access
	Tokens *TokenSource
}

// about mirrors the subset of the t5 "about" document the crawler reads
type about struct {
	Kind string `json:"kind"`
	Data struct {
		DisplayName       string  `json:"display_name"`
		Description       *string `json:"description"`
		PublicDescription *string `json:"public_description"`
	} `json:"data"`
}

// Client reads community descriptions from the platform's about endpoint
type Client struct {
	collector *colly.Collector
	baseURL   string
	tokens    *TokenSource

	// last successfully fetched document, so that reading both
	// descriptions of one community costs a single request
	cachedName  string
	cachedAbout *about
}

// NewClient creates a client backed by a synchronous colly collector
func NewClient(opts Options) (*Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
		if opts.Tokens != nil {
			baseURL = OAuthBaseURL
		}
	}

	collector := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)

	if opts.RequestTimeout > 0 {
		collector.SetRequestTimeout(opts.RequestTimeout)
	}

	if opts.RequestDelay > 0 {
		if err := collector.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: 1,
			Delay:       opts.RequestDelay,
		}); err != nil {
			return nil, fmt.Errorf("failed to set request limit: %w", err)
		}
	}

	// A redirect away from the about document means the community does not
	// exist under that name; surface it instead of following it
	collector.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	})

	return &Client{
		collector: collector,
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokens:    opts.Tokens,
	}, nil
}

// FullDescription returns the community's sidebar text, nil when absent
func (c *Client) FullDescription(ctx context.Context, name string) (*string, error) {
	doc, err := c.fetchAbout(ctx, name)
	if err != nil {
		return nil, err
	}

	c.cachedName = name
	c.cachedAbout = doc
	return doc.Data.Description, nil
}

// PublicDescription returns the community's short description, nil when absent
func (c *Client) PublicDescription(ctx context.Context, name string) (*string, error) {
	if c.cachedAbout != nil && c.cachedName == name {
		doc := c.cachedAbout
		c.cachedName, c.cachedAbout = "", nil
		return doc.Data.PublicDescription, nil
	}

	doc, err := c.fetchAbout(ctx, name)
	if err != nil {
		return nil, err
	}
	return doc.Data.PublicDescription, nil
}

// aboutURL builds the about document URL for a community
func (c *Client) aboutURL(name string) string {
	return fmt.Sprintf("%s/r/%s/about.json?raw_json=1", c.baseURL, url.PathEscape(name))
}

// fetchAbout performs one request and decodes the about document
func (c *Client) fetchAbout(ctx context.Context, name string) (*about, error) {
	var token string
	if c.tokens != nil {
		t, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}

	collector := c.collector.Clone()
	collector.Context = ctx

	var (
		body     []byte
		fetchErr error
	)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
		if token != "" {
			r.Headers.Set("Authorization", "bearer "+token)
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r == nil || r.StatusCode == 0 {
			fetchErr = err
			return
		}

		location := ""
		if r.Headers != nil {
			location = r.Headers.Get("Location")
		}
		if statusErr := classifyStatus(name, r.StatusCode, location); statusErr != nil {
			fetchErr = statusErr
			return
		}
		fetchErr = err
	})

	target := c.aboutURL(name)
	start := time.Now()
	visitErr := collector.Visit(target)
	logrus.Debugf("GET %s took %v", target, time.Since(start))

	if fetchErr != nil {
		if IsAccessError(fetchErr) {
			return nil, fetchErr
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", name, fetchErr)
	}
	if visitErr != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", name, visitErr)
	}

	var doc about
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse about document for %s: %w", name, err)
	}

	return &doc, nil
}
