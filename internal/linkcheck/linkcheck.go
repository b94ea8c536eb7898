// Package linkcheck validates the inline links of a content tree. The
// static pass is purely syntactic and always runs as part of a build;
// the live pass issues HTTP requests and is opt-in because it needs the
// network and can be slow.
package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/inkpress-dev/inkpress/internal/content"
	"github.com/inkpress-dev/inkpress/internal/post"
)

// Result is one failed link.
type Result struct {
	Path string
	Link post.Link
	Msg  string
}

func (r Result) String() string {
	return fmt.Sprintf("%s:%d: [%s](%s): %s", r.Path, r.Link.Line, r.Link.Label, r.Link.URL, r.Msg)
}

// Static runs the syntactic pass over every parseable post in the tree:
// labels must be non-empty and every target must be a valid absolute or
// site-relative URL.
func Static(tree *content.Tree) []Result {
	var failures []Result
	for _, entry := range tree.Entries {
		if entry.State == content.StateError {
			continue
		}
		for _, link := range entry.Post.Links() {
			if strings.TrimSpace(link.Label) == "" {
				failures = append(failures, Result{Path: entry.Path, Link: link, Msg: "empty label"})
			}
			if !post.ValidURL(link.URL) {
				failures = append(failures, Result{Path: entry.Path, Link: link, Msg: "invalid url"})
			}
		}
	}
	return failures
}

const (
	defaultConcurrency = 8
	defaultTimeout     = 10 * time.Second
)

// Checker performs live HTTP checks of absolute links.
type Checker struct {
	client      *http.Client
	concurrency int
}

// Option configures a Checker.
type Option func(*Checker)

// WithClient substitutes the HTTP client, mainly for tests.
func WithClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

// WithConcurrency bounds the number of in-flight requests.
func WithConcurrency(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewChecker builds a live link checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:      &http.Client{Timeout: defaultTimeout},
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Live issues a HEAD request for every distinct http(s) link in the
// tree. Servers that reject HEAD get one GET retry. Failures are
// reported per occurrence; the caller decides whether they are fatal.
func (c *Checker) Live(ctx context.Context, tree *content.Tree) ([]Result, error) {
	type occurrence struct {
		path string
		link post.Link
	}
	occurrences := map[string][]occurrence{}
	for _, entry := range tree.Entries {
		if entry.State == content.StateError {
			continue
		}
		for _, link := range entry.Post.Links() {
			if !strings.HasPrefix(link.URL, "http://") && !strings.HasPrefix(link.URL, "https://") {
				continue
			}
			occurrences[link.URL] = append(occurrences[link.URL], occurrence{path: entry.Path, link: link})
		}
	}
	urls := make([]string, 0, len(occurrences))
	for url := range occurrences {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	verdicts := make([]string, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			verdicts[i] = c.probe(ctx, url)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var failures []Result
	for i, url := range urls {
		if verdicts[i] == "" {
			continue
		}
		for _, occ := range occurrences[url] {
			failures = append(failures, Result{Path: occ.path, Link: occ.link, Msg: verdicts[i]})
		}
	}
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].Path != failures[j].Path {
			return failures[i].Path < failures[j].Path
		}
		return failures[i].Link.Line < failures[j].Link.Line
	})
	return failures, nil
}

// probe returns an empty string for a reachable URL and a short failure
// message otherwise.
func (c *Checker) probe(ctx context.Context, url string) string {
	status, err := c.request(ctx, http.MethodHead, url)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = c.request(ctx, http.MethodGet, url)
	}
	if err != nil {
		return err.Error()
	}
	if status >= 400 {
		return fmt.Sprintf("status %d", status)
	}
	return ""
}

func (c *Checker) request(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
