package catalogmock

import (
	"context"
	"sync"

	"github.com/dinver/appcore/internal/catalog"
	"github.com/dinver/appcore/internal/serviceerr"
)

type ClientOption func(*Client)

// Client is an in-memory catalog client keyed by search term and page number.
type Client struct {
	mu    sync.Mutex
	pages map[string]map[int]catalog.Page
	calls []catalog.PageQuery

	fetchErr error
	gate     func(catalog.PageQuery)
}

// WithPage registers the page served for the given term and page number.
func WithPage(term string, number int, page catalog.Page) ClientOption {
	return func(c *Client) {
		if c.pages[term] == nil {
			c.pages[term] = make(map[int]catalog.Page)
		}
		c.pages[term][number] = page
	}
}

func WithFetchError(err error) ClientOption {
	return func(c *Client) { c.fetchErr = err }
}

// WithGate installs a hook invoked before each fetch returns. Tests use it to
// hold a response in flight while driving the engine from another goroutine.
func WithGate(gate func(catalog.PageQuery)) ClientOption {
	return func(c *Client) { c.gate = gate }
}

var _ = catalog.Client(&Client{})

func NewClient(opts ...ClientOption) *Client {
	c := &Client{pages: make(map[string]map[int]catalog.Page)}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) FetchPage(_ context.Context, query catalog.PageQuery) (catalog.Page, error) {
	c.mu.Lock()
	c.calls = append(c.calls, query)
	gate := c.gate
	c.mu.Unlock()

	if gate != nil {
		gate(query)
	}

	if c.fetchErr != nil {
		return catalog.Page{}, c.fetchErr
	}
	if page, ok := c.pages[query.SearchTerm][query.PageNumber]; ok {
		return page, nil
	}
	return catalog.Page{}, serviceerr.ErrNotFound
}

// Calls returns every query received so far, in order.
func (c *Client) Calls() []catalog.PageQuery {
	c.mu.Lock()
	defer c.mu.Unlock()

	calls := make([]catalog.PageQuery, len(c.calls))
	copy(calls, c.calls)
	return calls
}
