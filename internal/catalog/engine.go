package catalog

import (
	"context"
	"fmt"
	"sync"

	slogctx "github.com/veqryn/slog-context"
)

// Engine owns the paginated, search-scoped restaurant list. All state moves
// through its exported operations; network completions that outlived their
// search series are discarded, never merged.
//
// Methods block for the duration of the underlying fetch. Callers that need
// the calls off their own goroutine run them in one; the engine tolerates any
// interleaving because the lock is dropped across the network call and every
// completion re-checks its series before applying.
type Engine struct {
	client Client

	mu                sync.Mutex
	generation        uint64
	term              string
	items             []RestaurantSummary
	seen              map[string]struct{}
	liked             map[string]struct{}
	lastRequestedPage int
	totalPages        int
	loading           bool
	err               error
}

// Snapshot is a coherent point-in-time view of the engine state for
// presentation layers.
type Snapshot struct {
	Items             []RestaurantSummary
	SearchTerm        string
	LastRequestedPage int
	TotalPages        int
	Loading           bool
	Liked             map[string]bool
	Err               error
}

func NewEngine(client Client) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("catalog client must not be nil")
	}
	if err := initMeters(); err != nil {
		return nil, fmt.Errorf("initialising catalog meters: %w", err)
	}

	return &Engine{
		client: client,
		seen:   make(map[string]struct{}),
		liked:  make(map[string]struct{}),
	}, nil
}

// SetSearchTerm starts a new search series. Any in-flight fetch for the old
// term keeps running but its eventual result is discarded. The first series is
// started even when the term equals the zero value, so a fresh engine loads
// its initial page through SetSearchTerm(ctx, "").
func (e *Engine) SetSearchTerm(ctx context.Context, term string) error {
	e.mu.Lock()
	if e.generation > 0 && term == e.term {
		e.mu.Unlock()
		return nil
	}
	e.term = term
	gen := e.beginSeriesLocked()
	e.mu.Unlock()

	slogctx.Debug(ctx, "Starting a new search series", "term", term)

	return e.fetch(ctx, gen, 1, term)
}

// Refresh restarts the current series from page one, replacing loaded items on
// success.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	term := e.term
	gen := e.beginSeriesLocked()
	e.mu.Unlock()

	return e.fetch(ctx, gen, 1, term)
}

// beginSeriesLocked resets the pagination state for a new series and marks a
// page-one fetch as in flight. Callers hold the lock.
func (e *Engine) beginSeriesLocked() uint64 {
	e.generation++
	e.items = nil
	e.seen = make(map[string]struct{})
	e.lastRequestedPage = 0
	e.totalPages = 0
	e.err = nil
	e.loading = true

	return e.generation
}

// RequestNextPage fetches the page after the last one merged. It is a no-op
// while a fetch is in flight or once the series is exhausted, which makes it
// safe to drive from rapid scroll events.
func (e *Engine) RequestNextPage(ctx context.Context) error {
	e.mu.Lock()
	if e.loading || e.lastRequestedPage >= e.totalPages {
		e.mu.Unlock()
		return nil
	}
	e.loading = true
	gen, next, term := e.generation, e.lastRequestedPage+1, e.term
	e.mu.Unlock()

	return e.fetch(ctx, gen, next, term)
}

func (e *Engine) fetch(ctx context.Context, gen uint64, pageNumber int, term string) error {
	page, err := e.client.FetchPage(ctx, PageQuery{PageNumber: pageNumber, SearchTerm: term})

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		// A newer series owns the engine now, including the loading flag it
		// set for its own page-one fetch.
		staleDiscards.Add(ctx, 1)
		slogctx.Debug(ctx, "Discarding a stale page response", "term", term, "page", pageNumber)
		return nil
	}

	e.loading = false
	if err != nil {
		e.err = fmt.Errorf("fetching page %d: %w", pageNumber, err)
		fetchFailures.Add(ctx, 1)
		slogctx.Error(ctx, "Failed to fetch a catalog page", "term", term, "page", pageNumber, "error", err)
		return e.err
	}

	e.err = nil
	for _, r := range page.Restaurants {
		if _, ok := e.seen[r.ID]; ok {
			continue
		}
		e.seen[r.ID] = struct{}{}
		e.items = append(e.items, r)
	}
	e.totalPages = page.TotalPages
	e.lastRequestedPage = pageNumber
	pagesFetched.Add(ctx, 1)

	return nil
}

// ToggleLiked flips the client-local liked marker for id. Two toggles restore
// the original state.
func (e *Engine) ToggleLiked(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.liked[id]; ok {
		delete(e.liked, id)
	} else {
		e.liked[id] = struct{}{}
	}
}

// Liked reports whether id carries the liked marker.
func (e *Engine) Liked(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.liked[id]
	return ok
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]RestaurantSummary, len(e.items))
	copy(items, e.items)

	liked := make(map[string]bool, len(e.liked))
	for id := range e.liked {
		liked[id] = true
	}

	return Snapshot{
		Items:             items,
		SearchTerm:        e.term,
		LastRequestedPage: e.lastRequestedPage,
		TotalPages:        e.totalPages,
		Loading:           e.loading,
		Liked:             liked,
		Err:               e.err,
	}
}
