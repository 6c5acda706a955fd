package catalog

import "context"

// Client fetches catalog pages from the backend. Implementations must be safe
// for concurrent use; the engine serializes its own calls but makes no promise
// on behalf of other callers.
type Client interface {
	FetchPage(ctx context.Context, query PageQuery) (Page, error)
}
