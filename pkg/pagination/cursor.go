package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/rbx-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MaxPages is the hard ceiling on pages followed by one cursor fetch.
const MaxPages = 5

var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbx_pagination_pages_total",
		Help: "Total pages fetched by cursor pagination",
	})

	truncatedFetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbx_pagination_truncated_total",
		Help: "Total cursor fetches stopped by the page ceiling",
	})
)

// Page is one server page of a cursor-paginated collection.
type Page[T any] struct {
	Data           []T    `json:"data"`
	NextPageCursor string `json:"nextPageCursor"`
}

// PageFetcher fetches a single page. An empty cursor requests the first page.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, cursor string) (Page[T], error)
}

// PageFunc adapts a function to PageFetcher.
type PageFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// FetchPage calls f.
func (f PageFunc[T]) FetchPage(ctx context.Context, cursor string) (Page[T], error) {
	return f(ctx, cursor)
}

// State describes how a cursor fetch ended.
type State struct {
	// Pages is the number of pages fetched
	Pages int

	// Cursor is the continuation token left when the fetch stopped
	// (empty when the collection was exhausted)
	Cursor string

	// Truncated is true when the page ceiling stopped the fetch
	Truncated bool
}

// FetchAll follows continuation tokens, accumulating each page's data, until
// the server returns no token or MaxPages pages have been fetched. Any page
// error aborts the fetch; no partial result is returned.
func FetchAll[T any](ctx context.Context, fetcher PageFetcher[T]) ([]T, State, error) {
	start := time.Now()

	var (
		items []T
		state State
	)

	for state.Pages < MaxPages {
		page, err := fetcher.FetchPage(ctx, state.Cursor)
		if err != nil {
			return nil, state, fmt.Errorf("fetch page %d: %w", state.Pages+1, err)
		}

		state.Pages++
		pagesFetchedTotal.Inc()
		items = append(items, page.Data...)
		state.Cursor = page.NextPageCursor

		if state.Cursor == "" {
			break
		}
	}

	if state.Cursor != "" {
		state.Truncated = true
		truncatedFetchesTotal.Inc()
	}

	logger := logging.NewLogger(logging.ComponentPagination)
	logger.Debug().
		Int("pages", state.Pages).
		Int("items", len(items)).
		Bool("truncated", state.Truncated).
		Dur("duration", time.Since(start)).
		Msg("Cursor fetch complete")

	return items, state, nil
}
