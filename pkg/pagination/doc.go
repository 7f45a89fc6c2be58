// Package pagination provides cursor-driven fetching of server-paged
// collections and window slicing of already-fetched collections.
//
// Cursor strategy: the remote API returns a page of data plus an opaque
// nextPageCursor. FetchAll follows the cursor until it is empty or MaxPages
// pages have been fetched, whichever comes first.
//
//	fetch := pagination.PageFunc[Badge](func(ctx context.Context, cursor string) (pagination.Page[Badge], error) {
//		return fetchBadgePage(ctx, userID, cursor)
//	})
//	badges, state, err := pagination.FetchAll(ctx, fetch)
//	// state.Truncated is true when the ceiling stopped the fetch
//
// Window strategy: Paginate slices a cached collection into fixed-size pages
// for display. It never performs I/O.
//
//	w := pagination.Paginate(friends, page, pagination.DefaultPageSize)
//	if w.HasNext() {
//		next := w.NextPage()
//	}
//
// Out-of-range page indexes are clamped rather than rejected, so previous
// and next transitions can never leave [0, PageCount-1].
package pagination
