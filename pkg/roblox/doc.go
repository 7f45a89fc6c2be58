// Package roblox provides typed accessors for the public Roblox web APIs on
// top of the request executor in pkg/client.
//
// Per-user collections (friends, groups, badges) are fetched once, held in a
// TTL cache and served page by page:
//
//	svc := roblox.NewService(c)
//	page, err := svc.FetchUserCollection(ctx, roblox.Friends, 156, 0)
//	if err != nil {
//	    return err
//	}
//	for _, raw := range page.Items { ... }
//
// Single-entity lookups (users, groups, games, assets) are not cached.
// Decoration lookups such as counts and thumbnail URLs are best-effort: a
// failure degrades to a zero value instead of an error.
package roblox
