package roblox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Sternrassler/rbx-client/pkg/cache"
	"github.com/Sternrassler/rbx-client/pkg/client"
	"github.com/Sternrassler/rbx-client/pkg/pagination"
	"golang.org/x/sync/singleflight"
)

// CollectionKind names a cached per-user collection.
type CollectionKind string

const (
	Friends CollectionKind = "friends"
	Groups  CollectionKind = "groups"
	Badges  CollectionKind = "badges"
)

var collectionKinds = []CollectionKind{Friends, Groups, Badges}

// ParseCollectionKind validates a collection name.
func ParseCollectionKind(s string) (CollectionKind, error) {
	for _, kind := range collectionKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// badgePageLimit is the page size requested from the badges endpoint.
const badgePageLimit = 25

// CollectionPage is one window over a cached per-user collection.
type CollectionPage struct {
	Kind   CollectionKind `json:"kind"`
	UserID int64          `json:"user_id"`

	// Truncated is set when the cursor walk stopped at the page ceiling
	// before the collection ended.
	Truncated bool `json:"truncated,omitempty"`

	pagination.Window[json.RawMessage]
}

// FetchUserCollection returns page (zero-based, clamped) of a user's
// collection. The whole collection is fetched on a cache miss and reused for
// the cache TTL; concurrent misses for the same user share one fetch, which
// keeps running when the caller that started it goes away.
func (s *Service) FetchUserCollection(ctx context.Context, kind CollectionKind, userID int64, page int) (CollectionPage, error) {
	ttl, ok := s.caches[kind]
	if !ok {
		return CollectionPage{}, fmt.Errorf("unknown collection %q", kind)
	}

	key := cache.Key{Kind: string(kind), ID: userID}.String()

	coll, hit := ttl.Get(key)
	if !hit {
		// The shared fetch outlives any single caller; each call is still
		// bounded by the client's per-attempt timeout.
		fetchCtx := context.WithoutCancel(ctx)
		ch := s.inflight.DoChan(key, func() (any, error) {
			coll, err := s.fetchCollection(fetchCtx, kind, userID)
			if err != nil {
				return collection{}, err
			}
			ttl.Set(key, coll)
			return coll, nil
		})

		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			return CollectionPage{}, fmt.Errorf("fetch %s of user %d: %w", kind, userID, ctx.Err())
		}
		if res.Err != nil {
			return CollectionPage{}, fmt.Errorf("fetch %s of user %d: %w", kind, userID, res.Err)
		}
		coll = res.Val.(collection)
		shared := res.Shared

		s.logger.Debug().
			Str("cache", string(kind)).
			Str("key", key).
			Int("items", len(coll.items)).
			Bool("shared", shared).
			Msg("Collection fetched")
	}

	return CollectionPage{
		Kind:      kind,
		UserID:    userID,
		Truncated: coll.truncated,
		Window:    pagination.Paginate(coll.items, page, s.pageSize),
	}, nil
}

// fetchCollection loads a full collection from the API.
func (s *Service) fetchCollection(ctx context.Context, kind CollectionKind, userID int64) (collection, error) {
	switch kind {
	case Friends:
		items, err := s.getData(ctx, fmt.Sprintf("%s/v1/users/%d/friends", s.endpoints.Friends, userID), nil)
		return collection{items: items}, err

	case Groups:
		items, err := s.getData(ctx, fmt.Sprintf("%s/v1/users/%d/groups/roles", s.endpoints.Groups, userID), nil)
		return collection{items: items}, err

	case Badges:
		endpoint := fmt.Sprintf("%s/v1/users/%d/badges", s.endpoints.Badges, userID)
		fetch := pagination.PageFunc[json.RawMessage](func(ctx context.Context, cursor string) (pagination.Page[json.RawMessage], error) {
			query := url.Values{
				"limit":     {fmt.Sprint(badgePageLimit)},
				"sortOrder": {"Desc"},
			}
			if cursor != "" {
				query.Set("cursor", cursor)
			}
			raw, err := s.api.Get(ctx, endpoint, query)
			if err != nil {
				return pagination.Page[json.RawMessage]{}, err
			}
			return client.Decode[pagination.Page[json.RawMessage]](raw)
		})

		items, state, err := pagination.FetchAll[json.RawMessage](ctx, fetch)
		if err != nil {
			return collection{}, err
		}
		return collection{items: items, truncated: state.Truncated}, nil
	}

	return collection{}, fmt.Errorf("unknown collection %q", kind)
}

// getData fetches a {"data": [...]} payload and returns its items.
func (s *Service) getData(ctx context.Context, rawURL string, query url.Values) ([]json.RawMessage, error) {
	raw, err := s.api.Get(ctx, rawURL, query)
	if err != nil {
		return nil, err
	}
	env, err := client.Decode[dataEnvelope[json.RawMessage]](raw)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// DecodeItems decodes the raw items of a page into T.
func DecodeItems[T any](items []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, raw := range items {
		v, err := client.Decode[T](raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
