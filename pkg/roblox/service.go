package roblox

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/Sternrassler/rbx-client/pkg/cache"
	"github.com/Sternrassler/rbx-client/pkg/logging"
	"github.com/Sternrassler/rbx-client/pkg/pagination"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Requester performs classified API requests. *client.Client implements it.
type Requester interface {
	Get(ctx context.Context, rawURL string, query url.Values) (json.RawMessage, error)
	Post(ctx context.Context, rawURL string, body any) (json.RawMessage, error)
	GetRaw(ctx context.Context, rawURL string, query url.Values) ([]byte, int, error)
}

// collection is the cached form of a per-user collection.
type collection struct {
	items     []json.RawMessage
	truncated bool
}

// Service exposes the Roblox resources used by the gateway.
type Service struct {
	api       Requester
	endpoints Endpoints
	pageSize  int
	caches    map[CollectionKind]*cache.TTL[string, collection]
	inflight  singleflight.Group
	logger    zerolog.Logger
}

type serviceOptions struct {
	endpoints Endpoints
	ttl       time.Duration
	pageSize  int
	clock     func() time.Time
}

// Option configures a Service.
type Option func(*serviceOptions)

// WithEndpoints overrides the API hosts. Empty fields keep their defaults.
func WithEndpoints(e Endpoints) Option {
	return func(o *serviceOptions) { o.endpoints = e }
}

// WithCacheTTL sets the lifetime of cached collections.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *serviceOptions) { o.ttl = ttl }
}

// WithPageSize sets the window size for collection pages.
func WithPageSize(size int) Option {
	return func(o *serviceOptions) { o.pageSize = size }
}

// WithClock replaces the clock used by the collection caches.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.clock = now }
}

// NewService creates a service that sends requests through api.
func NewService(api Requester, opts ...Option) *Service {
	o := serviceOptions{
		ttl:      cache.DefaultTTL,
		pageSize: pagination.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var cacheOpts []cache.Option
	if o.clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(o.clock))
	}

	caches := make(map[CollectionKind]*cache.TTL[string, collection], len(collectionKinds))
	for _, kind := range collectionKinds {
		caches[kind] = cache.NewTTL[string, collection](string(kind), o.ttl, cacheOpts...)
	}

	return &Service{
		api:       api,
		endpoints: o.endpoints.withDefaults(),
		pageSize:  o.pageSize,
		caches:    caches,
		logger:    logging.NewLogger(logging.ComponentRoblox),
	}
}

// Endpoints returns the API hosts in use.
func (s *Service) Endpoints() Endpoints {
	return s.endpoints
}

// dataEnvelope is the common {"data": [...]} response shape.
type dataEnvelope[T any] struct {
	Data []T `json:"data"`
}
