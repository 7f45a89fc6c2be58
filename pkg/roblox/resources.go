package roblox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/rbx-client/pkg/client"
)

// SingleKind names a single-entity lookup.
type SingleKind string

const (
	UserKind  SingleKind = "user"
	GroupKind SingleKind = "group"
	GameKind  SingleKind = "game"
	AssetKind SingleKind = "asset"
)

// ParseSingleKind validates a lookup kind. Plural forms are accepted.
func ParseSingleKind(s string) (SingleKind, error) {
	switch strings.TrimSuffix(s, "s") {
	case "user":
		return UserKind, nil
	case "group":
		return GroupKind, nil
	case "game":
		return GameKind, nil
	case "asset":
		return AssetKind, nil
	}
	return "", fmt.Errorf("unknown resource kind %q", s)
}

// notFound builds a not_found error for lookups whose endpoint answers 200
// with an empty result.
func notFound(format string, args ...any) error {
	return &client.Error{
		Class:   client.ErrorClassNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// FetchSingle returns the raw JSON record of one entity. For games, id is
// a universe id.
func (s *Service) FetchSingle(ctx context.Context, kind SingleKind, id int64) (json.RawMessage, error) {
	switch kind {
	case UserKind:
		return s.api.Get(ctx, fmt.Sprintf("%s/v1/users/%d", s.endpoints.Users, id), nil)

	case GroupKind:
		return s.api.Get(ctx, fmt.Sprintf("%s/v1/groups/%d", s.endpoints.Groups, id), nil)

	case GameKind:
		items, err := s.getData(ctx, s.endpoints.Games+"/v1/games",
			url.Values{"universeIds": {strconv.FormatInt(id, 10)}})
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, notFound("game %d not found", id)
		}
		return items[0], nil

	case AssetKind:
		return s.api.Get(ctx, fmt.Sprintf("%s/v2/assets/%d/details", s.endpoints.Economy, id), nil)
	}

	return nil, fmt.Errorf("unknown resource kind %q", kind)
}

// fetchTyped runs FetchSingle and decodes the record into T.
func fetchTyped[T any](ctx context.Context, s *Service, kind SingleKind, id int64) (T, error) {
	raw, err := s.FetchSingle(ctx, kind, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return client.Decode[T](raw)
}

// User returns a user record.
func (s *Service) User(ctx context.Context, userID int64) (User, error) {
	return fetchTyped[User](ctx, s, UserKind, userID)
}

// Group returns a group record.
func (s *Service) Group(ctx context.Context, groupID int64) (Group, error) {
	return fetchTyped[Group](ctx, s, GroupKind, groupID)
}

// Game returns a universe record.
func (s *Service) Game(ctx context.Context, universeID int64) (Game, error) {
	return fetchTyped[Game](ctx, s, GameKind, universeID)
}

// Asset returns an asset details record.
func (s *Service) Asset(ctx context.Context, assetID int64) (Asset, error) {
	return fetchTyped[Asset](ctx, s, AssetKind, assetID)
}

// ResolveUsername looks up a user id by exact username.
func (s *Service) ResolveUsername(ctx context.Context, username string) (int64, error) {
	raw, err := s.api.Post(ctx, s.endpoints.Users+"/v1/usernames/users", map[string]any{
		"usernames":          []string{username},
		"excludeBannedUsers": false,
	})
	if err != nil {
		return 0, err
	}

	env, err := client.Decode[dataEnvelope[SearchUser]](raw)
	if err != nil {
		return 0, err
	}
	if len(env.Data) == 0 {
		return 0, notFound("user %q not found", username)
	}
	return env.Data[0].ID, nil
}

// ResolveUser accepts a numeric user id or a username (with or without a
// leading "@") and returns the user record.
func (s *Service) ResolveUser(ctx context.Context, input string) (User, error) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "@")
	if input == "" {
		return User{}, fmt.Errorf("%w: empty user reference", client.ErrInvalidRequest)
	}

	if id, err := strconv.ParseInt(input, 10, 64); err == nil && id > 0 {
		return s.User(ctx, id)
	}

	id, err := s.ResolveUsername(ctx, input)
	if err != nil {
		return User{}, err
	}
	return s.User(ctx, id)
}

// SearchUsers runs a keyword user search.
func (s *Service) SearchUsers(ctx context.Context, keyword string, limit int) ([]SearchUser, error) {
	if limit <= 0 {
		limit = 10
	}

	raw, err := s.api.Get(ctx, s.endpoints.Users+"/v1/users/search", url.Values{
		"keyword": {keyword},
		"limit":   {strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, err
	}

	env, err := client.Decode[dataEnvelope[SearchUser]](raw)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// PlaceToUniverse maps a place id to its universe id.
func (s *Service) PlaceToUniverse(ctx context.Context, placeID int64) (int64, error) {
	raw, err := s.api.Get(ctx, fmt.Sprintf("%s/universes/v1/places/%d/universe", s.endpoints.Apis, placeID), nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Decode[struct {
		UniverseID *int64 `json:"universeId"`
	}](raw)
	if err != nil {
		return 0, err
	}
	if resp.UniverseID == nil || *resp.UniverseID == 0 {
		return 0, notFound("no universe for place %d", placeID)
	}
	return *resp.UniverseID, nil
}

// Presence returns the presence of each user.
func (s *Service) Presence(ctx context.Context, userIDs ...int64) ([]Presence, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	raw, err := s.api.Post(ctx, s.endpoints.Presence+"/v1/presence/users", map[string]any{
		"userIds": userIDs,
	})
	if err != nil {
		return nil, err
	}

	resp, err := client.Decode[struct {
		UserPresences []Presence `json:"userPresences"`
	}](raw)
	if err != nil {
		return nil, err
	}
	return resp.UserPresences, nil
}

// count fetches a {"count": n} endpoint, degrading to 0.
func (s *Service) count(ctx context.Context, rawURL string) int64 {
	raw, err := s.api.Get(ctx, rawURL, nil)
	if err != nil {
		s.logger.Debug().Err(err).Str("endpoint", rawURL).Msg("Count lookup failed")
		return 0
	}

	resp, err := client.Decode[struct {
		Count int64 `json:"count"`
	}](raw)
	if err != nil {
		return 0
	}
	return resp.Count
}

// Counts returns the friend, follower and following counts of a user.
// Each counter degrades to 0 independently.
func (s *Service) Counts(ctx context.Context, userID int64) Counts {
	base := fmt.Sprintf("%s/v1/users/%d", s.endpoints.Friends, userID)
	return Counts{
		Friends:    s.count(ctx, base+"/friends/count"),
		Followers:  s.count(ctx, base+"/followers/count"),
		Followings: s.count(ctx, base+"/followings/count"),
	}
}

// thumbnail fetches the first imageUrl of a thumbnails endpoint, degrading
// to "".
func (s *Service) thumbnail(ctx context.Context, path string, query url.Values) string {
	raw, err := s.api.Get(ctx, s.endpoints.Thumbnails+path, query)
	if err != nil {
		s.logger.Debug().Err(err).Str("endpoint", path).Msg("Thumbnail lookup failed")
		return ""
	}

	env, err := client.Decode[dataEnvelope[struct {
		ImageURL string `json:"imageUrl"`
	}]](raw)
	if err != nil || len(env.Data) == 0 {
		return ""
	}
	return env.Data[0].ImageURL
}

func thumbnailQuery(idParam string, id int64, size string) url.Values {
	return url.Values{
		idParam:      {strconv.FormatInt(id, 10)},
		"size":       {size},
		"format":     {"Png"},
		"isCircular": {"false"},
	}
}

// AvatarURL returns the full-body avatar image URL of a user, or "".
func (s *Service) AvatarURL(ctx context.Context, userID int64) string {
	return s.thumbnail(ctx, "/v1/users/avatar", thumbnailQuery("userIds", userID, "420x420"))
}

// HeadshotURL returns the headshot image URL of a user, or "".
func (s *Service) HeadshotURL(ctx context.Context, userID int64) string {
	return s.thumbnail(ctx, "/v1/users/avatar-headshot", thumbnailQuery("userIds", userID, "420x420"))
}

// GameIcon returns the icon URL of a universe, or "".
func (s *Service) GameIcon(ctx context.Context, universeID int64) string {
	return s.thumbnail(ctx, "/v1/games/icons", thumbnailQuery("universeIds", universeID, "512x512"))
}

// AssetThumbnail returns the thumbnail URL of an asset, or "".
func (s *Service) AssetThumbnail(ctx context.Context, assetID int64) string {
	query := thumbnailQuery("assetIds", assetID, "420x420")
	query.Del("isCircular")
	return s.thumbnail(ctx, "/v1/assets", query)
}
