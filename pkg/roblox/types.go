package roblox

import "time"

// User is a users.roblox.com user record.
type User struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	DisplayNameField string    `json:"displayName,omitempty"`
	Description      string    `json:"description,omitempty"`
	Created          time.Time `json:"created,omitempty"`
	IsBanned         bool      `json:"isBanned,omitempty"`
	HasVerifiedBadge bool      `json:"hasVerifiedBadge,omitempty"`
}

// DisplayName returns displayName, falling back to name.
func (u User) DisplayName() string {
	return firstNonEmpty(u.DisplayNameField, u.Name)
}

// Friend is one entry of a user's friends list. Newer API versions return
// only the id; names are then empty.
type Friend struct {
	ID               int64  `json:"id"`
	Name             string `json:"name,omitempty"`
	DisplayNameField string `json:"displayName,omitempty"`
	IsOnline         bool   `json:"isOnline,omitempty"`
}

// DisplayName returns displayName, falling back to name.
func (f Friend) DisplayName() string {
	return firstNonEmpty(f.DisplayNameField, f.Name)
}

// GroupRef is the short group form embedded in other records.
type GroupRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	MemberCount int64  `json:"memberCount,omitempty"`
}

// Role is a group role.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// GroupMembership is one entry of a user's groups.
type GroupMembership struct {
	Group GroupRef `json:"group"`
	Role  Role     `json:"role"`
}

// GroupOwner is the owner of a group.
type GroupOwner struct {
	UserID           int64  `json:"userId"`
	Username         string `json:"username"`
	DisplayNameField string `json:"displayName,omitempty"`
}

// DisplayName returns displayName, falling back to username.
func (o GroupOwner) DisplayName() string {
	return firstNonEmpty(o.DisplayNameField, o.Username)
}

// Group is a groups.roblox.com group record.
type Group struct {
	ID                 int64       `json:"id"`
	Name               string      `json:"name"`
	Description        string      `json:"description,omitempty"`
	Owner              *GroupOwner `json:"owner,omitempty"`
	MemberCount        int64       `json:"memberCount"`
	IsLocked           bool        `json:"isLocked,omitempty"`
	PublicEntryAllowed bool        `json:"publicEntryAllowed,omitempty"`
	HasVerifiedBadge   bool        `json:"hasVerifiedBadge,omitempty"`
}

// Badge is one entry of a user's badges.
type Badge struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
	Statistics  struct {
		AwardedCount int64 `json:"awardedCount"`
	} `json:"statistics"`
}

// Creator is the creator of a game.
type Creator struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Game is a games.roblox.com universe record.
type Game struct {
	ID             int64     `json:"id"`
	RootPlaceID    int64     `json:"rootPlaceId"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Creator        Creator   `json:"creator"`
	Price          *int64    `json:"price,omitempty"`
	Playing        int64     `json:"playing"`
	Visits         int64     `json:"visits"`
	MaxPlayers     int       `json:"maxPlayers"`
	FavoritedCount int64     `json:"favoritedCount"`
	Genre          string    `json:"genre,omitempty"`
	Created        time.Time `json:"created,omitempty"`
	Updated        time.Time `json:"updated,omitempty"`
}

// AssetCreator is the creator of an asset.
type AssetCreator struct {
	ID          int64  `json:"Id"`
	Name        string `json:"Name"`
	CreatorType string `json:"CreatorType"`
}

// Asset is an economy.roblox.com asset details record.
type Asset struct {
	AssetID      int64        `json:"AssetId"`
	ProductID    int64        `json:"ProductId"`
	Name         string       `json:"Name"`
	Description  string       `json:"Description,omitempty"`
	AssetTypeID  int          `json:"AssetTypeId"`
	Creator      AssetCreator `json:"Creator"`
	PriceInRobux *int64       `json:"PriceInRobux,omitempty"`
	Sales        int64        `json:"Sales"`
	IsForSale    bool         `json:"IsForSale"`
	IsLimited    bool         `json:"IsLimited"`
	Created      time.Time    `json:"Created,omitempty"`
	Updated      time.Time    `json:"Updated,omitempty"`
}

// TypeName returns the asset type name, or "Unknown".
func (a Asset) TypeName() string {
	return AssetTypeName(a.AssetTypeID)
}

// PresenceType is the online state of a user.
type PresenceType int

const (
	PresenceOffline PresenceType = iota
	PresenceOnline
	PresenceInGame
	PresenceInStudio
	PresenceInvisible
)

// String implements fmt.Stringer.
func (p PresenceType) String() string {
	switch p {
	case PresenceOffline:
		return "offline"
	case PresenceOnline:
		return "online"
	case PresenceInGame:
		return "in_game"
	case PresenceInStudio:
		return "in_studio"
	case PresenceInvisible:
		return "invisible"
	default:
		return "unknown"
	}
}

// Presence is one entry of a presence lookup.
type Presence struct {
	UserID           int64        `json:"userId"`
	UserPresenceType PresenceType `json:"userPresenceType"`
	LastLocation     string       `json:"lastLocation,omitempty"`
	PlaceID          *int64       `json:"placeId,omitempty"`
	RootPlaceID      *int64       `json:"rootPlaceId,omitempty"`
	UniverseID       *int64       `json:"universeId,omitempty"`
	GameID           string       `json:"gameId,omitempty"`
	LastOnline       string       `json:"lastOnline,omitempty"`
}

// SearchUser is one user search hit.
type SearchUser struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	DisplayNameField  string   `json:"displayName,omitempty"`
	HasVerifiedBadge  bool     `json:"hasVerifiedBadge,omitempty"`
	PreviousUsernames []string `json:"previousUsernames,omitempty"`
}

// DisplayName returns displayName, falling back to name.
func (u SearchUser) DisplayName() string {
	return firstNonEmpty(u.DisplayNameField, u.Name)
}

// Counts holds the social counters of a user.
type Counts struct {
	Friends    int64 `json:"friends"`
	Followers  int64 `json:"followers"`
	Followings int64 `json:"followings"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
