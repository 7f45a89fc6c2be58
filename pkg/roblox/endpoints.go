package roblox

// Endpoints holds the base URL of every API host the service talks to.
// Tests point all of them at one mock server.
type Endpoints struct {
	Users         string
	Thumbnails    string
	Friends       string
	Groups        string
	Badges        string
	Presence      string
	Apis          string
	Games         string
	Economy       string
	AssetDelivery string
}

// DefaultEndpoints returns the production hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Users:         "https://users.roblox.com",
		Thumbnails:    "https://thumbnails.roblox.com",
		Friends:       "https://friends.roblox.com",
		Groups:        "https://groups.roblox.com",
		Badges:        "https://badges.roblox.com",
		Presence:      "https://presence.roblox.com",
		Apis:          "https://apis.roblox.com",
		Games:         "https://games.roblox.com",
		Economy:       "https://economy.roblox.com",
		AssetDelivery: "https://assetdelivery.roblox.com",
	}
}

// SingleHost returns endpoints that all point at base.
func SingleHost(base string) Endpoints {
	return Endpoints{
		Users:         base,
		Thumbnails:    base,
		Friends:       base,
		Groups:        base,
		Badges:        base,
		Presence:      base,
		Apis:          base,
		Games:         base,
		Economy:       base,
		AssetDelivery: base,
	}
}

// withDefaults fills empty fields from DefaultEndpoints.
func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&e.Users, d.Users)
	fill(&e.Thumbnails, d.Thumbnails)
	fill(&e.Friends, d.Friends)
	fill(&e.Groups, d.Groups)
	fill(&e.Badges, d.Badges)
	fill(&e.Presence, d.Presence)
	fill(&e.Apis, d.Apis)
	fill(&e.Games, d.Games)
	fill(&e.Economy, d.Economy)
	fill(&e.AssetDelivery, d.AssetDelivery)
	return e
}
