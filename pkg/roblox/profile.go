package roblox

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Profile aggregates a user record with its decorations.
type Profile struct {
	User        User      `json:"user"`
	DisplayName string    `json:"display_name"`
	Counts      Counts    `json:"counts"`
	Presence    *Presence `json:"presence,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	HeadshotURL string    `json:"headshot_url,omitempty"`
	GroupCount  int       `json:"group_count"`
}

// Profile fetches a user's profile. The user record is mandatory; counts,
// presence, thumbnails and group count are fetched concurrently and degrade
// to zero values on failure.
func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	var p Profile

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := s.User(gctx, userID)
		if err != nil {
			return err
		}
		p.User = user
		p.DisplayName = user.DisplayName()
		return nil
	})

	g.Go(func() error {
		p.Counts = s.Counts(gctx, userID)
		return nil
	})

	g.Go(func() error {
		presences, err := s.Presence(gctx, userID)
		if err != nil {
			s.logger.Debug().Err(err).Int64("user_id", userID).Msg("Presence lookup failed")
			return nil
		}
		if len(presences) > 0 {
			p.Presence = &presences[0]
		}
		return nil
	})

	g.Go(func() error {
		p.AvatarURL = s.AvatarURL(gctx, userID)
		return nil
	})

	g.Go(func() error {
		p.HeadshotURL = s.HeadshotURL(gctx, userID)
		return nil
	})

	g.Go(func() error {
		page, err := s.FetchUserCollection(gctx, Groups, userID, 0)
		if err != nil {
			s.logger.Debug().Err(err).Int64("user_id", userID).Msg("Group lookup failed")
			return nil
		}
		p.GroupCount = page.Total
		return nil
	})

	if err := g.Wait(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
