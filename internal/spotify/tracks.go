package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// FetchPlaylistTracks retrieves every track of a playlist. Episodes and local
// files are skipped.
func (c *Client) FetchPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	var tracks []Track

	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(maxTracksPerRequest))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist items: %w", err)
	}

	for {
		for _, item := range page.Items {
			if item.IsLocal || item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, convertTrack(*item.Track.Track))
		}

		c.log.Debug("fetched playlist page", "playlist", playlistID, "tracks", len(tracks))

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	c.log.Info("fetched playlist", "playlist", playlistID, "tracks", len(tracks))
	return tracks, nil
}

// convertTrack converts a Spotify FullTrack to a Track.
func convertTrack(ft spotify.FullTrack) Track {
	artists := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}

	// Spotify lists album images widest first.
	var image string
	if len(ft.Album.Images) > 0 {
		image = ft.Album.Images[0].URL
	}

	return Track{
		ID:          ft.ID.String(),
		Name:        ft.Name,
		Artist:      strings.Join(artists, ", "),
		Image:       image,
		PreviewURL:  ft.PreviewURL,
		DurationSec: (int(ft.Duration) + 500) / 1000,
		Popularity:  int(ft.Popularity),
	}
}
