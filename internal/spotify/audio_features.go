package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// FetchAudioFeatures retrieves audio features for the given track IDs, keyed
// by track ID. Batches requests to max 100 tracks per request per Spotify API
// limits. Tracks without available audio features are absent from the map.
func (c *Client) FetchAudioFeatures(ctx context.Context, trackIDs []string) (map[string]AudioFeatures, error) {
	out := make(map[string]AudioFeatures, len(trackIDs))
	if len(trackIDs) == 0 {
		return out, nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	total := len(ids)
	for i := 0; i < total; i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, total)

		c.log.Debug("fetching audio features", "from", i+1, "to", end, "total", total)

		features, err := c.api.GetAudioFeatures(ctx, ids[i:end]...)
		if err != nil {
			return nil, fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue // Track has no audio features
			}
			out[f.ID.String()] = convertAudioFeatures(f)
		}
	}

	c.log.Info("fetched audio features", "requested", total, "found", len(out))
	return out, nil
}

func convertAudioFeatures(f *spotify.AudioFeatures) AudioFeatures {
	return AudioFeatures{
		Energy:       f.Energy,
		Valence:      f.Valence,
		Danceability: f.Danceability,
		Acousticness: f.Acousticness,
	}
}
