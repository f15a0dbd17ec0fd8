// Package spotify provides a wrapper around the Spotify Web API for catalog
// import.
package spotify

import (
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/moodtunes/internal/logger"
)

const maxTracksPerRequest = 100

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
	log *logger.Logger
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, log *logger.Logger) *Client {
	return &Client{api: api, log: logger.OrNop(log)}
}
