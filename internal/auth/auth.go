// Package auth obtains app-only Spotify API access with the client
// credentials flow. Catalog import reads public playlists, so no user
// authorization is needed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
	ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")
)

// Authenticator issues authenticated Spotify clients.
type Authenticator struct {
	config *clientcredentials.Config
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTokenURL overrides the Spotify accounts token endpoint.
func WithTokenURL(url string) Option {
	return func(a *Authenticator) {
		a.config.TokenURL = url
	}
}

// New creates an Authenticator for the given app credentials.
// Returns ErrMissingCredentials if either value is blank.
func New(clientID, clientSecret string, opts ...Option) (*Authenticator, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	a := &Authenticator{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Authenticate requests an app token and returns a Spotify client that
// refreshes it as needed. Rate-limited requests are retried.
func (a *Authenticator) Authenticate(ctx context.Context, opts ...spotify.ClientOption) (*spotify.Client, error) {
	ts := a.config.TokenSource(ctx)
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("requesting app token: %w", err)
	}

	opts = append([]spotify.ClientOption{spotify.WithRetry(true)}, opts...)
	return spotify.New(oauth2.NewClient(ctx, ts), opts...), nil
}
