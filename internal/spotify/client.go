// Package spotify resolves song titles to tracks in the Spotify catalog.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	// ErrMissingCredentials is returned when the client ID or secret is empty.
	ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET")
	// ErrNoTrack is returned when a search has no results.
	ErrNoTrack = errors.New("no matching track")
)

// Config holds app credentials for the client-credentials flow.
type Config struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether both credentials are set.
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Client wraps the Spotify API client with catalog lookups.
type Client struct {
	api *spotify.Client
}

// New creates a Client over an already authenticated API client.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// NewClient authenticates with app credentials. Catalog search needs no
// user authorization.
func NewClient(ctx context.Context, cfg Config, opts ...spotify.ClientOption) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrMissingCredentials
	}
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return New(spotify.New(creds.Client(ctx), opts...)), nil
}

// Track is a catalog track.
type Track struct {
	ID     string
	Name   string
	Artist string // comma-separated artist names
	URL    string
}

// SearchTrack returns the best catalog match for query.
func (c *Client) SearchTrack(ctx context.Context, query string) (Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Track{}, ErrNoTrack
	}

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return Track{}, fmt.Errorf("searching tracks: %w", err)
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return Track{}, ErrNoTrack
	}
	return convertTrack(result.Tracks.Tracks[0]), nil
}

// ResolveTrack returns the Spotify URL of the best match for query.
func (c *Client) ResolveTrack(ctx context.Context, query string) (string, error) {
	track, err := c.SearchTrack(ctx, query)
	if err != nil {
		return "", err
	}
	if track.URL == "" {
		return "", ErrNoTrack
	}
	return track.URL, nil
}

func convertTrack(t spotify.FullTrack) Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}
	return Track{
		ID:     t.ID.String(),
		Name:   t.Name,
		Artist: strings.Join(artists, ", "),
		URL:    t.ExternalURLs["spotify"],
	}
}
