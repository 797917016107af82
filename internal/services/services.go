// package services defines interface Service for interacting with the streaming API
package services

import (
	"context"

	"github.com/nvallee/radar/internal/models"
	"golang.org/x/oauth2"
)

// Service defines the streaming-service operations the sync pipeline needs:
// catalog lookups for roster artists and read/write access to the managed playlists.
type Service interface {
	// Authenticate performs OAuth or token authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// PlaylistTrackIDs retrieves the IDs of every track currently in a playlist, in order.
	PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error)

	// ArtistAlbums retrieves an artist's albums and singles.
	ArtistAlbums(ctx context.Context, artistID string) ([]Album, error)

	// AlbumTracks retrieves the tracks on an album.
	AlbumTracks(ctx context.Context, albumID string) ([]AlbumTrack, error)

	// AddPlaylistTracks adds tracks to a playlist at the given position.
	AddPlaylistTracks(ctx context.Context, playlistID string, uris []string, position int) error

	// RemovePlaylistTracks removes all occurrences of the given tracks from a playlist.
	RemovePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService is implemented by services that authenticate with an OAuth2 authorization-code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the user-facing authorization URL for the given state token.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 config for the callback handler.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate authenticates with a previously obtained token, refreshing it as needed.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// Album is an artist release as reported by the catalog.
//
// ReleaseDate and Precision are kept raw; [models.ParseReleaseDate] normalizes them.
type Album struct {
	ID          string
	Name        string
	ReleaseDate string
	Precision   string
	TotalTracks int
}

// AlbumTrack is a track as it appears on an album listing.
type AlbumTrack struct {
	ID       string
	Title    string
	Duration int // Duration in seconds
}
