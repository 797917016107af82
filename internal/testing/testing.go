// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/nvallee/radar/internal/models"
	"github.com/nvallee/radar/internal/services"
)

// MutationCall records one mutating playlist call made against [MockService].
type MutationCall struct {
	PlaylistID string
	URIs       []string
	TrackIDs   []string
	Position   int
}

// MockService is a configurable test double for [services.Service].
//
// Catalog data is looked up from the exported maps; every mutating call is
// recorded so tests can assert on exactly what would hit the API.
type MockService struct {
	Albums           map[string][]services.Album      // artist ID -> albums
	AlbumTrackLists  map[string][]services.AlbumTrack // album ID -> tracks
	PlaylistContents map[string][]string              // playlist ID -> track IDs
	Playlists        map[string]models.Playlist       // playlist ID -> metadata

	ArtistErr   map[string]error // artist IDs whose album fetch fails
	PlaylistErr map[string]error // playlist IDs whose fetch fails

	Added   []MutationCall
	Removed []MutationCall
}

// NewMockService returns a MockService with all maps initialized.
func NewMockService() *MockService {
	return &MockService{
		Albums:           map[string][]services.Album{},
		AlbumTrackLists:  map[string][]services.AlbumTrack{},
		PlaylistContents: map[string][]string{},
		Playlists:        map[string]models.Playlist{},
		ArtistErr:        map[string]error{},
		PlaylistErr:      map[string]error{},
	}
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if err := m.PlaylistErr[playlistID]; err != nil {
		return nil, err
	}
	if p, ok := m.Playlists[playlistID]; ok {
		return &p, nil
	}
	return &models.Playlist{ID: playlistID, Name: playlistID}, nil
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist
	for _, p := range m.Playlists {
		all = append(all, p)
	}
	return all, nil
}

func (m *MockService) PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	if err := m.PlaylistErr[playlistID]; err != nil {
		return nil, err
	}
	return m.PlaylistContents[playlistID], nil
}

func (m *MockService) ArtistAlbums(ctx context.Context, artistID string) ([]services.Album, error) {
	if err := m.ArtistErr[artistID]; err != nil {
		return nil, err
	}
	if albums, ok := m.Albums[artistID]; ok {
		return albums, nil
	}
	return nil, fmt.Errorf("unknown artist %s", artistID)
}

func (m *MockService) AlbumTracks(ctx context.Context, albumID string) ([]services.AlbumTrack, error) {
	if tracks, ok := m.AlbumTrackLists[albumID]; ok {
		return tracks, nil
	}
	return nil, fmt.Errorf("unknown album %s", albumID)
}

func (m *MockService) AddPlaylistTracks(ctx context.Context, playlistID string, uris []string, position int) error {
	m.Added = append(m.Added, MutationCall{PlaylistID: playlistID, URIs: uris, Position: position})
	return nil
}

func (m *MockService) RemovePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.Removed = append(m.Removed, MutationCall{PlaylistID: playlistID, TrackIDs: trackIDs})
	return nil
}

func (m *MockService) Name() string { return "mock" }

// MutationCount returns the total number of mutating calls recorded.
func (m *MockService) MutationCount() int {
	return len(m.Added) + len(m.Removed)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
