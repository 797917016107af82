package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nvallee/radar/internal/shared"
)

func newTestService(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	}, WithBaseURL(server.URL), WithRateLimit(1000))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "test_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}

	return srv, server
}

func TestNewSpotifyService(t *testing.T) {
	t.Run("With Valid Credentials", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
			"redirect_uri":  "http://localhost:9999/callback",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if srv.Name() != "Spotify" {
			t.Errorf("expected service name 'Spotify', got %s", srv.Name())
		}

		if srv.config.RedirectURL != "http://localhost:9999/callback" {
			t.Errorf("unexpected redirect URI %s", srv.config.RedirectURL)
		}
	})

	t.Run("Missing Client ID", func(t *testing.T) {
		_, err := NewSpotifyService(map[string]string{"client_secret": "secret"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Missing Client Secret", func(t *testing.T) {
		_, err := NewSpotifyService(map[string]string{"client_id": "id"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Market Option", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
		}, WithMarket("GB"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.market != "GB" {
			t.Errorf("expected market GB, got %s", srv.market)
		}
	})
}

func TestGetAuthURL(t *testing.T) {
	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	authURL := srv.GetAuthURL("test_state")

	for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "playlist-modify-public"} {
		if !strings.Contains(authURL, want) {
			t.Errorf("auth URL should contain %q, got %s", want, authURL)
		}
	}
}

func TestDoRequestErrors(t *testing.T) {
	t.Run("Unauthenticated", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.UserProfile(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Expired Token", func(t *testing.T) {
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := srv.UserProfile(context.Background())
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("Retries On 429 Then Succeeds", func(t *testing.T) {
		var calls atomic.Int32
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(SpotifyUser{ID: "user1"})
		}))

		user, err := srv.UserProfile(context.Background())
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if user.ID != "user1" {
			t.Errorf("expected user1, got %s", user.ID)
		}
		if calls.Load() != 2 {
			t.Errorf("expected 2 calls, got %d", calls.Load())
		}
	})

	t.Run("Gives Up After Max Retries", func(t *testing.T) {
		var calls atomic.Int32
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		srv.maxRetries = 1

		_, err := srv.UserProfile(context.Background())
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
		if calls.Load() != 2 {
			t.Errorf("expected 2 calls (initial + 1 retry), got %d", calls.Load())
		}
	})

	t.Run("No Retry On Client Error", func(t *testing.T) {
		var calls atomic.Int32
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := srv.GetPlaylist(context.Background(), "missing")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("expected a single call, got %d", calls.Load())
		}
	})
}

func TestArtistAlbums(t *testing.T) {
	t.Run("Paginates", func(t *testing.T) {
		var server *httptest.Server
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/artists/artist1/albums") {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("include_groups") != "album,single" {
				t.Errorf("expected include_groups=album,single, got %s", r.URL.Query().Get("include_groups"))
			}

			offset := r.URL.Query().Get("offset")
			w.Header().Set("Content-Type", "application/json")
			if offset == "0" {
				next := server.URL + "/artists/artist1/albums?offset=50"
				page := spotifyPage[SpotifyAlbum]{
					Items: []SpotifyAlbum{
						{ID: "a1", Name: "First", ReleaseDate: "2025-06-10", ReleaseDatePrecision: "day"},
					},
					Next: &next,
				}
				json.NewEncoder(w).Encode(page)
				return
			}
			page := spotifyPage[SpotifyAlbum]{
				Items: []SpotifyAlbum{
					{ID: "a2", Name: "Second", ReleaseDate: "2024", ReleaseDatePrecision: "year"},
				},
			}
			json.NewEncoder(w).Encode(page)
		})

		srv, ts := newTestService(t, handler)
		server = ts

		albums, err := srv.ArtistAlbums(context.Background(), "artist1")
		if err != nil {
			t.Fatalf("failed to fetch albums: %v", err)
		}

		if len(albums) != 2 {
			t.Fatalf("expected 2 albums across pages, got %d", len(albums))
		}
		if albums[0].ID != "a1" || albums[1].ID != "a2" {
			t.Errorf("unexpected album order: %+v", albums)
		}
		if albums[1].Precision != "year" {
			t.Errorf("expected year precision to carry through, got %s", albums[1].Precision)
		}
	})

	t.Run("Requires Artist ID", func(t *testing.T) {
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		if _, err := srv.ArtistAlbums(context.Background(), ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestAlbumTracks(t *testing.T) {
	srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := spotifyPage[SpotifySimpleTrack]{
			Items: []SpotifySimpleTrack{
				{ID: "t1", Name: "Track One", DurationMS: 183000},
				{ID: "t2", Name: "Track Two", DurationMS: 240500},
			},
		}
		json.NewEncoder(w).Encode(page)
	}))

	tracks, err := srv.AlbumTracks(context.Background(), "album1")
	if err != nil {
		t.Fatalf("failed to fetch tracks: %v", err)
	}

	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].Duration != 183 {
		t.Errorf("expected duration in seconds (183), got %d", tracks[0].Duration)
	}
}

func TestPlaylistTrackIDs(t *testing.T) {
	srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := spotifyPage[SpotifyPlaylistTrack]{
			Items: []SpotifyPlaylistTrack{
				{Track: SpotifySimpleTrack{ID: "t1"}},
				{Track: SpotifySimpleTrack{ID: ""}}, // local file
				{Track: SpotifySimpleTrack{ID: "t2"}},
			},
		}
		json.NewEncoder(w).Encode(page)
	}))

	ids, err := srv.PlaylistTrackIDs(context.Background(), "playlist1")
	if err != nil {
		t.Fatalf("failed to fetch playlist tracks: %v", err)
	}

	if len(ids) != 2 {
		t.Fatalf("expected 2 track IDs (local file skipped), got %d", len(ids))
	}
	if ids[0] != "t1" || ids[1] != "t2" {
		t.Errorf("unexpected IDs: %v", ids)
	}
}

func TestPlaylistMutations(t *testing.T) {
	t.Run("AddPlaylistTracks Sends URIs And Position", func(t *testing.T) {
		var received struct {
			URIs     []string `json:"uris"`
			Position int      `json:"position"`
		}
		var method string

		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			json.NewDecoder(r.Body).Decode(&received)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"snapshot_id":"snap"}`)
		}))

		uris := []string{"spotify:track:t1", "spotify:track:t2"}
		if err := srv.AddPlaylistTracks(context.Background(), "playlist1", uris, 0); err != nil {
			t.Fatalf("failed to add tracks: %v", err)
		}

		if method != http.MethodPost {
			t.Errorf("expected POST, got %s", method)
		}
		if len(received.URIs) != 2 || received.URIs[0] != "spotify:track:t1" {
			t.Errorf("unexpected request URIs: %v", received.URIs)
		}
		if received.Position != 0 {
			t.Errorf("expected position 0, got %d", received.Position)
		}
	})

	t.Run("RemovePlaylistTracks Sends Track Refs", func(t *testing.T) {
		var received struct {
			Tracks []struct {
				URI string `json:"uri"`
			} `json:"tracks"`
		}
		var method string

		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			json.NewDecoder(r.Body).Decode(&received)
			fmt.Fprint(w, `{"snapshot_id":"snap"}`)
		}))

		if err := srv.RemovePlaylistTracks(context.Background(), "playlist1", []string{"t1"}); err != nil {
			t.Fatalf("failed to remove tracks: %v", err)
		}

		if method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", method)
		}
		if len(received.Tracks) != 1 || received.Tracks[0].URI != "spotify:track:t1" {
			t.Errorf("unexpected request tracks: %+v", received.Tracks)
		}
	})

	t.Run("Empty Mutations Are No-Ops", func(t *testing.T) {
		var calls atomic.Int32
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))

		if err := srv.AddPlaylistTracks(context.Background(), "playlist1", nil, 0); err != nil {
			t.Errorf("empty add should be a no-op: %v", err)
		}
		if err := srv.RemovePlaylistTracks(context.Background(), "playlist1", nil); err != nil {
			t.Errorf("empty remove should be a no-op: %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("expected no API calls, got %d", calls.Load())
		}
	})
}
