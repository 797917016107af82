// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nvallee/radar/internal/models"
	"github.com/nvallee/radar/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify caps most collection endpoints at 50 items per page.
	pageLimit = 50

	defaultRequestsPerSecond = 5
	defaultMaxRetries        = 3
	retryBaseDelay           = 500 * time.Millisecond
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Country     string         `json:"country"`
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album or single.
type SpotifyAlbum struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	AlbumGroup           string          `json:"album_group"`
	AlbumType            string          `json:"album_type"`
	Artists              []SpotifyArtist `json:"artists"`
	ReleaseDate          string          `json:"release_date"`
	ReleaseDatePrecision string          `json:"release_date_precision"`
	TotalTracks          int             `json:"total_tracks"`
	URI                  string          `json:"uri"`
}

// SpotifySimpleTrack represents a track in an album listing.
type SpotifySimpleTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

type playlistTracksRef struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Public      bool              `json:"public"`
	Tracks      playlistTracksRef `json:"tracks"`
	URI         string            `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string             `json:"added_at"`
	Track   SpotifySimpleTrack `json:"track"`
}

// spotifyPage is the generic paginated envelope used by collection endpoints.
type spotifyPage[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

// SpotifyService implements the [Service] interface for Spotify API interactions.
//
// Uses [oauth2] for authentication with an auto-refreshing token source, a
// [rate.Limiter] to stay under the API's request budget, and retry with backoff
// on throttled or transient server errors.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	maxRetries int
	market     string
}

// SpotifyOption customizes a SpotifyService.
type SpotifyOption func(*SpotifyService)

// WithMarket sets the market (ISO country code) used for catalog lookups.
func WithMarket(market string) SpotifyOption {
	return func(s *SpotifyService) {
		if market != "" {
			s.market = market
		}
	}
}

// WithRateLimit overrides the client-side requests-per-second budget.
func WithRateLimit(rps float64) SpotifyOption {
	return func(s *SpotifyService) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithHTTPClient overrides the HTTP client, used by tests to point at a local server.
func WithHTTPClient(client *http.Client) SpotifyOption {
	return func(s *SpotifyService) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base URL, used by tests and proxies.
func WithBaseURL(baseURL string) SpotifyOption {
	return func(s *SpotifyService) {
		if baseURL != "" {
			s.baseURL = baseURL
		}
	}
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), 1),
		baseURL:    spotifyBaseURL,
		maxRetries: defaultMaxRetries,
		market:     "US",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate authenticates with a stored token. The token source refreshes
// expired access tokens transparently when a refresh token is present.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}
	s.token = token

	base := s.httpClient
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	s.httpClient = oauth2.NewClient(ctx, s.config.TokenSource(ctx, token))
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 config for the local callback server.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated HTTP request to the Spotify API with
// rate limiting and retry on 429/5xx responses.
//
// A 429 waits for the Retry-After interval the API reports; transient server
// errors back off exponentially. 401 surfaces as [shared.ErrTokenExpired] so
// callers can trigger reauthorization.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	apiURL := s.baseURL + endpoint

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, apiURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		retry, delay, reqErr := s.checkResponse(resp, result)
		resp.Body.Close()

		if reqErr == nil {
			return nil
		}
		if !retry || attempt == s.maxRetries {
			return reqErr
		}

		lastErr = reqErr
		if delay <= 0 {
			delay = retryBaseDelay << attempt
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// checkResponse decodes a response, classifying errors as retryable or not.
func (s *SpotifyService) checkResponse(resp *http.Response, result any) (retry bool, delay time.Duration, err error) {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return false, 0, fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return false, 0, nil

	case resp.StatusCode == http.StatusUnauthorized:
		return false, 0, fmt.Errorf("%w: status 401", shared.ErrTokenExpired)

	case resp.StatusCode == http.StatusTooManyRequests:
		if after, parseErr := strconv.Atoi(resp.Header.Get("Retry-After")); parseErr == nil {
			delay = time.Duration(after) * time.Second
		}
		return true, delay, fmt.Errorf("%w: status 429", shared.ErrRateLimited)

	case resp.StatusCode >= 500:
		return true, 0, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)

	default:
		return false, 0, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ArtistAlbums retrieves an artist's albums and singles in the configured market, following pagination.
func (s *SpotifyService) ArtistAlbums(ctx context.Context, artistID string) ([]Album, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: artist ID required", shared.ErrInvalidArgument)
	}

	var albums []Album
	offset := 0

	for {
		endpoint := fmt.Sprintf("/artists/%s/albums?include_groups=album,single&market=%s&limit=%d&offset=%d",
			artistID, url.QueryEscape(s.market), pageLimit, offset)

		var page spotifyPage[SpotifyAlbum]
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			albums = append(albums, Album{
				ID:          item.ID,
				Name:        item.Name,
				ReleaseDate: item.ReleaseDate,
				Precision:   item.ReleaseDatePrecision,
				TotalTracks: item.TotalTracks,
			})
		}

		if page.Next == nil || len(page.Items) == 0 {
			return albums, nil
		}
		offset += pageLimit
	}
}

// AlbumTracks retrieves the tracks on an album, following pagination.
func (s *SpotifyService) AlbumTracks(ctx context.Context, albumID string) ([]AlbumTrack, error) {
	if albumID == "" {
		return nil, fmt.Errorf("%w: album ID required", shared.ErrInvalidArgument)
	}

	var tracks []AlbumTrack
	offset := 0

	for {
		endpoint := fmt.Sprintf("/albums/%s/tracks?market=%s&limit=%d&offset=%d",
			albumID, url.QueryEscape(s.market), pageLimit, offset)

		var page spotifyPage[SpotifySimpleTrack]
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			tracks = append(tracks, AlbumTrack{
				ID:       item.ID,
				Title:    item.Name,
				Duration: item.DurationMS / 1000,
			})
		}

		if page.Next == nil || len(page.Items) == 0 {
			return tracks, nil
		}
		offset += pageLimit
	}
}

// GetPlaylist retrieves a playlist by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist ID required", shared.ErrInvalidArgument)
	}

	var sp SpotifyPlaylist
	endpoint := fmt.Sprintf("/playlists/%s", playlistID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &sp); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}, nil
}

// GetPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", pageLimit, offset)

		var page spotifyPage[SpotifyPlaylist]
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			all = append(all, models.Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				TrackCount:  sp.Tracks.Total,
				Public:      sp.Public,
			})
		}

		if page.Next == nil || len(page.Items) == 0 {
			return all, nil
		}
		offset += pageLimit
	}
}

// PlaylistTrackIDs retrieves the IDs of every track currently in a playlist, following pagination.
func (s *SpotifyService) PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist ID required", shared.ErrInvalidArgument)
	}

	var ids []string
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, pageLimit, offset)

		var page spotifyPage[SpotifyPlaylistTrack]
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			// Local files and removed tracks come back with an empty ID.
			if item.Track.ID != "" {
				ids = append(ids, item.Track.ID)
			}
		}

		if page.Next == nil || len(page.Items) == 0 {
			return ids, nil
		}
		offset += pageLimit
	}
}

// AddPlaylistTracks adds track URIs to a playlist at the given position.
// Callers are responsible for chunking; the API rejects oversized requests.
func (s *SpotifyService) AddPlaylistTracks(ctx context.Context, playlistID string, uris []string, position int) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID required", shared.ErrInvalidArgument)
	}
	if len(uris) == 0 {
		return nil
	}

	body := map[string]any{
		"uris":     uris,
		"position": position,
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}

// RemovePlaylistTracks removes all occurrences of the given tracks from a playlist.
func (s *SpotifyService) RemovePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID required", shared.ErrInvalidArgument)
	}
	if len(trackIDs) == 0 {
		return nil
	}

	type trackRef struct {
		URI string `json:"uri"`
	}

	refs := make([]trackRef, 0, len(trackIDs))
	for _, id := range trackIDs {
		refs = append(refs, trackRef{URI: models.Track{ID: id}.URI()})
	}

	body := map[string]any{"tracks": refs}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return s.doRequest(ctx, http.MethodDelete, endpoint, body, nil)
}
