package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Playlists   PlaylistsConfig   `toml:"playlists"`
	Sync        SyncConfig        `toml:"sync"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and stored OAuth tokens.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token,omitempty"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	Expiry       time.Time `toml:"expiry,omitempty"`
}

// Map converts the Spotify credentials to the map form expected by service constructors.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Token returns the stored OAuth tokens as an [oauth2.Token], or nil if no token is stored.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Expiry:       s.Expiry,
		TokenType:    "Bearer",
	}
}

// Update stores the tokens from an OAuth flow into the config.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidCredentials)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.Expiry = token.Expiry
	return nil
}

// PlaylistsConfig identifies the two managed playlists.
type PlaylistsConfig struct {
	RecentID string `toml:"recent_id"`
	YearID   string `toml:"year_id"`
}

// SyncConfig contains the sync run settings.
type SyncConfig struct {
	LookbackDays int    `toml:"lookback_days"`
	RosterPath   string `toml:"roster_path"`
	ExcludeAI    bool   `toml:"exclude_ai"`
	Market       string `toml:"market"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path,
// then applies environment variable overrides (see [ApplyEnv]).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()

	return &config, nil
}

// SaveConfig writes the configuration back to a TOML file.
// Used to persist OAuth tokens after an authorization flow.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.ApplyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotenv loads a .env file from the working directory if present.
// Missing files are ignored so the environment alone can drive configuration.
func LoadDotenv() {
	_ = godotenv.Load()
}

// ApplyEnv overrides config values with environment variables when set.
// The variable names match the original .env driven deployment of this tool.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
	if v := os.Getenv("SPOTIFY_RR_PLAYLIST_ID"); v != "" {
		c.Playlists.RecentID = v
	}
	if v := os.Getenv("SPOTIFY_ALL_PLAYLIST_ID"); v != "" {
		c.Playlists.YearID = v
	}
	if v := os.Getenv("ARTISTS_FILE"); v != "" {
		c.Sync.RosterPath = v
	}
	if v := os.Getenv("DAYS_LOOKBACK"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			c.Sync.LookbackDays = days
		}
	}
	if v := os.Getenv("EXCLUDE_AI"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Sync.ExcludeAI = b
		}
	}
}

// Validate checks that everything a sync run needs is present.
// Reports all missing keys at once so the user can fix them in one pass.
func (c *Config) Validate() error {
	missing := []string{}
	if c.Credentials.Spotify.ClientID == "" {
		missing = append(missing, "credentials.spotify.client_id")
	}
	if c.Credentials.Spotify.ClientSecret == "" {
		missing = append(missing, "credentials.spotify.client_secret")
	}
	if c.Playlists.RecentID == "" {
		missing = append(missing, "playlists.recent_id")
	}
	if c.Playlists.YearID == "" {
		missing = append(missing, "playlists.year_id")
	}
	if c.Sync.RosterPath == "" {
		missing = append(missing, "sync.roster_path")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrInvalidConfig, missing)
	}

	if c.Sync.LookbackDays <= 0 {
		return fmt.Errorf("%w: sync.lookback_days must be positive", ErrInvalidConfig)
	}

	return nil
}
