package models

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nvallee/radar/internal/shared"
)

// AIUsageHeavy marks roster artists whose catalog is predominantly AI generated.
// They are excluded from sync runs when the exclude_ai setting is on.
const AIUsageHeavy = "heavy"

// Artist is a single roster entry.
//
// Name and SpotifyID are required for an entry to be synced; entries without a
// Spotify ID are reported and skipped rather than failing the run.
type Artist struct {
	Name      string `json:"name"`
	SpotifyID string `json:"spotify_id"`
	Threads   string `json:"threads,omitempty"`
	AIUsage   string `json:"ai_usage,omitempty"`
}

// Valid reports whether the entry carries everything a sync needs.
func (a Artist) Valid() bool {
	return a.SpotifyID != ""
}

// Roster is the configured list of tracked artists.
type Roster struct {
	Artists []Artist
	Skipped []Artist // Entries missing a Spotify ID, kept for reporting
}

// LoadRoster reads a roster JSON file (an array of artist objects) and
// validates it.
//
// Entries without a Spotify ID are separated into Skipped instead of being
// dropped silently. Duplicate Spotify IDs are a hard error.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrRosterNotFound, path)
		}
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var entries []Artist
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidRoster, err)
	}

	roster := &Roster{}
	seen := map[string]string{}

	for _, entry := range entries {
		if !entry.Valid() {
			roster.Skipped = append(roster.Skipped, entry)
			continue
		}
		if prev, ok := seen[entry.SpotifyID]; ok {
			return nil, fmt.Errorf("%w: duplicate spotify_id %s (%s and %s)",
				shared.ErrInvalidRoster, entry.SpotifyID, prev, entry.Name)
		}
		seen[entry.SpotifyID] = entry.Name
		roster.Artists = append(roster.Artists, entry)
	}

	return roster, nil
}

// ExcludeHeavyAI returns the roster artists minus those marked with heavy AI usage.
func (r *Roster) ExcludeHeavyAI() []Artist {
	filtered := make([]Artist, 0, len(r.Artists))
	for _, a := range r.Artists {
		if a.AIUsage == AIUsageHeavy {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered
}

// Tracked returns the artists a sync run should process given the exclude_ai setting.
func (r *Roster) Tracked(excludeAI bool) []Artist {
	if excludeAI {
		return r.ExcludeHeavyAI()
	}
	return r.Artists
}
