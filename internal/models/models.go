package models

import (
	"time"
)

// Playlist represents a music playlist from the streaming service
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// Track represents a single track candidate for playlist membership.
type Track struct {
	ID          string    // Service track ID
	Title       string    // Track title
	Artist      string    // Display name of the roster artist
	Album       string    // Album the track was released on
	ReleaseDate time.Time // Album release date, normalized to a calendar day
	Duration    int       // Duration in seconds
	Handle      string    // Roster artist's social handle, if any
}

// URI returns the track's service URI, used by playlist mutation endpoints.
func (t Track) URI() string {
	return "spotify:track:" + t.ID
}

// SyncRun records one run of the sync pipeline.
type SyncRun struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       time.Time
	DryRun           bool
	RecentAdded      int
	RecentRemoved    int
	YearAdded        int
	YearRemoved      int
	ArtistsProcessed int
	ArtistsSkipped   int
	Error            string
}

// Duration returns the wall time the run took.
func (r SyncRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
