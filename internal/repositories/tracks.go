package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nvallee/radar/internal/models"
)

// releaseDateLayout is the storage format for release dates.
const releaseDateLayout = "2006-01-02"

// TrackRepository caches discovered tracks keyed by their Spotify ID.
// It implements [tasks.TrackCacher].
//
// The cache is written opportunistically during a sync so `radar history`
// consumers can see what a run found without replaying API calls.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// CacheTrack upserts a track. Re-caching an existing Spotify ID refreshes its
// metadata rather than failing on the unique constraint.
func (r *TrackRepository) CacheTrack(track models.Track) error {
	if track.ID == "" {
		return fmt.Errorf("track ID is required")
	}

	query := `
		INSERT INTO tracks (spotify_id, title, artist, album, release_date, duration)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(spotify_id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			release_date = excluded.release_date,
			duration = excluded.duration
	`

	_, err := r.db.Exec(query,
		track.ID,
		track.Title,
		track.Artist,
		track.Album,
		track.ReleaseDate.Format(releaseDateLayout),
		track.Duration,
	)
	if err != nil {
		return fmt.Errorf("failed to cache track: %w", err)
	}

	return nil
}

// ListByReleaseDate retrieves cached tracks released on or after the given
// day, newest first.
func (r *TrackRepository) ListByReleaseDate(since time.Time) ([]models.Track, error) {
	query := `
		SELECT spotify_id, title, artist, album, release_date, duration
		FROM tracks
		WHERE release_date >= ?
		ORDER BY release_date DESC, title ASC
	`

	rows, err := r.db.Query(query, since.Format(releaseDateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var (
			track       models.Track
			releaseDate string
		)

		if err := rows.Scan(&track.ID, &track.Title, &track.Artist, &track.Album, &releaseDate, &track.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}

		released, err := time.ParseInLocation(releaseDateLayout, releaseDate, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid release date %q in cache: %w", releaseDate, err)
		}
		track.ReleaseDate = released

		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// Count returns the number of cached tracks.
func (r *TrackRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM tracks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return count, nil
}
