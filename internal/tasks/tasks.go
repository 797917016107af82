package tasks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nvallee/radar/internal/models"
	"github.com/nvallee/radar/internal/services"
	"github.com/nvallee/radar/internal/shared"
)

// addChunkSize is the number of track URIs sent per playlist mutation request.
const addChunkSize = 50

// SyncOptions configures a sync run.
type SyncOptions struct {
	RecentPlaylistID string // Playlist holding releases inside the lookback window
	YearPlaylistID   string // Playlist holding all releases from the current year
	LookbackDays     int    // Trailing window size in days
	DryRun           bool   // Report planned actions without mutating playlists
	PruneYear        bool   // Also remove out-of-window tracks from the year playlist
}

// ArtistFailure records a roster artist whose catalog lookup failed.
type ArtistFailure struct {
	Artist models.Artist
	Err    error
}

// CollectResult holds the candidate tracks gathered from the roster.
type CollectResult struct {
	RecentTracks []models.Track  // Deduplicated in-window tracks, newest first
	YearTracks   []models.Track  // Deduplicated year-to-date tracks, newest first
	Processed    int             // Artists successfully processed
	Failures     []ArtistFailure // Artists skipped due to lookup errors
}

// PlaylistPlan describes the mutations one playlist needs to match the desired membership.
type PlaylistPlan struct {
	PlaylistID string
	Additions  []models.Track // Tracks to add, newest first
	RemovalIDs []string       // Track IDs to remove
}

// Empty reports whether the plan requires no mutations.
func (p PlaylistPlan) Empty() bool {
	return len(p.Additions) == 0 && len(p.RemovalIDs) == 0
}

// SyncPlan is the full diff for both managed playlists.
type SyncPlan struct {
	Recent  PlaylistPlan
	Year    PlaylistPlan
	Preview bool // Set for dry runs; Apply refuses preview plans
}

// Empty reports whether the whole plan requires no mutations.
func (p *SyncPlan) Empty() bool {
	return p.Recent.Empty() && p.Year.Empty()
}

// SyncResult contains everything a run produced, for reporting and persistence.
type SyncResult struct {
	Run     models.SyncRun
	Collect *CollectResult
	Plan    *SyncPlan
}

// SyncEngine defines the operations of the sync pipeline.
type SyncEngine interface {
	// Collect fetches releases for the given artists and filters them into the two windows.
	Collect(ctx context.Context, progress chan<- ProgressUpdate, artists []models.Artist, opts SyncOptions) (*CollectResult, error)

	// Plan diffs the collected candidates against the playlists' current contents.
	Plan(ctx context.Context, progress chan<- ProgressUpdate, collect *CollectResult, opts SyncOptions) (*SyncPlan, error)

	// Apply issues the playlist mutations a plan calls for.
	Apply(ctx context.Context, progress chan<- ProgressUpdate, plan *SyncPlan) error

	// Run performs a full sync: Collect, Plan, and (unless dry-run) Apply.
	Run(ctx context.Context, progress chan<- ProgressUpdate, roster *models.Roster, excludeAI bool, opts SyncOptions) (*SyncResult, error)
}

// RunRecorder persists completed sync runs.
type RunRecorder interface {
	Record(run models.SyncRun) error
}

// TrackCacher persists candidate tracks for later inspection.
type TrackCacher interface {
	CacheTrack(track models.Track) error
}

// PlaylistEngine implements [SyncEngine] against a single streaming service.
type PlaylistEngine struct {
	service  services.Service
	recorder RunRecorder
	cacher   TrackCacher
	now      func() time.Time
}

// EngineOption customizes a PlaylistEngine.
type EngineOption func(*PlaylistEngine)

// WithRecorder attaches a run-history recorder to the engine.
func WithRecorder(r RunRecorder) EngineOption {
	return func(e *PlaylistEngine) { e.recorder = r }
}

// WithCacher attaches a track cache to the engine.
func WithCacher(c TrackCacher) EngineOption {
	return func(e *PlaylistEngine) { e.cacher = c }
}

// WithClock overrides the engine's time source, used by tests for stable windows.
func WithClock(now func() time.Time) EngineOption {
	return func(e *PlaylistEngine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewPlaylistEngine creates a new PlaylistEngine backed by the provided service.
func NewPlaylistEngine(service services.Service, opts ...EngineOption) *PlaylistEngine {
	e := &PlaylistEngine{
		service: service,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Collect fetches albums and tracks for each artist and filters them into the
// lookback and year-to-date windows.
//
// Lookup failures are collected per artist so one bad roster entry never
// aborts the run.
func (e *PlaylistEngine) Collect(ctx context.Context, progress chan<- ProgressUpdate, artists []models.Artist, opts SyncOptions) (*CollectResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: streaming service not initialized", shared.ErrServiceUnavailable)
	}

	today := e.now()
	lookback := models.NewLookbackWindow(today, opts.LookbackDays)
	year := models.NewYearWindow(today)

	result := &CollectResult{}

	for i, artist := range artists {
		e.sendProgress(progress, collectArtistUpdate(i+1, len(artists), artist))

		recent, ytd, err := e.collectArtist(ctx, artist, lookback, year)
		if err != nil {
			result.Failures = append(result.Failures, ArtistFailure{Artist: artist, Err: err})
			continue
		}

		result.Processed++
		result.RecentTracks = append(result.RecentTracks, recent...)
		result.YearTracks = append(result.YearTracks, ytd...)
	}

	result.RecentTracks = DeduplicateTracks(result.RecentTracks)
	result.YearTracks = DeduplicateTracks(result.YearTracks)

	if e.cacher != nil {
		for _, track := range result.YearTracks {
			// Cache failures are non-fatal; the cache is a convenience.
			_ = e.cacher.CacheTrack(track)
		}
	}

	return result, nil
}

// collectArtist gathers one artist's in-window tracks.
func (e *PlaylistEngine) collectArtist(ctx context.Context, artist models.Artist, lookback, year models.ReleaseWindow) (recent, ytd []models.Track, err error) {
	albums, err := e.service.ArtistAlbums(ctx, artist.SpotifyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch albums: %w", err)
	}

	for _, album := range albums {
		released, parseErr := models.ParseReleaseDate(album.ReleaseDate, album.Precision)
		if parseErr != nil {
			// Albums with unparseable dates cannot be windowed; skip them.
			continue
		}

		if !year.Contains(released) {
			continue
		}

		albumTracks, trackErr := e.service.AlbumTracks(ctx, album.ID)
		if trackErr != nil {
			return nil, nil, fmt.Errorf("failed to fetch tracks for album %s: %w", album.Name, trackErr)
		}

		for _, at := range albumTracks {
			track := models.Track{
				ID:          at.ID,
				Title:       at.Title,
				Artist:      artist.Name,
				Album:       album.Name,
				ReleaseDate: released,
				Duration:    at.Duration,
				Handle:      artist.Threads,
			}

			ytd = append(ytd, track)
			if lookback.Contains(released) {
				recent = append(recent, track)
			}
		}
	}

	return recent, ytd, nil
}

// DeduplicateTracks removes duplicate tracks (re-releases, singles later
// appearing on albums), keeping the most recent version of each, and sorts
// the result newest first.
func DeduplicateTracks(tracks []models.Track) []models.Track {
	byKey := make(map[string]models.Track, len(tracks))

	for _, track := range tracks {
		key := shared.NormalizeTrackKey(track.Title, track.Artist)
		if existing, ok := byKey[key]; !ok || track.ReleaseDate.After(existing.ReleaseDate) {
			byKey[key] = track
		}
	}

	unique := make([]models.Track, 0, len(byKey))
	for _, track := range byKey {
		unique = append(unique, track)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		if !unique[i].ReleaseDate.Equal(unique[j].ReleaseDate) {
			return unique[i].ReleaseDate.After(unique[j].ReleaseDate)
		}
		return unique[i].Title < unique[j].Title
	})

	return unique
}

// Plan diffs the collected candidates against both playlists' current contents.
//
// Additions preserve the newest-first candidate order. The recent playlist is
// always pruned of aged-out tracks; the year playlist only when PruneYear is set.
func (e *PlaylistEngine) Plan(ctx context.Context, progress chan<- ProgressUpdate, collect *CollectResult, opts SyncOptions) (*SyncPlan, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: streaming service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.RecentPlaylistID == "" || opts.YearPlaylistID == "" {
		return nil, fmt.Errorf("%w: both playlist IDs are required", shared.ErrInvalidArgument)
	}

	e.sendProgress(progress, fetchPlaylistUpdate(1, 2, opts.RecentPlaylistID))
	currentRecent, err := e.service.PlaylistTrackIDs(ctx, opts.RecentPlaylistID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch recent playlist: %v", shared.ErrAPIRequest, err)
	}

	e.sendProgress(progress, fetchPlaylistUpdate(2, 2, opts.YearPlaylistID))
	currentYear, err := e.service.PlaylistTrackIDs(ctx, opts.YearPlaylistID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch year playlist: %v", shared.ErrAPIRequest, err)
	}

	plan := &SyncPlan{
		Recent:  diffPlaylist(opts.RecentPlaylistID, collect.RecentTracks, currentRecent, true),
		Year:    diffPlaylist(opts.YearPlaylistID, collect.YearTracks, currentYear, opts.PruneYear),
		Preview: opts.DryRun,
	}

	e.sendProgress(progress, planUpdate(plan))

	return plan, nil
}

// diffPlaylist computes the mutations one playlist needs.
func diffPlaylist(playlistID string, desired []models.Track, currentIDs []string, prune bool) PlaylistPlan {
	plan := PlaylistPlan{PlaylistID: playlistID}

	current := make(map[string]bool, len(currentIDs))
	for _, id := range currentIDs {
		current[id] = true
	}

	wanted := make(map[string]bool, len(desired))
	for _, track := range desired {
		wanted[track.ID] = true
		if !current[track.ID] {
			plan.Additions = append(plan.Additions, track)
		}
	}

	if prune {
		for _, id := range currentIDs {
			if !wanted[id] {
				plan.RemovalIDs = append(plan.RemovalIDs, id)
			}
		}
	}

	return plan
}

// Apply issues the mutations a plan calls for: removals first, then additions
// chunked at the API's request size, inserted at the top of the playlist.
//
// Preview plans are never applied.
func (e *PlaylistEngine) Apply(ctx context.Context, progress chan<- ProgressUpdate, plan *SyncPlan) error {
	if e.service == nil {
		return fmt.Errorf("%w: streaming service not initialized", shared.ErrServiceUnavailable)
	}
	if plan.Preview {
		return fmt.Errorf("%w: refusing to apply a preview plan", shared.ErrInvalidArgument)
	}

	for _, p := range []PlaylistPlan{plan.Recent, plan.Year} {
		if len(p.RemovalIDs) > 0 {
			e.sendProgress(progress, applyRemovalsUpdate(len(p.RemovalIDs), p.PlaylistID))
			for start := 0; start < len(p.RemovalIDs); start += addChunkSize {
				end := min(start+addChunkSize, len(p.RemovalIDs))
				if err := e.service.RemovePlaylistTracks(ctx, p.PlaylistID, p.RemovalIDs[start:end]); err != nil {
					return fmt.Errorf("%w: failed to remove tracks from %s: %v", shared.ErrAPIRequest, p.PlaylistID, err)
				}
			}
		}

		if len(p.Additions) > 0 {
			total := (len(p.Additions) + addChunkSize - 1) / addChunkSize
			for start := 0; start < len(p.Additions); start += addChunkSize {
				end := min(start+addChunkSize, len(p.Additions))

				uris := make([]string, 0, end-start)
				for _, track := range p.Additions[start:end] {
					uris = append(uris, track.URI())
				}

				e.sendProgress(progress, applyAdditionsUpdate(start/addChunkSize+1, total, p.PlaylistID))
				if err := e.service.AddPlaylistTracks(ctx, p.PlaylistID, uris, 0); err != nil {
					return fmt.Errorf("%w: failed to add tracks to %s: %v", shared.ErrAPIRequest, p.PlaylistID, err)
				}
			}
		}
	}

	return nil
}

// Run performs a full sync for the roster and returns the result.
//
// The run record is persisted through the attached [RunRecorder] even when a
// stage fails, so the history reflects failed runs too.
func (e *PlaylistEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, roster *models.Roster, excludeAI bool, opts SyncOptions) (*SyncResult, error) {
	result := &SyncResult{
		Run: models.SyncRun{
			ID:        shared.GenerateID(),
			StartedAt: e.now(),
			DryRun:    opts.DryRun,
		},
	}

	artists := roster.Tracked(excludeAI)
	result.Run.ArtistsSkipped = len(roster.Skipped)

	runErr := e.run(ctx, progress, artists, opts, result)

	result.Run.FinishedAt = e.now()
	if runErr != nil {
		result.Run.Error = runErr.Error()
	}

	if e.recorder != nil {
		if recordErr := e.recorder.Record(result.Run); recordErr != nil && runErr == nil {
			runErr = fmt.Errorf("sync succeeded but recording the run failed: %w", recordErr)
		}
	}

	return result, runErr
}

// run executes the pipeline stages, filling result as it goes.
func (e *PlaylistEngine) run(ctx context.Context, progress chan<- ProgressUpdate, artists []models.Artist, opts SyncOptions, result *SyncResult) error {
	collect, err := e.Collect(ctx, progress, artists, opts)
	if err != nil {
		return err
	}
	result.Collect = collect
	result.Run.ArtistsProcessed = collect.Processed
	result.Run.ArtistsSkipped += len(collect.Failures)

	plan, err := e.Plan(ctx, progress, collect, opts)
	if err != nil {
		return err
	}
	result.Plan = plan

	result.Run.RecentAdded = len(plan.Recent.Additions)
	result.Run.RecentRemoved = len(plan.Recent.RemovalIDs)
	result.Run.YearAdded = len(plan.Year.Additions)
	result.Run.YearRemoved = len(plan.Year.RemovalIDs)

	if opts.DryRun {
		return nil
	}

	return e.Apply(ctx, progress, plan)
}
