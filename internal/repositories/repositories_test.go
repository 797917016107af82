package repositories

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvallee/radar/internal/models"
	"github.com/nvallee/radar/internal/shared"
)

func newTestDB(t *testing.T) *RunRepository {
	t.Helper()
	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "radar_test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewRunRepository(db)
}

func sampleRun(id string, started time.Time) models.SyncRun {
	return models.SyncRun{
		ID:               id,
		StartedAt:        started,
		FinishedAt:       started.Add(42 * time.Second),
		RecentAdded:      3,
		RecentRemoved:    1,
		YearAdded:        5,
		ArtistsProcessed: 12,
		ArtistsSkipped:   2,
	}
}

func TestRunRepository(t *testing.T) {
	base := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Record And Get", func(t *testing.T) {
		repo := newTestDB(t)

		want := sampleRun("run-1", base)
		if err := repo.Record(want); err != nil {
			t.Fatalf("record failed: %v", err)
		}

		got, err := repo.Get("run-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}

		if got.RecentAdded != want.RecentAdded || got.ArtistsProcessed != want.ArtistsProcessed {
			t.Errorf("round trip mismatch: got %+v", got)
		}
		if got.Duration() != 42*time.Second {
			t.Errorf("expected 42s duration, got %s", got.Duration())
		}
		if got.Error != "" {
			t.Errorf("expected empty error, got %q", got.Error)
		}
	})

	t.Run("Records Failed Runs", func(t *testing.T) {
		repo := newTestDB(t)

		run := sampleRun("run-err", base)
		run.Error = "API request failed"
		if err := repo.Record(run); err != nil {
			t.Fatalf("record failed: %v", err)
		}

		got, err := repo.Get("run-err")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Error != "API request failed" {
			t.Errorf("expected error to round trip, got %q", got.Error)
		}
	})

	t.Run("Rejects Missing ID", func(t *testing.T) {
		repo := newTestDB(t)
		if err := repo.Record(models.SyncRun{}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("List Newest First", func(t *testing.T) {
		repo := newTestDB(t)

		for i := 0; i < 3; i++ {
			run := sampleRun(string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour))
			if err := repo.Record(run); err != nil {
				t.Fatalf("record failed: %v", err)
			}
		}

		runs, err := repo.List(2)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ID != "c" || runs[1].ID != "b" {
			t.Errorf("expected newest first [c b], got [%s %s]", runs[0].ID, runs[1].ID)
		}

		latest, err := repo.Latest()
		if err != nil {
			t.Fatalf("latest failed: %v", err)
		}
		if latest.ID != "c" {
			t.Errorf("expected latest run c, got %s", latest.ID)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		repo := newTestDB(t)

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
		if _, err := repo.Latest(); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound on empty history, got %v", err)
		}
	})
}

func TestTrackRepository(t *testing.T) {
	newTrackRepo := func(t *testing.T) *TrackRepository {
		t.Helper()
		db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "radar_test.db"))
		if err != nil {
			t.Fatalf("failed to open test database: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		return NewTrackRepository(db)
	}

	track := models.Track{
		ID:          "t1",
		Title:       "Opener",
		Artist:      "Fresh",
		Album:       "New Drop",
		ReleaseDate: time.Date(2025, time.June, 10, 0, 0, 0, 0, time.Local),
		Duration:    180,
	}

	t.Run("Cache And List", func(t *testing.T) {
		repo := newTrackRepo(t)

		if err := repo.CacheTrack(track); err != nil {
			t.Fatalf("cache failed: %v", err)
		}

		tracks, err := repo.ListByReleaseDate(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local))
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(tracks) != 1 {
			t.Fatalf("expected 1 cached track, got %d", len(tracks))
		}

		got := tracks[0]
		if got.Title != track.Title || got.Duration != track.Duration {
			t.Errorf("round trip mismatch: got %+v", got)
		}
		if !got.ReleaseDate.Equal(track.ReleaseDate) {
			t.Errorf("expected release date %s, got %s", track.ReleaseDate, got.ReleaseDate)
		}
	})

	t.Run("Upsert Refreshes Metadata", func(t *testing.T) {
		repo := newTrackRepo(t)

		if err := repo.CacheTrack(track); err != nil {
			t.Fatalf("cache failed: %v", err)
		}

		updated := track
		updated.Album = "New Drop (Deluxe)"
		if err := repo.CacheTrack(updated); err != nil {
			t.Fatalf("re-cache failed: %v", err)
		}

		count, err := repo.Count()
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected upsert to keep 1 row, got %d", count)
		}

		tracks, err := repo.ListByReleaseDate(time.Time{})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if tracks[0].Album != "New Drop (Deluxe)" {
			t.Errorf("expected refreshed album, got %q", tracks[0].Album)
		}
	})

	t.Run("Release Date Filter", func(t *testing.T) {
		repo := newTrackRepo(t)

		old := track
		old.ID = "t_old"
		old.ReleaseDate = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)

		for _, tr := range []models.Track{track, old} {
			if err := repo.CacheTrack(tr); err != nil {
				t.Fatalf("cache failed: %v", err)
			}
		}

		tracks, err := repo.ListByReleaseDate(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local))
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != "t1" {
			t.Errorf("expected only t1 after the cutoff, got %+v", tracks)
		}
	})

	t.Run("Rejects Missing ID", func(t *testing.T) {
		repo := newTrackRepo(t)
		if err := repo.CacheTrack(models.Track{}); err == nil {
			t.Error("expected an error for a track without an ID")
		}
	})
}
