package models

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvallee/radar/internal/shared"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artists.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write roster file: %v", err)
	}
	return path
}

func TestLoadRoster(t *testing.T) {
	t.Run("Valid Roster", func(t *testing.T) {
		path := writeRoster(t, `[
			{"name": "Artist One", "spotify_id": "id1", "threads": "artist.one"},
			{"name": "Artist Two", "spotify_id": "id2"},
			{"name": "No ID Artist"}
		]`)

		roster, err := LoadRoster(path)
		if err != nil {
			t.Fatalf("failed to load roster: %v", err)
		}

		if len(roster.Artists) != 2 {
			t.Errorf("expected 2 valid artists, got %d", len(roster.Artists))
		}

		if len(roster.Skipped) != 1 {
			t.Fatalf("expected 1 skipped artist, got %d", len(roster.Skipped))
		}
		if roster.Skipped[0].Name != "No ID Artist" {
			t.Errorf("expected 'No ID Artist' to be skipped, got %s", roster.Skipped[0].Name)
		}

		if roster.Artists[0].Threads != "artist.one" {
			t.Errorf("expected threads handle to load, got %s", roster.Artists[0].Threads)
		}
	})

	t.Run("Duplicate Spotify IDs", func(t *testing.T) {
		path := writeRoster(t, `[
			{"name": "First", "spotify_id": "same"},
			{"name": "Second", "spotify_id": "same"}
		]`)

		_, err := LoadRoster(path)
		if err == nil {
			t.Fatal("expected error for duplicate spotify_id")
		}
		if !errors.Is(err, shared.ErrInvalidRoster) {
			t.Errorf("expected ErrInvalidRoster, got %v", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadRoster(filepath.Join(t.TempDir(), "nope.json"))
		if !errors.Is(err, shared.ErrRosterNotFound) {
			t.Errorf("expected ErrRosterNotFound, got %v", err)
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		path := writeRoster(t, `{"not": "an array"`)

		_, err := LoadRoster(path)
		if !errors.Is(err, shared.ErrInvalidRoster) {
			t.Errorf("expected ErrInvalidRoster, got %v", err)
		}
	})

	t.Run("Empty Roster", func(t *testing.T) {
		path := writeRoster(t, `[]`)

		roster, err := LoadRoster(path)
		if err != nil {
			t.Fatalf("empty roster should load: %v", err)
		}
		if len(roster.Artists) != 0 || len(roster.Skipped) != 0 {
			t.Error("expected empty roster")
		}
	})
}

func TestRosterFiltering(t *testing.T) {
	roster := &Roster{
		Artists: []Artist{
			{Name: "Human", SpotifyID: "id1"},
			{Name: "Heavy AI", SpotifyID: "id2", AIUsage: AIUsageHeavy},
			{Name: "Light AI", SpotifyID: "id3", AIUsage: "light"},
		},
	}

	t.Run("ExcludeHeavyAI", func(t *testing.T) {
		filtered := roster.ExcludeHeavyAI()
		if len(filtered) != 2 {
			t.Fatalf("expected 2 artists after filtering, got %d", len(filtered))
		}
		for _, a := range filtered {
			if a.AIUsage == AIUsageHeavy {
				t.Errorf("artist %s should have been excluded", a.Name)
			}
		}
	})

	t.Run("Tracked Respects Setting", func(t *testing.T) {
		if got := roster.Tracked(true); len(got) != 2 {
			t.Errorf("expected 2 tracked artists with exclusion on, got %d", len(got))
		}
		if got := roster.Tracked(false); len(got) != 3 {
			t.Errorf("expected 3 tracked artists with exclusion off, got %d", len(got))
		}
	})
}
