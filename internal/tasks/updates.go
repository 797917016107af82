package tasks

import (
	"fmt"

	"github.com/nvallee/radar/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	CollectArtists Phase = iota
	FetchPlaylist
	PlanChanges
	ApplyRemovals
	ApplyAdditions
)

func (p Phase) String() string {
	switch p {
	case CollectArtists:
		return "collect_artists"
	case FetchPlaylist:
		return "fetch_playlist"
	case PlanChanges:
		return "plan_changes"
	case ApplyRemovals:
		return "apply_removals"
	case ApplyAdditions:
		return "apply_additions"
	default:
		return ""
	}
}

func collectArtistUpdate(step, total int, artist models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CollectArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Checking releases for %s...", artist.Name),
		Data:    artist,
	}
}

func fetchPlaylistUpdate(step, total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching current contents of playlist %s...", playlistID),
	}
}

func planUpdate(plan *SyncPlan) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlanChanges,
		Step:    1,
		Total:   1,
		Message: "Computing playlist changes...",
		Data:    plan,
	}
}

func applyRemovalsUpdate(count int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyRemovals,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removing %d tracks from playlist %s...", count, playlistID),
	}
}

func applyAdditionsUpdate(step, total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyAdditions,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Adding tracks to playlist %s...", playlistID),
	}
}
