// package formatter renders sync results for the terminal and for JSON output
package formatter

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/nvallee/radar/internal/models"
	"github.com/nvallee/radar/internal/shared"
	"github.com/nvallee/radar/internal/tasks"
	"github.com/nvallee/radar/internal/ui"
)

const playlistURLBase = "https://open.spotify.com/playlist/"

// PlaylistURL returns the public web URL for a playlist ID.
func PlaylistURL(id string) string {
	return playlistURLBase + id
}

// PlaylistReport summarizes what happened to one playlist during a run.
type PlaylistReport struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Added      int    `json:"added"`
	Removed    int    `json:"removed"`
	TrackCount int    `json:"track_count"`
	Duration   string `json:"duration"`
}

// Report is the JSON shape of a completed sync run.
type Report struct {
	RunID            string         `json:"run_id"`
	StartedAt        time.Time      `json:"started_at"`
	FinishedAt       time.Time      `json:"finished_at"`
	DryRun           bool           `json:"dry_run"`
	Recent           PlaylistReport `json:"recent"`
	Year             PlaylistReport `json:"year"`
	ArtistsProcessed int            `json:"artists_processed"`
	ArtistsSkipped   int            `json:"artists_skipped"`
	Handles          []string       `json:"handles,omitempty"`
	Failures         []string       `json:"failures,omitempty"`
}

// NewReport builds a [Report] from a sync result.
func NewReport(result *tasks.SyncResult) *Report {
	report := &Report{
		RunID:            result.Run.ID,
		StartedAt:        result.Run.StartedAt,
		FinishedAt:       result.Run.FinishedAt,
		DryRun:           result.Run.DryRun,
		ArtistsProcessed: result.Run.ArtistsProcessed,
		ArtistsSkipped:   result.Run.ArtistsSkipped,
	}

	if result.Plan != nil {
		report.Recent = playlistReport(result.Plan.Recent)
		report.Year = playlistReport(result.Plan.Year)
		report.Handles = ContributingHandles(result.Plan.Recent.Additions)
	}

	if result.Collect != nil {
		report.Recent.TrackCount = len(result.Collect.RecentTracks)
		report.Recent.Duration = shared.FormatDuration(totalDuration(result.Collect.RecentTracks))
		report.Year.TrackCount = len(result.Collect.YearTracks)
		report.Year.Duration = shared.FormatDuration(totalDuration(result.Collect.YearTracks))

		for _, failure := range result.Collect.Failures {
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", failure.Artist.Name, failure.Err))
		}
	}

	return report
}

// JSON marshals the report, pretty-printed.
func (r *Report) JSON() ([]byte, error) {
	return shared.MarshalJSON(r, true)
}

func playlistReport(plan tasks.PlaylistPlan) PlaylistReport {
	return PlaylistReport{
		ID:      plan.PlaylistID,
		URL:     PlaylistURL(plan.PlaylistID),
		Added:   len(plan.Additions),
		Removed: len(plan.RemovalIDs),
	}
}

// ContributingHandles returns the distinct social handles of the artists
// behind the given tracks, sorted, empty handles dropped.
func ContributingHandles(tracks []models.Track) []string {
	seen := map[string]bool{}
	var handles []string
	for _, track := range tracks {
		if track.Handle == "" || seen[track.Handle] {
			continue
		}
		seen[track.Handle] = true
		handles = append(handles, track.Handle)
	}
	sort.Strings(handles)
	return handles
}

func totalDuration(tracks []models.Track) int {
	total := 0
	for _, track := range tracks {
		total += track.Duration
	}
	return total
}

// RenderSummary renders the post-run terminal summary.
func RenderSummary(result *tasks.SyncResult, palette *ui.Palette) string {
	var buf bytes.Buffer
	report := NewReport(result)

	heading := "Sync complete"
	if report.DryRun {
		heading = "Dry run (no changes applied)"
	}
	buf.WriteString(palette.Title(heading))
	buf.WriteString("\n")

	buf.WriteString(fmt.Sprintf("Finished: %s (%s)\n",
		report.FinishedAt.Format("2006-01-02 15:04:05"),
		result.Run.Duration().Round(time.Millisecond)))
	buf.WriteString(fmt.Sprintf("Artists:  %d processed, %d skipped\n\n",
		report.ArtistsProcessed, report.ArtistsSkipped))

	writePlaylistSection(&buf, palette, "Recent releases", report.Recent)
	writePlaylistSection(&buf, palette, "This year", report.Year)

	if len(report.Handles) > 0 {
		buf.WriteString(palette.OK("New music from:"))
		buf.WriteString("\n")
		for _, handle := range report.Handles {
			buf.WriteString(fmt.Sprintf("  %s\n", handle))
		}
		buf.WriteString("\n")
	}

	for _, failure := range report.Failures {
		buf.WriteString(palette.Warn(fmt.Sprintf("skipped %s", failure)))
		buf.WriteString("\n")
	}

	return buf.String()
}

func writePlaylistSection(buf *bytes.Buffer, palette *ui.Palette, name string, report PlaylistReport) {
	buf.WriteString(fmt.Sprintf("%s (%d tracks, %s)\n", name, report.TrackCount, report.Duration))
	buf.WriteString(fmt.Sprintf("  +%d / -%d\n", report.Added, report.Removed))
	buf.WriteString(fmt.Sprintf("  %s\n\n", palette.Help(report.URL)))
}

// RenderPlan renders a dry run's planned mutations, track by track.
func RenderPlan(plan *tasks.SyncPlan, palette *ui.Palette) string {
	var buf bytes.Buffer

	if plan.Empty() {
		buf.WriteString(palette.OK("Playlists already up to date."))
		buf.WriteString("\n")
		return buf.String()
	}

	sections := []struct {
		name string
		plan tasks.PlaylistPlan
	}{
		{"Recent releases", plan.Recent},
		{"This year", plan.Year},
	}

	for _, section := range sections {
		if section.plan.Empty() {
			continue
		}

		buf.WriteString(palette.Title(section.name))
		buf.WriteString("\n")

		for _, track := range section.plan.Additions {
			buf.WriteString(palette.OK(fmt.Sprintf("  + %s - %s", track.Artist, track.Title)))
			buf.WriteString(palette.Help(fmt.Sprintf(" (%s)", track.ReleaseDate.Format("2006-01-02"))))
			buf.WriteString("\n")
		}
		for _, id := range section.plan.RemovalIDs {
			buf.WriteString(palette.Warn(fmt.Sprintf("  - %s", id)))
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// RenderHistory renders past sync runs, newest first.
func RenderHistory(runs []models.SyncRun, palette *ui.Palette) string {
	var buf bytes.Buffer

	if len(runs) == 0 {
		buf.WriteString(palette.Help("No sync runs recorded yet."))
		buf.WriteString("\n")
		return buf.String()
	}

	for _, run := range runs {
		status := palette.OK("ok")
		if run.Error != "" {
			status = palette.Err("failed")
		}
		if run.DryRun {
			status += palette.Help(" (dry run)")
		}

		buf.WriteString(fmt.Sprintf("%s  %s  recent +%d/-%d  year +%d/-%d  artists %d\n",
			run.StartedAt.Format("2006-01-02 15:04"),
			status,
			run.RecentAdded, run.RecentRemoved,
			run.YearAdded, run.YearRemoved,
			run.ArtistsProcessed))

		if run.Error != "" {
			buf.WriteString(palette.Err(fmt.Sprintf("    %s", run.Error)))
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// RenderRoster renders the artist roster with its skipped entries.
func RenderRoster(roster *models.Roster, palette *ui.Palette) string {
	var buf bytes.Buffer

	buf.WriteString(palette.Title(fmt.Sprintf("%d artists", len(roster.Artists))))
	buf.WriteString("\n")

	for _, artist := range roster.Artists {
		line := fmt.Sprintf("  %s", artist.Name)
		if artist.Threads != "" {
			line += palette.Help(fmt.Sprintf("  %s", artist.Threads))
		}
		if artist.AIUsage == models.AIUsageHeavy {
			line += palette.Warn("  [ai: heavy]")
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}

	for _, skipped := range roster.Skipped {
		buf.WriteString(palette.Warn(fmt.Sprintf("  %s (missing spotify_id, ignored)", skipped.Name)))
		buf.WriteString("\n")
	}

	return buf.String()
}
