// Package tasks implements the playlist sync pipeline.
//
// The core abstraction is [SyncEngine], which orchestrates a full run in three
// stages: Collect (fetch roster artists' releases and filter them into the
// recent and year-to-date windows), Plan (diff desired membership against the
// playlists' current contents) and Apply (issue the playlist mutations).
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI layer.
//
// Dry runs stop after Plan: Apply refuses to issue mutating calls when the
// plan is marked as a preview.
package tasks
