// Package models defines the domain entities for the release radar sync tool.
//
// The package contains three categories of types:
//
// 1. Roster types: the configured list of tracked artists
//   - [Artist] : a tracked artist with a Spotify ID and optional social handles
//   - [Roster] : the loaded artist list with validation and filtering
//
// 2. Catalog types: data fetched from the streaming service
//   - [Track] : a song with its release date and contributing artist
//   - [Playlist] : basic playlist metadata
//
// 3. Sync types: records of sync runs
//   - [SyncRun] : one run of the sync pipeline with per-playlist counts
//
// Release-date handling lives in [ReleaseWindow] and [ParseReleaseDate],
// which normalize the service's variable-precision date strings to calendar days.
package models
