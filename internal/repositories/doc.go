// package repositories provides the SQLite persistence layer.
//
// RunRepository keeps the sync run history behind `radar history`, and
// TrackRepository caches the tracks a run discovered so they can be
// inspected without another API round trip.
package repositories
