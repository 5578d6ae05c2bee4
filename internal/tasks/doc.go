// Package tasks runs the taste sync: fetching listeners' top tracks and
// artists from the catalog and caching them for seed assembly.
//
// # Core Operations
//
// The [TasteEngine] syncs one listener ([TasteEngine.Sync]) or many
// concurrently ([TasteEngine.SyncAll]) with a bounded worker pool and a
// shared rate limiter, so bulk syncs never stampede the upstream API.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, and messages
// for CLI/UI rendering. Updates use select with default to prevent
// blocking the sync itself.
package tasks
