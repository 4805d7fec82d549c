// Package internal contains the implementation packages of the CortexOS
// landing server.
//
// # Package Organization
//
//   - stats: the statistics snapshot and its refresh from a project root
//   - catalog: the embedded benchmark and pipeline tables
//   - changelog: recent version sections of the project changelog
//   - landing: on-disk layout of the site and landing document inspection
//   - config: Viper-backed configuration with HOST/PORT defaults
//   - errors: errors that carry actionable suggestions for the CLI
//   - logging: structured logging on log/slog
//   - http: listener lifecycle with graceful shutdown
//   - middleware: request logging and CORS
//   - server: handlers, the full and minimal routers, and the live feed
//   - watcher: debounced fsnotify watching
//   - websocket: the hub that pushes stats updates to browsers
//   - version: build identity of the binary
//
// # Data Flow
//
// The server refreshes one shared stats.Tracker at startup. Full-mode stats
// requests refresh it again; minimal-mode requests build a fresh snapshot
// and leave it untouched. When the live feed runs, watcher events on the
// project inputs refresh the tracker and the websocket hub broadcasts the
// result.
package internal
