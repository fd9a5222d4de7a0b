// Package app provides the orchestration layer for the curator application.
//
// # Overview
//
// This package wires together configuration, preferences, logging, the
// catalog API client, the course editor and the collection manager, then
// hands the result to the UI. It is the composition root: no other package
// constructs more than its own pieces.
//
// # Architecture
//
// Setup builds the object graph shared by the TUI and the CLI subcommands:
//
//  1. Load ~/.config/curator/config.toml (missing file means defaults)
//  2. Load ~/.config/curator/prefs.toml (theme, sort, page size)
//  3. Open the log file and create a slog text logger on it
//  4. Create the api.Client, the slug cache and the editor
//  5. Create the collection.Manager over the client
//
// Run then performs the first load, starts the reload poller and blocks in
// ui.Run until the user quits or the context is cancelled.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> Setup()             Build services
//	       ├─────> Manager.Reload()    First load
//	       ├─────> StartPoller()       Periodic reloads
//	       └─────> ui.Run()            Start TUI (blocks)
//
//	Background Poller Loop:
//	┌─────────────────────────────────────────┐
//	│ StartPoller() goroutine                 │
//	│  ├─> Manager.Reload()                   │
//	│  └─> back off while reloads fail        │
//	│      └─> UI re-renders on Subscribe()   │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// The poller reloads every reload_seconds (default 30). Each consecutive
// failure doubles the delay up to 30 seconds; a success restores the base
// interval. Reload failures are recorded by the manager and surface in the
// header as an error or offline indicator, so the poller only logs its
// backoff at debug level. reload_seconds = 0 disables polling.
//
// # Error Handling
//
// Fatal errors (returned from Setup or Run):
//   - Config file unreadable or not valid TOML
//   - Log file cannot be created
//   - api_url cannot be parsed
//
// Everything after startup is recoverable: the first load may fail and the
// UI still starts, showing the error until a reload succeeds.
package app
