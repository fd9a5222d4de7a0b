// Package ui provides the terminal interface for browsing and editing the
// course catalog.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds no course data of its own: on
// every change notification it asks the collection manager for the visible
// page and renders that. All writes go back through the manager, which
// applies them optimistically and reconciles with the server.
//
// # Package Structure
//
//   - app.go: Model, key dispatch per mode, and the Run function
//   - form.go: the create/edit form over an editor.State
//   - header.go: status bar, command bar and footer
//   - table.go: course list, detail pane and the form overlay
//   - keys.go / help.go: key bindings and the help modal
//   - theme.go / style_helpers.go: color themes and background-aware styling
//
// # Modes
//
//   - List: cursor movement, paging, sorting, filtering and selection
//   - Search: live text search across the configured search fields
//   - Form: field-by-field editing with inline validation errors
//   - Confirm delete: y/n prompt for the cursor row or the selection
//   - Help: full key binding reference
//
// # Event Flow
//
//  1. Run() subscribes to the manager and starts the program
//  2. A command blocks on the subscription channel and emits changedMsg
//  3. changedMsg refreshes the cached page and re-arms the wait
//  4. Reloads run in a command and report back with reloadDoneMsg
//  5. Context cancellation shuts the program down
//
// # Rows
//
// Selected rows carry a ● marker. A ~ glyph marks a row with a write in
// flight and ! marks a row whose last write failed; R retries it. Rows with
// a temporary id cannot be edited until the server assigns a real one.
//
// # Preferences
//
// Theme, sort and page size changes are saved to the prefs file as they
// happen, so the next session starts where this one left off.
package ui
