// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a small workflow around a recommendation request:
//  1. [LoadingView] : Run the request against the engine
//  2. [ResultListView] : Browse the recommended tracks
//  3. [ErrorView] : Display request failures
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Pressing r re-rolls the request, producing a fresh result set under the same
// mode and seeds.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
