package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops
	// secondary indicators and the detail pane is hidden.
	LayoutCompactWidth = 100

	// LayoutPriceWidth is the minimum list width to show the price column.
	LayoutPriceWidth = 60

	// LayoutUpdatedWidth is the minimum list width to show updated dates.
	LayoutUpdatedWidth = 80
)

// Timing constants.
const (
	// ClockTick refreshes relative timestamps in the header.
	ClockTick = time.Second

	// ReloadTimeout bounds a user-requested reload.
	ReloadTimeout = 15 * time.Second
)

// Page size steps for +/-.
const pageSizeStep = 5
