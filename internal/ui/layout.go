package ui

import "time"

// Screen rows used outside the main panel.
const (
	headerRows = 1
	footerRows = 1
	maxToasts  = 3
)

// Modal widths.
const (
	formWidth    = 56
	confirmWidth = 40
	helpWidth    = 44
)

// Activity log limits.
const (
	// LogTailLines is how many lines of the activity log are loaded.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultRefresh is how often the model re-reads the store.
	DefaultRefresh = 250 * time.Millisecond

	// ToastDuration is how long a notification stays on screen.
	ToastDuration = 3 * time.Second

	// skeletonRows is the number of placeholder rows while loading.
	skeletonRows = 4
)
