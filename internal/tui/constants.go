package tui

import "time"

// UI Layout Constants
// These constants define spacing, margins, and dimensions for the TUI layout

const (
	// Modal Dimensions - Standard margins for modal dialogs
	ModalWidthMargin  = 6 // Standard horizontal margin (m.width - 6)
	ModalHeightMargin = 3 // Standard vertical margin (m.height - 3)
	ModalMinWidth     = 40

	// Content Area Offsets
	ContentOffsetStandard = 7 // m.height - 7: header, borders, status bar, footer
	ListOverheadLines     = 4 // title, blank line, position footer

	// Form editor
	FormEditorHeight = 12

	// Status messages longer than this are truncated in the footer
	StatusMaxLength = 100

	// How long a status message stays in the footer
	MessageTimeout = 4 * time.Second
)
