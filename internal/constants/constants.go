// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort       = "8090"
	DefaultDBPath     = "tartil.db"
	DefaultExportsDir = "exports"
	DefaultVoice      = "mishary"

	DefaultHTTPTimeout = 10 * time.Second
	DefaultRetryCount  = 3
	DefaultRetryBase   = 1 * time.Second

	// MirrorQueueSize bounds the number of pending remote mirror writes.
	// A full queue drops the write; the next save for the same level
	// re-mirrors the latest state anyway.
	MirrorQueueSize = 64
)

// Remote store tables
const (
	ProgressTable   = "learning_progress"
	RecordingsTable = "recordings"
)

// MIME Types
const (
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeJSON = "application/json"
)

// File extensions
const (
	ExtMP3 = ".mp3"
)
