package models

import "time"

// MetadataSlot is one of two physical storage locations for a user's
// recovery-metadata blob. The pair's current slot is never stored; it is
// derived as the valid slot with the highest Seq.
type MetadataSlot struct {
	UserID string
	// Slot index, 0 or 1.
	Slot int16
	// Blob is opaque to the server. It is never parsed or validated
	// beyond its size.
	Blob      []byte
	Seq       int64
	Valid     bool
	UpdatedAt time.Time
}
