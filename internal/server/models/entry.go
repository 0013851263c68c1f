package models

import "time"

// Entry is a named ciphertext container, unique per (user, name). Entries are
// never mutated in place; replacing content is modeled as delete plus add
// with a fresh deletion commitment.
type Entry struct {
	UserID string
	Name   string
	// Ciphertext is limited to MaxEntrySize bytes.
	Ciphertext []byte
	// DeletionHash is the commitment whose pre-image authorizes deletion.
	DeletionHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	// MaxEntrySize caps a single entry's ciphertext.
	MaxEntrySize = 1024
	// MaxEntriesPerUser caps how many entries one user may hold.
	MaxEntriesPerUser = 1024
)
