// Package models defines server-side data models persisted in the database.
package models

import "time"

// User anchors ownership of a metadata slot pair and entries. Subject is the
// stable identifier handed over by the external auth layer; it never changes
// for a given account, while Email may.
type User struct {
	ID        string
	Subject   string
	Email     string
	CreatedAt time.Time
}
