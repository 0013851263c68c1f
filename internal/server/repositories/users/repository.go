package users

import (
	"context"

	"github.com/sealvault/sealvault/internal/server/models"
)

type Repository interface {
	// Upsert creates the user for the given external subject or, if it
	// already exists, refreshes the mutable fields. Returns the stored user.
	Upsert(ctx context.Context, subject string, email string) (*models.User, error)

	// Get returns the user by id, or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.User, error)

	// Delete removes the user. The schema cascades to the metadata slot
	// pair and all entries.
	Delete(ctx context.Context, id string) error
}
