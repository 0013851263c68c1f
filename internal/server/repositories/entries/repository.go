package entries

import (
	"context"

	"github.com/sealvault/sealvault/internal/server/models"
)

type Repository interface {
	// Insert persists a new entry. Returns common.ErrorDuplicateName when
	// (user, name) already exists. Never overwrites.
	Insert(ctx context.Context, entry *models.Entry) error

	// Count returns how many entries the user currently holds.
	Count(ctx context.Context, userID string) (int64, error)

	// ListNames returns the user's entry names. Order is not significant.
	ListNames(ctx context.Context, userID string) ([]string, error)

	// Get returns a single entry, or common.ErrorNotFound.
	Get(ctx context.Context, userID string, name string) (*models.Entry, error)

	// GetAll returns every entry for the user, ciphertext included.
	GetAll(ctx context.Context, userID string) ([]*models.Entry, error)

	// Delete removes the entry, or returns common.ErrorNotFound.
	Delete(ctx context.Context, userID string, name string) error
}
