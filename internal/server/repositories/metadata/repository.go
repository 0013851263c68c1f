package metadata

import (
	"context"

	"github.com/sealvault/sealvault/internal/server/models"
)

type Repository interface {
	// GetCurrent returns the valid slot with the highest sequence number,
	// or common.ErrorNotFound when the pair is unregistered.
	GetCurrent(ctx context.Context, userID string) (*models.MetadataSlot, error)

	// GetPair returns whatever slot rows exist for the user, at most two.
	GetPair(ctx context.Context, userID string) ([]*models.MetadataSlot, error)

	// UpsertSlot writes one physical slot. The caller picks the target slot
	// and sequence number; this method only persists the row.
	UpsertSlot(ctx context.Context, slot *models.MetadataSlot) error
}
