// Package services implements the vault use cases on top of the repositories:
// metadata registration and rotation, entry CRUD under quota, and user
// lifecycle. All methods expect a user id that the transport layer has
// already verified.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sealvault/sealvault/internal/common"
	"github.com/sealvault/sealvault/internal/dbx"
	"github.com/sealvault/sealvault/internal/server/locks"
	"github.com/sealvault/sealvault/internal/server/models"
	"github.com/sealvault/sealvault/internal/server/repositories/repomanager"
)

const (
	// PIN length bounds checked on registration only. Recovery deliberately
	// enforces no upper bound; the asymmetry is inherited behavior.
	MinPinLength = 4
	MaxPinLength = 128
)

// VaultStatus reports whether a user has registered a vault and, if so,
// carries the current metadata blob.
type VaultStatus struct {
	HasVault bool
	Metadata []byte
}

type VaultService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	locks *locks.PerUser
}

// NewVaultService constructs the vault service. The locks instance must be
// shared with the entry service so metadata writes and entry mutations for
// one user serialize against each other.
func NewVaultService(db *sql.DB, repos repomanager.RepositoryManager, locks *locks.PerUser) *VaultService {
	return &VaultService{db: db, repos: repos, locks: locks}
}

// Register stores the initial recovery-metadata blob for the user. The PIN is
// only length-checked here; its cryptographic strength is the recovery
// protocol's concern, client-side.
func (s *VaultService) Register(ctx context.Context, userID string, pin string, blob []byte) error {
	if len(pin) < MinPinLength || len(pin) > MaxPinLength {
		return common.ErrorInvalidPin
	}
	if len(blob) == 0 {
		return common.ErrorInvalidInput
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.rotate(ctx, tx, userID, blob, false)
	})
}

// Recover hands back the current metadata blob for client-side recovery.
// The server performs no PIN verification; presence is checked purely so an
// empty request fails before touching the store.
func (s *VaultService) Recover(ctx context.Context, userID string, pin string) ([]byte, error) {
	if pin == "" {
		return nil, common.ErrorInvalidPin
	}

	current, err := s.repos.Metadata(s.db).GetCurrent(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotRegistered
		}
		return nil, fmt.Errorf("error reading metadata: %w", err)
	}
	return current.Blob, nil
}

// Refresh replaces the metadata blob after the recovery protocol rotated key
// shares. Fails when the vault was never registered.
func (s *VaultService) Refresh(ctx context.Context, userID string, blob []byte) error {
	if len(blob) == 0 {
		return common.ErrorInvalidInput
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.rotate(ctx, tx, userID, blob, true)
	})
}

// Status reports vault registration state, with the current blob when present.
func (s *VaultService) Status(ctx context.Context, userID string) (*VaultStatus, error) {
	current, err := s.repos.Metadata(s.db).GetCurrent(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &VaultStatus{HasVault: false}, nil
		}
		return nil, fmt.Errorf("error reading metadata: %w", err)
	}
	return &VaultStatus{HasVault: true, Metadata: current.Blob}, nil
}

// rotate implements the two-slot crash-safe write: the new blob always goes
// into the slot that is NOT current, with a sequence number above every
// existing one. Readers derive "current" from the sequence comparison, so a
// crash before commit leaves the old slot untouched and still winning.
func (s *VaultService) rotate(ctx context.Context, tx dbx.DBTX, userID string, blob []byte, mustExist bool) error {
	repo := s.repos.Metadata(tx)

	pair, err := repo.GetPair(ctx, userID)
	if err != nil {
		return fmt.Errorf("error reading slot pair: %w", err)
	}

	var current *models.MetadataSlot
	var maxSeq int64
	for _, slot := range pair {
		if slot.Seq > maxSeq {
			maxSeq = slot.Seq
		}
		if slot.Valid && (current == nil || slot.Seq > current.Seq) {
			current = slot
		}
	}

	if current == nil {
		if mustExist {
			return common.ErrorNotRegistered
		}
		return repo.UpsertSlot(ctx, &models.MetadataSlot{
			UserID: userID,
			Slot:   0,
			Blob:   blob,
			Seq:    1,
			Valid:  true,
		})
	}

	if !mustExist {
		return common.ErrorAlreadyRegistered
	}

	return repo.UpsertSlot(ctx, &models.MetadataSlot{
		UserID: userID,
		Slot:   1 - current.Slot,
		Blob:   blob,
		Seq:    maxSeq + 1,
		Valid:  true,
	})
}
