package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sealvault/sealvault/internal/commitment"
	"github.com/sealvault/sealvault/internal/common"
	"github.com/sealvault/sealvault/internal/dbx"
	"github.com/sealvault/sealvault/internal/server/locks"
	"github.com/sealvault/sealvault/internal/server/models"
	"github.com/sealvault/sealvault/internal/server/repositories/repomanager"
)

type EntryService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	locks *locks.PerUser
}

// NewEntryService constructs the entry service. See NewVaultService for the
// shared locks requirement.
func NewEntryService(db *sql.DB, repos repomanager.RepositoryManager, locks *locks.PerUser) *EntryService {
	return &EntryService{db: db, repos: repos, locks: locks}
}

// Add stores a new named ciphertext entry with its deletion commitment.
// The quota check and the insert run under the per-user lock inside one
// transaction so concurrent adds cannot overshoot the cap.
func (s *EntryService) Add(ctx context.Context, userID string, name string, ciphertext []byte, deletionHash []byte) error {
	if name == "" {
		return common.ErrorInvalidInput
	}
	if len(ciphertext) > models.MaxEntrySize {
		return common.ErrorEntryTooLarge
	}
	if len(deletionHash) != commitment.Size {
		return common.ErrorInvalidInput
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Metadata(tx).GetCurrent(ctx, userID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotRegistered
			}
			return fmt.Errorf("error reading metadata: %w", err)
		}

		repo := s.repos.Entries(tx)

		count, err := repo.Count(ctx, userID)
		if err != nil {
			return fmt.Errorf("error counting entries: %w", err)
		}
		if count >= models.MaxEntriesPerUser {
			return common.ErrorQuotaExceeded
		}

		return repo.Insert(ctx, &models.Entry{
			UserID:       userID,
			Name:         name,
			Ciphertext:   ciphertext,
			DeletionHash: deletionHash,
		})
	})
}

// ListNames returns the user's entry names. Callers must not rely on order.
func (s *EntryService) ListNames(ctx context.Context, userID string) ([]string, error) {
	names, err := s.repos.Entries(s.db).ListNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return names, nil
}

// GetAll returns every entry with its ciphertext.
func (s *EntryService) GetAll(ctx context.Context, userID string) ([]*models.Entry, error) {
	result, err := s.repos.Entries(s.db).GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error reading entries: %w", err)
	}
	return result, nil
}

// Delete removes the entry iff preimage opens its deletion commitment.
// A mismatch yields ErrorForbidden and leaves the entry intact.
func (s *EntryService) Delete(ctx context.Context, userID string, name string, preimage []byte) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Entries(tx)

		entry, err := repo.Get(ctx, userID, name)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("error reading entry: %w", err)
		}

		if !commitment.Verify(entry.DeletionHash, preimage) {
			return common.ErrorForbidden
		}

		return repo.Delete(ctx, userID, name)
	})
}
