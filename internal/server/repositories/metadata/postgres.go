// Package metadata provides the PostgreSQL-backed repository for the per-user
// two-slot recovery-metadata store. Slot rotation itself lives in the vault
// service; this package only reads and writes physical slot rows.
package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sealvault/sealvault/internal/common"
	"github.com/sealvault/sealvault/internal/dbx"
	"github.com/sealvault/sealvault/internal/server/models"
)

// PostgresRepository implements slot storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetCurrent(ctx context.Context, userID string) (*models.MetadataSlot, error) {
	query := `
		SELECT user_id, slot, blob, seq, valid, updated_at FROM vault_metadata
		WHERE user_id = $1 AND valid
		ORDER BY seq DESC
		LIMIT 1
	`
	s := &models.MetadataSlot{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&s.UserID, &s.Slot, &s.Blob, &s.Seq, &s.Valid, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) GetPair(ctx context.Context, userID string) ([]*models.MetadataSlot, error) {
	query := `
		SELECT user_id, slot, blob, seq, valid, updated_at FROM vault_metadata
		WHERE user_id = $1
		ORDER BY slot
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.MetadataSlot
	for rows.Next() {
		var s models.MetadataSlot
		if err := rows.Scan(&s.UserID, &s.Slot, &s.Blob, &s.Seq, &s.Valid, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertSlot writes the full slot row in one statement. Because the row only
// becomes current via the seq comparison in GetCurrent, a crash before this
// statement commits leaves the previous slot readable.
func (r *PostgresRepository) UpsertSlot(ctx context.Context, slot *models.MetadataSlot) error {
	query := `
		INSERT INTO vault_metadata (user_id, slot, blob, seq, valid, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id, slot)
		DO UPDATE SET
			blob = EXCLUDED.blob,
			seq = EXCLUDED.seq,
			valid = EXCLUDED.valid,
			updated_at = now();
	`
	res, err := r.db.ExecContext(ctx, query, slot.UserID, slot.Slot, slot.Blob, slot.Seq, slot.Valid)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}
