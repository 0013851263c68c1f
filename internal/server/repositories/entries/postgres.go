// Package entries provides the PostgreSQL-backed repository for per-user
// ciphertext entries and their deletion commitments.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sealvault/sealvault/internal/common"
	"github.com/sealvault/sealvault/internal/dbx"
	"github.com/sealvault/sealvault/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert adds the entry if (user_id, name) is free. ON CONFLICT DO NOTHING
// turns a duplicate into zero affected rows, which maps to ErrorDuplicateName.
func (r *PostgresRepository) Insert(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (user_id, name, ciphertext, deletion_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query, entry.UserID, entry.Name, entry.Ciphertext, entry.DeletionHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorDuplicateName
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListNames(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM entries WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string, name string) (*models.Entry, error) {
	query := `
		SELECT user_id, name, ciphertext, deletion_hash, created_at, updated_at FROM entries
		WHERE user_id = $1 AND name = $2
	`
	e := &models.Entry{}
	err := r.db.QueryRowContext(ctx, query, userID, name).
		Scan(&e.UserID, &e.Name, &e.Ciphertext, &e.DeletionHash, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) GetAll(ctx context.Context, userID string) ([]*models.Entry, error) {
	query := `
		SELECT user_id, name, ciphertext, deletion_hash, created_at, updated_at FROM entries
		WHERE user_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Ciphertext, &e.DeletionHash, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
