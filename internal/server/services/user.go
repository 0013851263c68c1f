package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sealvault/sealvault/internal/common"
	"github.com/sealvault/sealvault/internal/server/auth"
	"github.com/sealvault/sealvault/internal/server/config"
	"github.com/sealvault/sealvault/internal/server/locks"
	"github.com/sealvault/sealvault/internal/server/models"
	"github.com/sealvault/sealvault/internal/server/repositories/repomanager"
)

type UserService struct {
	db                    *sql.DB
	repos                 repomanager.RepositoryManager
	locks                 *locks.PerUser
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, locks *locks.PerUser, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repos:                 repos,
		locks:                 locks,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// GetOrCreate resolves the external auth layer's subject to a local user,
// creating the account on first sight and keeping the email current.
func (s *UserService) GetOrCreate(ctx context.Context, subject string, email string) (*models.User, error) {
	if subject == "" {
		return nil, common.ErrorInvalidInput
	}

	user, err := s.repos.Users(s.db).Upsert(ctx, subject, email)
	if err != nil {
		return nil, fmt.Errorf("error upserting user: %w", err)
	}
	return user, nil
}

// Get returns the user by id, or common.ErrorNotFound.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.repos.Users(s.db).Get(ctx, userID)
}

// Delete removes the account; the schema cascades to the metadata slot pair
// and all entries. Taken under the per-user lock so it cannot interleave with
// an in-flight metadata or entry mutation.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.repos.Users(s.db).Delete(ctx, userID)
}

// IssueToken mints an access token carrying the user id. In production the
// OAuth sign-in flow sits in front of this; the token is how that external
// collaborator hands the core a verified user identity.
func (s *UserService) IssueToken(ctx context.Context, userID string) (string, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return "", err
	}
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}
