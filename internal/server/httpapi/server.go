// Package httpapi exposes the vault core over a thin JSON/HTTP surface.
// Handlers decode requests, call services, and translate sentinel errors to
// HTTP statuses; no vault logic lives here. Authentication is reduced to a
// bearer-token middleware that yields a verified user id.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sealvault/sealvault/internal/logging"
	"github.com/sealvault/sealvault/internal/server/models"
	"github.com/sealvault/sealvault/internal/server/services"
)

type userSvc interface {
	GetOrCreate(ctx context.Context, subject string, email string) (*models.User, error)
	Delete(ctx context.Context, userID string) error
	IssueToken(ctx context.Context, userID string) (string, error)
}

type vaultSvc interface {
	Register(ctx context.Context, userID string, pin string, blob []byte) error
	Recover(ctx context.Context, userID string, pin string) ([]byte, error)
	Refresh(ctx context.Context, userID string, blob []byte) error
	Status(ctx context.Context, userID string) (*services.VaultStatus, error)
}

type entrySvc interface {
	Add(ctx context.Context, userID string, name string, ciphertext []byte, deletionHash []byte) error
	ListNames(ctx context.Context, userID string) ([]string, error)
	GetAll(ctx context.Context, userID string) ([]*models.Entry, error)
	Delete(ctx context.Context, userID string, name string, preimage []byte) error
}

type Server struct {
	address   string
	logger    logging.Logger
	users     userSvc
	vault     vaultSvc
	entries   entrySvc
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, us userSvc, vs vaultSvc, es entrySvc, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "httpapi"),
		users:     us,
		vault:     vs,
		entries:   es,
		jwtSecret: []byte(secretKey),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/ping", s.Ping)
		api.POST("/session", s.CreateSession)

		authed := api.Group("", s.authMiddleware())
		{
			authed.GET("/vault", s.VaultStatus)
			authed.POST("/vault", s.RegisterVault)
			authed.POST("/vault/recover", s.RecoverVault)
			authed.PUT("/vault", s.RefreshVault)

			authed.POST("/vault/entries", s.AddEntry)
			authed.GET("/vault/entries", s.ListEntryNames)
			authed.GET("/vault/entries/all", s.GetEntries)
			authed.DELETE("/vault/entries/:name", s.DeleteEntry)

			authed.DELETE("/user", s.DeleteUser)
		}
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
