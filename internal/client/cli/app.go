// Package cli implements the interactive SealVault client.
//
// The client never sends plaintext to the server. Entry bodies are encrypted
// with the vault key before upload, and the vault key itself travels only
// inside the PIN-wrapped recovery blob.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/sealvault/sealvault/internal/client/api"
	"github.com/sealvault/sealvault/internal/client/config"
)

// apiClient is the server surface the CLI needs. The real implementation is
// api.Client; tests provide a stub.
type apiClient interface {
	Ping(ctx context.Context) error
	CreateSession(ctx context.Context, subject, email string) (string, error)
	RegisterVault(ctx context.Context, pin string, metadata []byte) error
	RecoverVault(ctx context.Context, pin string) ([]byte, error)
	RefreshVault(ctx context.Context, metadata []byte) error
	VaultStatus(ctx context.Context) (*api.VaultStatus, error)
	AddEntry(ctx context.Context, name string, ciphertext, deletionHash []byte) error
	ListEntryNames(ctx context.Context) ([]string, error)
	GetEntries(ctx context.Context) ([]api.Entry, error)
	DeleteEntry(ctx context.Context, name string, preimage []byte) error
	DeleteUser(ctx context.Context) error
}

type App struct {
	config   *config.Config
	api      apiClient
	vaultKey []byte
	subject  string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    api.NewClient(c.ServerEndpointAddr),
		reader: bufio.NewReader(os.Stdin),
	}
}

func (a *App) isUnlocked() bool {
	return a.vaultKey != nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}
