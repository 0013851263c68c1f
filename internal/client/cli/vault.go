package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/sealvault/sealvault/internal/client/api"
	"github.com/sealvault/sealvault/internal/common"
	"github.com/sealvault/sealvault/internal/cryptox"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

// Login establishes a session and, if the account already has a vault,
// prompts for the PIN and unwraps the vault key from the recovery blob.
func (a *App) Login(ctx context.Context) error {
	subject := a.config.Subject
	if subject == "" {
		var err error
		subject, err = getSimpleText(a.reader, "Enter account subject", os.Stdout)
		if err != nil {
			return err
		}
	}

	if _, err := a.api.CreateSession(ctx, subject, a.config.Email); err != nil {
		if errors.Is(err, api.ErrUnavailable) {
			log.Println("Server unavailable")
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}
	a.subject = subject

	status, err := a.api.VaultStatus(ctx)
	if err != nil {
		return err
	}
	if !status.HasVault {
		fmt.Println("No vault yet. Type 'setup' to create one.")
		return nil
	}

	return a.unlock(ctx)
}

func (a *App) unlock(ctx context.Context) error {
	pin, err := getSecret("Enter PIN", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	blob, err := a.api.RecoverVault(ctx, string(pin))
	if err != nil {
		log.Printf("Recovery unsuccessful: %s", err.Error())
		return err
	}

	key, err := cryptox.OpenRecoveryBlob(pin, blob)
	if err != nil {
		log.Println("Wrong PIN")
		return err
	}

	a.vaultKey = key
	fmt.Println("Vault unlocked.")
	return nil
}

// Setup creates a fresh vault: a random vault key is generated, wrapped with
// the chosen PIN and registered with the server.
func (a *App) Setup(ctx context.Context) error {
	pin, err := getSecret("Choose a PIN (4-128 characters)", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	confirm, err := getSecret("Repeat PIN", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(pin) != string(confirm) {
		fmt.Println("PINs do not match.")
		return errors.New("pin confirmation mismatch")
	}

	key := common.GenerateRandByteArray(cryptox.KeySize)

	blob, err := cryptox.MakeRecoveryBlob(pin, key)
	if err != nil {
		return err
	}

	if err := a.api.RegisterVault(ctx, string(pin), blob); err != nil {
		log.Printf("Setup unsuccessful: %s", err.Error())
		return err
	}

	a.vaultKey = key
	fmt.Println("Vault created and unlocked.")
	return nil
}

// ChangePin rewraps the current vault key with a new PIN and replaces the
// recovery blob on the server. The vault key itself does not change, so
// existing entries stay readable.
func (a *App) ChangePin(ctx context.Context) error {
	pin, err := getSecret("Enter new PIN (4-128 characters)", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	blob, err := cryptox.MakeRecoveryBlob(pin, a.vaultKey)
	if err != nil {
		return err
	}

	if err := a.api.RefreshVault(ctx, blob); err != nil {
		log.Printf("PIN change unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("PIN changed.")
	return nil
}

// Status prints whether the account has a vault registered.
func (a *App) Status(ctx context.Context) error {
	status, err := a.api.VaultStatus(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if status.HasVault {
		fmt.Println("Vault registered.")
	} else {
		fmt.Println("No vault registered.")
	}
	return nil
}

// Lock wipes the in-memory vault key.
func (a *App) Lock(ctx context.Context) error {
	common.WipeByteArray(a.vaultKey)
	a.vaultKey = nil
	return nil
}
