package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sealvault/sealvault/internal/commitment"
	"github.com/sealvault/sealvault/internal/cryptox"
)

// Add prompts for a name and a secret body, encrypts the body with the vault
// key and uploads it together with the deletion commitment.
func (a *App) Add(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Entry name", os.Stdout)
	if err != nil {
		return err
	}

	body, err := GetMultiline(a.reader, "Secret content", os.Stdout)
	if err != nil {
		return err
	}

	ciphertext, err := cryptox.Seal(a.vaultKey, []byte(body))
	if err != nil {
		return err
	}

	preimage := cryptox.DeletionPreimage(a.vaultKey, name)
	hash := commitment.Commit(preimage)

	if err := a.api.AddEntry(ctx, name, ciphertext, hash); err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Println("Entry added.")
	return nil
}

func (a *App) List(ctx context.Context) error {
	names, err := a.api.ListEntryNames(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

// Show fetches all entries and prints the decrypted body of the named one.
func (a *App) Show(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Entry name", os.Stdout)
	if err != nil {
		return err
	}

	entries, err := a.api.GetEntries(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	for _, e := range entries {
		if e.Name != name {
			continue
		}
		plaintext, err := cryptox.Open(a.vaultKey, e.Ciphertext)
		if err != nil {
			log.Printf("Cannot decrypt %q: %s", name, err.Error())
			return err
		}
		fmt.Println(string(plaintext))
		return nil
	}

	fmt.Println("No such entry:", name)
	return nil
}

// Delete re-derives the deletion pre-image for the named entry and asks the
// server to remove it.
func (a *App) Delete(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Entry name", os.Stdout)
	if err != nil {
		return err
	}

	preimage := cryptox.DeletionPreimage(a.vaultKey, name)

	if err := a.api.DeleteEntry(ctx, name, preimage); err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Println("Entry deleted.")
	return nil
}
