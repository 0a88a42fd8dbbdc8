package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/stash/internal/crypto"
	"github.com/illarion/stash/internal/keyring"
	"github.com/illarion/stash/internal/vault"
)

// KeyringSave verifies a record's passkey and stores it in the OS keyring
func KeyringSave(ctx context.Context, ref string) {
	v := OpenVaultOrExit()
	defer v.Close()

	id, err := v.Resolve(ctx, ref)
	if err != nil {
		HandleError(err)
	}

	passkey := GetPasskeyOrExit("Enter passkey: ")
	defer crypto.ClearBytes(passkey)

	// Verify the passkey actually opens the record before saving it
	plaintext, err := v.Retrieve(ctx, id, passkey, vault.DefaultPrincipal)
	if err != nil {
		HandleError(err)
	}
	crypto.ClearBytes(plaintext)

	vaultID, err := v.VaultID()
	if err != nil {
		HandleError(err)
	}

	if err := keyring.SavePasskey(vaultID, id, string(passkey)); err != nil {
		Log.Errorf("failed to save passkey to keyring: %s", err)
		os.Exit(1)
	}
	fmt.Printf("Passkey for %s saved to OS keyring\n", id)
}

// KeyringForget removes a record's passkey from the OS keyring
func KeyringForget(ctx context.Context, ref string) {
	v := OpenVaultOrExit()
	defer v.Close()

	id, err := v.Resolve(ctx, ref)
	if err != nil {
		HandleError(err)
	}
	vaultID, err := v.VaultID()
	if err != nil {
		HandleError(err)
	}

	if !keyring.HasPasskey(vaultID, id) {
		fmt.Printf("No passkey in keyring for %s\n", id)
		return
	}
	if err := keyring.DeletePasskey(vaultID, id); err != nil {
		Log.Errorf("failed to remove keyring entry: %s", err)
		os.Exit(1)
	}
	fmt.Printf("Passkey for %s removed from OS keyring\n", id)
}

// KeyringStatus reports whether a passkey is stored for a record
func KeyringStatus(ctx context.Context, ref string) {
	v := OpenVaultOrExit()
	defer v.Close()

	id, err := v.Resolve(ctx, ref)
	if err != nil {
		HandleError(err)
	}
	vaultID, err := v.VaultID()
	if err != nil {
		HandleError(err)
	}

	if keyring.HasPasskey(vaultID, id) {
		fmt.Printf("Passkey for %s is in the OS keyring\n", id)
	} else {
		fmt.Printf("No passkey in keyring for %s\n", id)
	}
}
