package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/stash/internal/crypto"
	"github.com/illarion/stash/internal/keyring"
	"github.com/illarion/stash/internal/vault"
)

// Get decrypts a record and writes the plaintext to out, or stdout when
// out is empty. With useKeyring the passkey is looked up in the OS
// keyring before prompting.
func Get(ctx context.Context, ref, out string, useKeyring bool) {
	v := OpenVaultOrExit()
	defer v.Close()

	id, err := v.Resolve(ctx, ref)
	if err != nil {
		HandleError(err)
	}

	var passkey []byte
	if useKeyring {
		vaultID, err := v.VaultID()
		if err == nil {
			if stored, err := keyring.GetPasskey(vaultID, id); err == nil {
				passkey = []byte(stored)
			}
		}
		if passkey == nil {
			Log.Warnf("no passkey in keyring for this record")
		}
	}
	if passkey == nil {
		passkey = GetPasskeyOrExit("Enter passkey: ")
	}
	defer crypto.ClearBytes(passkey)

	plaintext, err := v.Retrieve(ctx, id, passkey, vault.DefaultPrincipal)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(plaintext)

	if out != "" {
		if err := os.WriteFile(out, plaintext, 0600); err != nil {
			Log.Errorf("failed to write %s: %s", out, err)
			os.Exit(1)
		}
		fmt.Printf("written: %s\n", out)
		return
	}

	os.Stdout.Write(plaintext)
	// Keep shells readable when the secret has no trailing newline
	if len(plaintext) > 0 && plaintext[len(plaintext)-1] != '\n' {
		fmt.Println()
	}
}
