package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/illarion/stash/internal/crypto"
	"github.com/illarion/stash/internal/vault"
)

// Diff compares a decrypted record against a local file and prints a
// unified diff. A failed passkey here counts against the lockout like
// any other retrieve.
func Diff(ctx context.Context, ref, file string) {
	v := OpenVaultOrExit()
	defer v.Close()

	id, err := v.Resolve(ctx, ref)
	if err != nil {
		HandleError(err)
	}

	localData, err := os.ReadFile(file)
	if err != nil {
		Log.Errorf("cannot read %s: %s", file, err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(localData)

	passkey := GetPasskeyOrExit("Enter passkey: ")
	defer crypto.ClearBytes(passkey)

	diff, err := v.Diff(ctx, id, passkey, filepath.Base(file), localData, vault.DefaultPrincipal)
	if err != nil {
		HandleError(err)
	}

	if diff == "" {
		fmt.Println("No changes detected")
		return
	}
	fmt.Print(diff)
}
