package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/stash/internal/crypto"
	"github.com/illarion/stash/internal/vault"
)

// ResetLockout clears the lockout state for the local principal. It is
// gated by the deployment master secret, never by any record passkey.
func ResetLockout(ctx context.Context) {
	v := OpenVaultOrExit()
	defer v.Close()

	secret, err := GetMasterSecret()
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(secret)

	if err := v.ResetLockout(ctx, secret, vault.DefaultPrincipal); err != nil {
		HandleError(err)
	}
	fmt.Println("Lockout cleared")
}
