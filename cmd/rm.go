package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/illarion/stash/internal/keyring"
	"github.com/illarion/stash/internal/vault"
)

// Rm deletes records by id or name. Unknown ids are ignored; any keyring
// entry for a deleted record is cleaned up as well.
func Rm(ctx context.Context, refs []string) {
	v := OpenVaultOrExit()
	defer v.Close()

	vaultID, _ := v.VaultID()

	for _, ref := range refs {
		id, err := v.Resolve(ctx, ref)
		if err != nil {
			if errors.Is(err, vault.ErrNotFound) {
				// Removing an absent record is not an error
				id = ref
			} else {
				HandleError(err)
			}
		}
		if err := v.Delete(ctx, id); err != nil {
			HandleError(err)
		}
		if vaultID != "" && keyring.HasPasskey(vaultID, id) {
			if err := keyring.DeletePasskey(vaultID, id); err != nil {
				Log.Warnf("failed to remove keyring entry for %s: %s", id, err)
			}
		}
		fmt.Printf("removed: %s\n", id)
	}
}
