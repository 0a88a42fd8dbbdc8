package cmd

import (
	"context"
	"fmt"
)

// Ls lists stored records: id, name and creation time. No passkey is
// required and no plaintext is touched.
func Ls(ctx context.Context) {
	v := OpenVaultOrExit()
	defer v.Close()

	infos, err := v.List(ctx)
	if err != nil {
		HandleError(err)
	}

	if len(infos) == 0 {
		fmt.Println("Vault is empty")
		fmt.Println("Run 'stash put' to store a secret")
		return
	}

	for _, info := range infos {
		name := info.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%s  %s  %s\n", info.ID, info.CreatedAt.Format("2006-01-02 15:04:05"), name)
	}
}
