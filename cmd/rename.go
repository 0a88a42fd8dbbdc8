package cmd

import (
	"context"
	"fmt"
)

// Rename changes a record's label. The ciphertext is untouched.
func Rename(ctx context.Context, ref, name string) {
	v := OpenVaultOrExit()
	defer v.Close()

	id, err := v.Resolve(ctx, ref)
	if err != nil {
		HandleError(err)
	}
	if err := v.Rename(ctx, id, name); err != nil {
		HandleError(err)
	}
	fmt.Printf("renamed: %s -> %s\n", ref, name)
}
